package http

// ErrorResponse is the body of every non-2xx reply. Errors is keyed by request field.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}
