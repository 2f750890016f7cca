package types

import (
	"time"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"
)

const (
	DefaultAuditLogLimit = 50
	MaxAuditLogLimit     = 500
)

type ListAuditLogsRequest struct {
	Limit  int    `json:"limit" query:"limit"`
	Offset int    `json:"offset" query:"offset"`
	UserID uint64 `json:"userId" query:"userId"`
	Action string `json:"action" query:"action"`
}

func NewListAuditLogsRequestFromContext(ctx echo.Context) (*ListAuditLogsRequest, error) {
	body := ListAuditLogsRequest{Limit: DefaultAuditLogLimit}
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *ListAuditLogsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Limit, validation.Min(1), validation.Max(MaxAuditLogLimit)),
		validation.Field(&r.Offset, validation.Min(0)),
		validation.Field(&r.Action, validation.Length(0, 100)),
	)
}

type AuditLogResponse struct {
	ID        uint64    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	UserID    *uint64   `json:"userId"`
}

func NewAuditLogResponse(log *entity.AuditLog) *AuditLogResponse {
	resp := &AuditLogResponse{
		ID:        log.ID,
		Timestamp: log.Timestamp,
		Action:    log.Action,
		Status:    log.Status,
	}
	if log.UserID.Valid {
		userID := uint64(log.UserID.Int64)
		resp.UserID = &userID
	}
	return resp
}
