package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type Template string

const (
	TemplateVerifyEmail        Template = "verify_email"
	TemplateResetPassword      Template = "reset_password"
	TemplateConfirmEmailChange Template = "confirm_email_change"
	TemplateNotifyEmailChange  Template = "notify_email_change"
	TemplateConfirmDeletion    Template = "confirm_account_deletion"
)

var subjects = map[Template]string{
	TemplateVerifyEmail:        "Confirm your email address",
	TemplateResetPassword:      "Reset your password",
	TemplateConfirmEmailChange: "Confirm your new email address",
	TemplateNotifyEmailChange:  "Your email address is about to change",
	TemplateConfirmDeletion:    "Confirm your account deletion",
}

// Data feeds every template; fields a template does not reference are ignored.
type Data struct {
	Email      string
	NewEmail   string
	Link       string
	CancelLink string
	ExpiresAt  time.Time
}

const layout = `{{define "open"}}<!DOCTYPE html><html><body style="font-family:Arial,sans-serif;color:#222">{{end}}
{{define "close"}}<p style="color:#888;font-size:12px">This link expires at {{.ExpiresAt.UTC.Format "2006-01-02 15:04 MST"}}. If you did not request this, you can ignore this email.</p></body></html>{{end}}

{{define "verify_email"}}{{template "open"}}<h2>Welcome!</h2>
<p>Please confirm that {{.Email}} is your email address.</p>
<p><a href="{{.Link}}">Verify email</a></p>{{template "close" .}}{{end}}

{{define "reset_password"}}{{template "open"}}<h2>Password reset</h2>
<p>We received a request to reset the password for {{.Email}}.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>{{template "close" .}}{{end}}

{{define "confirm_email_change"}}{{template "open"}}<h2>Confirm your new email</h2>
<p>Confirm that you want to use {{.NewEmail}} instead of {{.Email}}.</p>
<p><a href="{{.Link}}">Confirm change</a></p>
<p><a href="{{.CancelLink}}">Cancel change</a></p>{{template "close" .}}{{end}}

{{define "notify_email_change"}}{{template "open"}}<h2>Email change requested</h2>
<p>A request was made to change your account email from {{.Email}} to {{.NewEmail}}.</p>
<p>If this was not you, <a href="{{.CancelLink}}">cancel the change</a>.</p>{{template "close" .}}{{end}}

{{define "confirm_account_deletion"}}{{template "open"}}<h2>Delete your account</h2>
<p>Confirm that you want to permanently delete the account for {{.Email}}. This cannot be undone.</p>
<p><a href="{{.Link}}">Delete my account</a></p>
<p><a href="{{.CancelLink}}">Keep my account</a></p>{{template "close" .}}{{end}}
`

var templates = template.Must(template.New("mail").Parse(layout))

// Render returns the subject and HTML body for tpl.
func Render(tpl Template, data Data) (string, string, error) {
	subject, ok := subjects[tpl]
	if !ok {
		return "", "", fmt.Errorf("unknown mail template %q", tpl)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(tpl), data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
