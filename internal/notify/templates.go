package notify

import (
	"bytes"
	"html/template"
	"time"
)

var checkInTemplate = template.Must(template.New("check_in").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <p>Hello {{.StaffName}},</p>
  <p><strong>{{.VisitorName}}</strong> ({{.VisitorProfile}}) has checked in to see you at {{.CheckedInAt}}.</p>
  {{if .VisitorPhone}}<p>Contact: {{.VisitorPhone}}</p>{{end}}
</body>
</html>`))

var passwordResetTemplate = template.Must(template.New("password_reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <p>Hello {{.Username}},</p>
  <p>Your password was reset by {{.ResetBy}} at {{.ResetAt}}.</p>
  <p>If you did not expect this change, contact your administrator.</p>
</body>
</html>`))

// CheckInEmail holds fields for the host check-in email.
type CheckInEmail struct {
	StaffName      string
	VisitorName    string
	VisitorProfile string
	VisitorPhone   string
	CheckedInAt    time.Time
}

// PasswordResetEmail holds fields for the password reset email.
type PasswordResetEmail struct {
	Username string
	ResetBy  string
	ResetAt  time.Time
}

// RenderCheckIn returns subject and HTML body for a check-in email.
func RenderCheckIn(data CheckInEmail) (string, string, error) {
	body, err := render(checkInTemplate, struct {
		CheckInEmail
		CheckedInAt string
	}{data, data.CheckedInAt.Format("02 Jan 2006 15:04")})
	return "Visitor arrival: " + data.VisitorName, body, err
}

// RenderPasswordReset returns subject and HTML body for a reset notice.
func RenderPasswordReset(data PasswordResetEmail) (string, string, error) {
	body, err := render(passwordResetTemplate, struct {
		PasswordResetEmail
		ResetAt string
	}{data, data.ResetAt.Format("02 Jan 2006 15:04")})
	return "Your password was reset", body, err
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
