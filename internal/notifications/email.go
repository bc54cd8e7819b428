package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"servetix/internal/shared/config"

	"gopkg.in/gomail.v2"
)

// EmailSender delivers one notification as an email
type EmailSender interface {
	Send(ctx context.Context, notification *Notification) error
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type GomailSender struct {
	dialer    mailDialer
	fromEmail string
	fromName  string
	templates map[NotificationType]*template.Template
}

func NewGomailSender(cfg config.EmailConfig) (*GomailSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST is required to send email")
	}
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return newGomailSender(dialer, cfg.FromEmail, cfg.FromName), nil
}

func newGomailSender(dialer mailDialer, fromEmail, fromName string) *GomailSender {
	s := &GomailSender{
		dialer:    dialer,
		fromEmail: fromEmail,
		fromName:  fromName,
		templates: make(map[NotificationType]*template.Template),
	}
	for notType, body := range emailTemplates {
		s.templates[notType] = template.Must(template.New(string(notType)).Parse(layoutStart + body + layoutEnd))
	}
	return s
}

func (s *GomailSender) Send(ctx context.Context, notification *Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := s.Render(notification)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.fromEmail, s.fromName)
	m.SetAddressHeader("To", notification.RecipientEmail, notification.RecipientName)
	m.SetHeader("Subject", notification.Subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", notification.RecipientEmail, err)
	}
	return nil
}

// Render produces the HTML body for a notification
func (s *GomailSender) Render(notification *Notification) (string, error) {
	tmpl, ok := s.templates[notification.Type]
	if !ok {
		return "", fmt.Errorf("no email template for %s", notification.Type)
	}

	data := map[string]interface{}{
		"Name": notification.RecipientName,
		"Data": notification.TemplateData,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", notification.Type, err)
	}
	return buf.String(), nil
}

const layoutStart = `<!DOCTYPE html><html><body style="font-family:Arial,sans-serif;color:#222">
<h2 style="color:#d3a15a">ServeTix</h2>
<p>Hi {{.Name}},</p>
`

const layoutEnd = `
<p style="color:#888;font-size:12px">This email was sent automatically, please do not reply.</p>
</body></html>`

var emailTemplates = map[NotificationType]string{
	TypePurchaseReserved: `<p>Your seats for <b>{{index .Data "match_title"}}</b> are reserved under order <b>{{index .Data "order_id"}}</b>.</p>
<p>Seats: {{index .Data "seats"}}<br>Total: Rp{{index .Data "total_price"}}</p>
<p>Complete your payment to receive your e-ticket.{{with index .Data "expires_at"}} The hold expires at {{.}}.{{end}}</p>`,

	TypePurchaseConfirmed: `<p>Payment for order <b>{{index .Data "order_id"}}</b> was received via {{index .Data "payment_method"}}.</p>
<p>Seats: {{index .Data "seats"}}</p>
<p>Show the QR code of each seat at the gate. You can open your e-ticket in the ServeTix app.</p>`,

	TypePurchaseCancelled: `<p>Order <b>{{index .Data "order_id"}}</b> has been cancelled and its seats were released.</p>`,

	TypePurchaseExpired: `<p>The seat hold for order <b>{{index .Data "order_id"}}</b> expired before payment was received, so the seats were released.</p>`,

	TypeMatchReminder: `<p>Reminder: <b>{{index .Data "match_title"}}</b> starts {{index .Data "start_time"}}{{with index .Data "venue"}} at {{.}}{{end}}.</p>
<p>Order {{index .Data "order_id"}}. Please arrive early.</p>`,
}
