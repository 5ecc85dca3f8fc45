// AngelaMos | 2026
// mailer.go

package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"time"

	"github.com/carterperez-dev/membership/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

type MailerConfig struct {
	AppName         string
	ContactInbox    string
	Frontend        config.FrontendConfig
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

// Mailer renders transactional templates and hands them to a Sender.
// Delivery failures are logged and never returned to the caller.
type Mailer struct {
	sender    Sender
	templates *template.Template
	cfg       MailerConfig
	logger    *slog.Logger
	now       func() time.Time
}

func NewMailer(
	sender Sender,
	cfg MailerConfig,
	logger *slog.Logger,
) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}

	return &Mailer{
		sender:    sender,
		templates: tmpl,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}, nil
}

type linkData struct {
	AppName   string
	Name      string
	Link      string
	ExpiresIn string
	Year      int
}

func (m *Mailer) SendVerification(ctx context.Context, to, name, token string) {
	m.deliver(ctx, "verification", to, "Verify your email address", "", linkData{
		AppName:   m.cfg.AppName,
		Name:      name,
		Link:      m.tokenLink("/verify-email", to, token),
		ExpiresIn: humanDuration(m.cfg.VerificationTTL),
		Year:      m.now().Year(),
	})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, token string) {
	m.deliver(ctx, "reset", to, "Reset your password", "", linkData{
		AppName:   m.cfg.AppName,
		Name:      name,
		Link:      m.tokenLink("/reset-password", to, token),
		ExpiresIn: humanDuration(m.cfg.ResetTTL),
		Year:      m.now().Year(),
	})
}

func (m *Mailer) SendContact(ctx context.Context, msg ContactMessage) {
	if m.cfg.ContactInbox == "" {
		m.logger.WarnContext(ctx, "contact inbox not configured, dropping message",
			"from", msg.Email,
		)
		return
	}

	subject := fmt.Sprintf("Contact form: %s", msg.Name)
	m.deliver(ctx, "contact", m.cfg.ContactInbox, subject, msg.Email, msg)
}

func (m *Mailer) tokenLink(path, email, token string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return m.cfg.Frontend.URL(path) + "?" + q.Encode()
}

func (m *Mailer) deliver(
	ctx context.Context,
	tmpl, to, subject, replyTo string,
	data any,
) {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		m.logger.ErrorContext(ctx, "render email failed",
			"template", tmpl,
			"error", err,
		)
		return
	}

	err := m.sender.Send(ctx, Message{
		To:      to,
		Subject: subject,
		HTML:    body.String(),
		ReplyTo: replyTo,
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "send email failed",
			"template", tmpl,
			"to", to,
			"error", err,
		)
		return
	}

	m.logger.InfoContext(ctx, "email sent", "template", tmpl, "to", to)
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
