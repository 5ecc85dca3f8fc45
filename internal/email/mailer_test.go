// AngelaMos | 2026
// mailer_test.go

package email

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/membership/internal/config"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func newTestMailer(t *testing.T, sender Sender, inbox string) (*Mailer, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	m, err := NewMailer(sender, MailerConfig{
		AppName:         "Members",
		ContactInbox:    inbox,
		Frontend:        config.FrontendConfig{BaseURL: "https://members.example.com"},
		VerificationTTL: 24 * time.Hour,
		ResetTTL:        30 * time.Minute,
	}, logger)
	require.NoError(t, err)

	return m, &logs
}

func TestMailer_VerificationLink(t *testing.T) {
	sender := &recordingSender{}
	m, _ := newTestMailer(t, sender, "")

	m.SendVerification(context.Background(), "a+b@example.com", "Ana", "tok123")

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "a+b@example.com", msg.To)
	assert.Equal(t, "Verify your email address", msg.Subject)
	assert.Contains(t, msg.HTML, "https://members.example.com/verify-email?")
	assert.Contains(t, msg.HTML, "token=tok123")
	assert.Contains(t, msg.HTML, "email=a%2Bb%40example.com")
	assert.Contains(t, msg.HTML, "24 hours")
	assert.Contains(t, msg.HTML, "Hi Ana")
}

func TestMailer_ResetLink(t *testing.T) {
	sender := &recordingSender{}
	m, _ := newTestMailer(t, sender, "")

	m.SendPasswordReset(context.Background(), "a@example.com", "", "tok456")

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "Reset your password", msg.Subject)
	assert.Contains(t, msg.HTML, "https://members.example.com/reset-password?")
	assert.Contains(t, msg.HTML, "token=tok456")
	assert.Contains(t, msg.HTML, "30 minutes")
}

func TestMailer_DeliveryFailureIsLoggedNotReturned(t *testing.T) {
	sender := &recordingSender{err: errors.New("provider down")}
	m, logs := newTestMailer(t, sender, "")

	assert.NotPanics(t, func() {
		m.SendVerification(context.Background(), "a@example.com", "", "tok")
	})
	assert.Len(t, sender.sent, 1)
	assert.Contains(t, logs.String(), "send email failed")
	assert.Contains(t, logs.String(), "provider down")
}

func TestMailer_ContactUsesReplyTo(t *testing.T) {
	sender := &recordingSender{}
	m, _ := newTestMailer(t, sender, "inbox@example.com")

	m.SendContact(context.Background(), ContactMessage{
		Name:    "Ana",
		Email:   "ana@example.com",
		Message: "<script>alert(1)</script>",
	})

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "inbox@example.com", msg.To)
	assert.Equal(t, "ana@example.com", msg.ReplyTo)
	assert.Equal(t, "Contact form: Ana", msg.Subject)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestMailer_ContactWithoutInboxIsDropped(t *testing.T) {
	sender := &recordingSender{}
	m, logs := newTestMailer(t, sender, "")

	m.SendContact(context.Background(), ContactMessage{Name: "Ana", Email: "ana@example.com"})

	assert.Empty(t, sender.sent)
	assert.Contains(t, logs.String(), "contact inbox not configured")
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{24 * time.Hour, "24 hours"},
		{time.Hour, "1 hour"},
		{30 * time.Minute, "30 minutes"},
		{90 * time.Minute, "90 minutes"},
		{45 * time.Second, "45s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, humanDuration(tt.in))
	}
}
