// AngelaMos | 2026
// resend.go

package email

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/carterperez-dev/membership/internal/config"
)

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// ResendSender delivers mail through the Resend HTTP API.
type ResendSender struct {
	client *resty.Client
	from   string
}

func NewResendSender(cfg config.EmailConfig) *ResendSender {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &ResendSender{client: client, from: cfg.From}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	var (
		out    resendResponse
		apiErr resendError
	)

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(resendRequest{
			From:    s.from,
			To:      []string{msg.To},
			Subject: msg.Subject,
			HTML:    msg.HTML,
			ReplyTo: msg.ReplyTo,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf(
			"send email: provider returned %d: %s",
			resp.StatusCode(),
			apiErr.Message,
		)
	}

	return nil
}
