// AngelaMos | 2026
// stripe.go

package membership

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/carterperez-dev/membership/internal/config"
)

const metadataUserID = "userId"

type StripeProvider struct {
	api           *client.API
	webhookSecret string
	cfg           config.StripeConfig
}

// NewStripeProvider builds a provider against the live Stripe API. Passing
// backends points it elsewhere, which tests use with httptest.
func NewStripeProvider(
	cfg config.StripeConfig,
	backends *stripe.Backends,
) *StripeProvider {
	return &StripeProvider{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
		cfg:           cfg,
	}
}

func (p *StripeProvider) CreateCheckoutSession(
	ctx context.Context,
	params CheckoutParams,
) (*CheckoutSession, error) {
	sp := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.cfg.ProductName),
						Description: stripe.String(p.cfg.ProductDescription),
					},
					UnitAmount: stripe.Int64(p.cfg.PriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
		CustomerEmail:     stripe.String(params.Email),
		ClientReferenceID: stripe.String(params.UserID),
	}
	sp.Context = ctx
	sp.AddMetadata(metadataUserID, params.UserID)

	session, err := p.api.CheckoutSessions.New(sp)
	if err != nil {
		return nil, fmt.Errorf("stripe create session: %w", err)
	}

	return toCheckoutSession(session), nil
}

func (p *StripeProvider) GetCheckoutSession(
	ctx context.Context,
	sessionID string,
) (*CheckoutSession, error) {
	sp := &stripe.CheckoutSessionParams{}
	sp.Context = ctx

	session, err := p.api.CheckoutSessions.Get(sessionID, sp)
	if err != nil {
		return nil, fmt.Errorf("stripe get session: %w", err)
	}

	return toCheckoutSession(session), nil
}

func (p *StripeProvider) ParseWebhook(
	payload []byte,
	signature string,
) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("construct event: %w", err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Session = toCheckoutSession(&session)
	}

	return out, nil
}

func toCheckoutSession(s *stripe.CheckoutSession) *CheckoutSession {
	userID := s.Metadata[metadataUserID]
	if userID == "" {
		userID = s.ClientReferenceID
	}

	return &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		UserID:        userID,
	}
}
