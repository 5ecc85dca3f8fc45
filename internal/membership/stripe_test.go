// AngelaMos | 2026
// stripe_test.go

package membership

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/carterperez-dev/membership/internal/config"
)

const testWebhookSecret = "whsec_test_secret"

func testStripeConfig() config.StripeConfig {
	return config.StripeConfig{
		SecretKey:          "sk_test_123",
		WebhookSecret:      testWebhookSecret,
		Currency:           "usd",
		PriceCents:         2500,
		ProductName:        "Lifetime Membership",
		ProductDescription: "One-time membership fee",
	}
}

func newStripeTestProvider(t *testing.T, handler http.HandlerFunc) *StripeProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})

	return NewStripeProvider(testStripeConfig(), &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
}

func TestStripeCreateCheckoutSession(t *testing.T) {
	provider := newStripeTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "u-1", r.PostForm.Get("metadata[userId]"))
		assert.Equal(t, "u-1", r.PostForm.Get("client_reference_id"))
		assert.Equal(t, "a@example.com", r.PostForm.Get("customer_email"))
		assert.Equal(t, "2500", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cs_test_1",
			"object": "checkout.session",
			"url": "https://checkout.stripe.com/c/pay/cs_test_1",
			"payment_status": "unpaid",
			"metadata": {"userId": "u-1"}
		}`))
	})

	session, err := provider.CreateCheckoutSession(context.Background(), CheckoutParams{
		UserID:     "u-1",
		Email:      "a@example.com",
		SuccessURL: "https://members.example.com/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://members.example.com/payment-cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)
	assert.Equal(t, "u-1", session.UserID)
}

func TestStripeGetCheckoutSession_FallsBackToClientReference(t *testing.T) {
	provider := newStripeTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cs_test_1",
			"object": "checkout.session",
			"payment_status": "paid",
			"client_reference_id": "u-9"
		}`))
	})

	session, err := provider.GetCheckoutSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, session.PaymentStatus)
	assert.Equal(t, "u-9", session.UserID)
}

func TestStripeGetCheckoutSession_APIError(t *testing.T) {
	provider := newStripeTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "No such checkout.session"}}`))
	})

	_, err := provider.GetCheckoutSession(context.Background(), "cs_missing")
	assert.Error(t, err)
}

func signedPayload(t *testing.T, payload, secret string) (string, []byte) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: []byte(payload),
		Secret:  secret,
	})
	return signed.Header, signed.Payload
}

const completedEvent = `{
	"id": "evt_1",
	"object": "event",
	"type": "checkout.session.completed",
	"data": {
		"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"payment_status": "paid",
			"metadata": {"userId": "u-1"}
		}
	}
}`

func TestStripeParseWebhook_CheckoutCompleted(t *testing.T) {
	provider := NewStripeProvider(testStripeConfig(), nil)
	header, body := signedPayload(t, completedEvent, testWebhookSecret)

	event, err := provider.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	require.NotNil(t, event.Session)
	assert.Equal(t, "u-1", event.Session.UserID)
	assert.Equal(t, PaymentStatusPaid, event.Session.PaymentStatus)
}

func TestStripeParseWebhook_OtherEventHasNoSession(t *testing.T) {
	provider := NewStripeProvider(testStripeConfig(), nil)
	header, body := signedPayload(t, `{
		"id": "evt_2",
		"object": "event",
		"type": "customer.created",
		"data": {"object": {"id": "cus_1", "object": "customer"}}
	}`, testWebhookSecret)

	event, err := provider.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Nil(t, event.Session)
}

func TestStripeParseWebhook_RejectsBadSignature(t *testing.T) {
	provider := NewStripeProvider(testStripeConfig(), nil)

	header, body := signedPayload(t, completedEvent, "whsec_someone_else")
	_, err := provider.ParseWebhook(body, header)
	assert.Error(t, err)

	_, err = provider.ParseWebhook([]byte(completedEvent), "")
	assert.Error(t, err)

	goodHeader, good := signedPayload(t, completedEvent, testWebhookSecret)
	tampered := append([]byte{}, good...)
	tampered = append(tampered, ' ')
	_, err = provider.ParseWebhook(tampered, goodHeader)
	assert.Error(t, err)
}
