// AngelaMos | 2026
// handler_test.go

package membership

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/membership/internal/core"
	"github.com/carterperez-dev/membership/internal/middleware"
)

type stubVerifier struct{}

func (stubVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	if token != "u-1" {
		return nil, core.ErrTokenInvalid
	}
	return &middleware.AccessTokenClaims{UserID: "u-1", Email: "u-1@example.com"}, nil
}

func newTestRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, middleware.Authenticator(stubVerifier{}))
	return r
}

func serve(h http.Handler, method, path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreateCheckout(t *testing.T) {
	svc := newTestService(newFakeMembers("u-1", "u-2"), &fakeProvider{}, newMemLedger())
	h := newTestRouter(svc)

	rec := serve(h, http.MethodPost, "/create-checkout-session", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, http.MethodPost, "/create-checkout-session", "stolen", `{}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, http.MethodPost, "/create-checkout-session", "u-1",
		`{"userId":"u-2","email":"u-2@example.com"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, http.MethodPost, "/create-checkout-session", "u-1",
		`{"userId":"u-1","email":"u-2@example.com"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, http.MethodPost, "/create-checkout-session", "u-1",
		`{"userId":"u-1","email":"u-1@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cs_test_1", resp.SessionID)
	assert.NotEmpty(t, resp.URL)

	rec = serve(h, http.MethodPost, "/create-checkout-session", "u-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerCreateCheckout_UserGone(t *testing.T) {
	svc := newTestService(newFakeMembers(), &fakeProvider{}, newMemLedger())
	h := newTestRouter(svc)

	rec := serve(h, http.MethodPost, "/create-checkout-session", "u-1", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerCreateCheckout_ProviderError(t *testing.T) {
	svc := newTestService(
		newFakeMembers("u-1"),
		&fakeProvider{apiErr: errors.New("stripe down")},
		newMemLedger(),
	)
	h := newTestRouter(svc)

	rec := serve(h, http.MethodPost, "/create-checkout-session", "u-1", `{}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body core.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PAYMENT_PROVIDER_ERROR", body.Error.Code)
}

func TestHandlerWebhook(t *testing.T) {
	members := newFakeMembers("u-1")
	provider := &fakeProvider{event: paidEvent("evt_1", "u-1")}
	h := newTestRouter(newTestService(members, provider, newMemLedger()))

	rec := serve(h, http.MethodPost, "/webhook", "", `{"id":"evt_1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	assert.True(t, members.members["u-1"].IsMember)

	rec = serve(h, http.MethodPost, "/webhook", "", `{"id":"evt_1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, members.activations)
}

func TestHandlerWebhook_BadSignature(t *testing.T) {
	members := newFakeMembers("u-1")
	provider := &fakeProvider{parseErr: errors.New("no signatures found")}
	h := newTestRouter(newTestService(members, provider, newMemLedger()))

	rec := serve(h, http.MethodPost, "/webhook", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, members.members["u-1"].IsMember)
}

func TestHandlerVerifyPayment(t *testing.T) {
	members := newFakeMembers("u-1")
	provider := &fakeProvider{sessions: map[string]*CheckoutSession{
		"cs_paid":   {ID: "cs_paid", PaymentStatus: PaymentStatusPaid, UserID: "u-1"},
		"cs_unpaid": {ID: "cs_unpaid", PaymentStatus: "unpaid", UserID: "u-1"},
		"cs_link":   {ID: "cs_link", PaymentStatus: PaymentStatusPaid},
	}}
	h := newTestRouter(newTestService(members, provider, newMemLedger()))

	rec := serve(h, http.MethodGet, "/verify-payment/cs_link", "u-1", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, members.members["u-1"].IsMember)

	rec = serve(h, http.MethodGet, "/verify-payment/cs_unpaid", "u-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pending VerifyPaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	assert.False(t, pending.Success)

	rec = serve(h, http.MethodGet, "/verify-payment/cs_paid", "u-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var paid VerifyPaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paid))
	assert.True(t, paid.Success)
	assert.True(t, paid.IsMember)

	rec = serve(h, http.MethodGet, "/verify-payment/cs_missing", "u-1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(h, http.MethodGet, "/verify-payment/cs_paid", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
