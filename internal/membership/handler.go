// AngelaMos | 2026
// handler.go

package membership

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/membership/internal/core"
	"github.com/carterperez-dev/membership/internal/middleware"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBytes = 64 << 10
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Post("/webhook", h.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Post("/create-checkout-session", h.CreateCheckoutSession)
		r.Get("/verify-payment/{sessionID}", h.VerifyPayment)
	})
}

func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if r.ContentLength != 0 {
		if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
			core.JSONError(w, err)
			return
		}
	}

	resp, err := h.service.CreateCheckout(
		r.Context(),
		middleware.GetUserID(r.Context()),
		middleware.GetUserEmail(r.Context()),
		req,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		writeServiceError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		core.BadRequest(w, "unable to read request body")
		return
	}

	err = h.service.HandleWebhook(
		r.Context(),
		payload,
		r.Header.Get(signatureHeader),
	)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			slog.WarnContext(r.Context(), "webhook signature rejected",
				"error", err,
			)
		}
		writeServiceError(w, err)
		return
	}

	core.OK(w, WebhookResponse{Received: true})
}

func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		core.BadRequest(w, "session id is required")
		return
	}

	resp, err := h.service.VerifyPayment(
		r.Context(),
		middleware.GetUserID(r.Context()),
		sessionID,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	core.OK(w, resp)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidSignature):
		core.BadRequest(w, "invalid webhook signature")
	case errors.Is(err, ErrMissingFields):
		core.BadRequest(w, "userId and email are required")
	case errors.Is(err, ErrMissingUserID):
		core.BadRequest(w, "checkout session has no user id")
	case errors.Is(err, ErrAlreadyMember):
		core.BadRequest(w, "membership is already active")
	case errors.Is(err, ErrUserMismatch):
		core.Forbidden(w, "checkout does not belong to the authenticated user")
	case errors.Is(err, ErrProvider):
		core.JSONError(w, core.NewAppError(
			err,
			"payment provider request failed",
			http.StatusInternalServerError,
			"PAYMENT_PROVIDER_ERROR",
		))
	default:
		core.InternalServerError(w, err)
	}
}
