// AngelaMos | 2026
// handler.go

package contact

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/membership/internal/core"
	"github.com/carterperez-dev/membership/internal/email"
)

const msgReceived = "thank you for your message, we will get back to you soon"

type Request struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Email   string `json:"email"   validate:"required,email,max=255"`
	Message string `json:"message" validate:"required,max=5000"`
}

type Notifier interface {
	SendContact(ctx context.Context, msg email.ContactMessage)
}

type Handler struct {
	notifier  Notifier
	validator *validator.Validate
}

func NewHandler(notifier Notifier) *Handler {
	return &Handler{
		notifier:  notifier,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/contact", h.Submit)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	msg := email.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Message: strings.TrimSpace(req.Message),
	}
	if msg.Name == "" || msg.Message == "" {
		core.BadRequest(w, "name and message are required")
		return
	}

	h.notifier.SendContact(r.Context(), msg)

	slog.InfoContext(r.Context(), "contact form submitted", "from", msg.Email)

	core.Message(w, msgReceived)
}
