// AngelaMos | 2026
// service.go

package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/membership/internal/config"
	"github.com/carterperez-dev/membership/internal/core"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMissingFields    = errors.New("userId and email are required")
	ErrUserMismatch     = errors.New("user does not match credential")
	ErrAlreadyMember    = errors.New("user is already a member")
	ErrMissingUserID    = errors.New("checkout session has no user id")
	ErrProvider         = errors.New("payment provider failure")
)

const (
	PaymentStatusPaid = "paid"

	msgPaymentVerified = "payment verified, membership activated"
	msgPaymentPending  = "payment not completed"
)

var tracer = otel.Tracer("github.com/carterperez-dev/membership/internal/membership")

type Member struct {
	ID             string
	Email          string
	IsMember       bool
	MembershipDate *time.Time
}

type MemberStore interface {
	GetMember(ctx context.Context, userID string) (*Member, error)
	ActivateMembership(ctx context.Context, userID string) (*Member, error)
}

type CheckoutParams struct {
	UserID     string
	Email      string
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus string
	UserID        string
}

// WebhookEvent carries a checkout session only for event types that can
// complete a payment. Everything else arrives with Session == nil.
type WebhookEvent struct {
	ID      string
	Type    string
	Session *CheckoutSession
}

type PaymentProvider interface {
	CreateCheckoutSession(
		ctx context.Context,
		params CheckoutParams,
	) (*CheckoutSession, error)
	GetCheckoutSession(
		ctx context.Context,
		sessionID string,
	) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// EventLedger remembers delivered webhook event ids so provider retries of an
// already applied event short-circuit.
type EventLedger interface {
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type Service struct {
	members  MemberStore
	provider PaymentProvider
	ledger   EventLedger
	frontend config.FrontendConfig
}

func NewService(
	members MemberStore,
	provider PaymentProvider,
	ledger EventLedger,
	frontend config.FrontendConfig,
) *Service {
	return &Service{
		members:  members,
		provider: provider,
		ledger:   ledger,
		frontend: frontend,
	}
}

// CreateCheckout binds the session to the bearer's identity. A body userId
// or email that names someone else is rejected.
func (s *Service) CreateCheckout(
	ctx context.Context,
	callerID, callerEmail string,
	req CheckoutRequest,
) (*CheckoutResponse, error) {
	ctx, span := tracer.Start(ctx, "membership.CreateCheckout")
	defer span.End()

	userID := req.UserID
	if userID == "" {
		userID = callerID
	}
	email := callerEmail
	if email == "" {
		email = req.Email
	}

	if userID == "" || email == "" {
		return nil, ErrMissingFields
	}
	if userID != callerID {
		return nil, ErrUserMismatch
	}
	if req.Email != "" && callerEmail != "" &&
		!strings.EqualFold(strings.TrimSpace(req.Email), callerEmail) {
		return nil, ErrUserMismatch
	}

	span.SetAttributes(attribute.String("user.id", userID))

	member, err := s.members.GetMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	if member.IsMember {
		return nil, ErrAlreadyMember
	}

	session, err := s.provider.CreateCheckoutSession(ctx, CheckoutParams{
		UserID: userID,
		Email:  email,
		SuccessURL: s.frontend.URL(
			"/payment-success?session_id={CHECKOUT_SESSION_ID}",
		),
		CancelURL: s.frontend.URL("/payment-cancelled"),
	})
	if err != nil {
		core.SetSpanError(ctx, err, "create checkout session")
		return nil, fmt.Errorf("%w: create checkout session: %w", ErrProvider, err)
	}

	slog.InfoContext(ctx, "checkout session created",
		"user_id", userID,
		"session_id", session.ID,
	)

	return &CheckoutResponse{SessionID: session.ID, URL: session.URL}, nil
}

func (s *Service) HandleWebhook(
	ctx context.Context,
	payload []byte,
	signature string,
) error {
	ctx, span := tracer.Start(ctx, "membership.HandleWebhook")
	defer span.End()

	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		core.SetSpanError(ctx, err, "signature verification failed")
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	span.SetAttributes(
		attribute.String("webhook.event_id", event.ID),
		attribute.String("webhook.event_type", event.Type),
	)

	if event.Session == nil {
		slog.DebugContext(ctx, "ignoring webhook event", "type", event.Type)
		return nil
	}

	if event.Session.PaymentStatus != PaymentStatusPaid {
		slog.InfoContext(ctx, "checkout completed without payment",
			"session_id", event.Session.ID,
			"payment_status", event.Session.PaymentStatus,
		)
		return nil
	}

	if event.Session.UserID == "" {
		slog.WarnContext(ctx, "checkout session missing user id",
			"session_id", event.Session.ID,
		)
		return ErrMissingUserID
	}

	first, err := s.ledger.MarkProcessed(ctx, event.ID)
	if err != nil {
		slog.WarnContext(ctx, "event ledger unavailable, processing anyway",
			"event_id", event.ID,
			"error", err,
		)
		first = true
	}
	if !first {
		core.AddSpanEvent(ctx, "duplicate_delivery")
		return nil
	}

	if _, err := s.ApplyPaid(ctx, event.Session.UserID); err != nil {
		if releaseErr := s.ledger.Release(ctx, event.ID); releaseErr != nil {
			slog.WarnContext(ctx, "release webhook event failed",
				"event_id", event.ID,
				"error", releaseErr,
			)
		}
		return err
	}

	return nil
}

func (s *Service) VerifyPayment(
	ctx context.Context,
	callerID, sessionID string,
) (*VerifyPaymentResponse, error) {
	ctx, span := tracer.Start(ctx, "membership.VerifyPayment")
	defer span.End()

	span.SetAttributes(attribute.String("checkout.session_id", sessionID))

	session, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		core.SetSpanError(ctx, err, "retrieve checkout session")
		return nil, fmt.Errorf("%w: retrieve checkout session: %w", ErrProvider, err)
	}

	// Sessions without a user reference cannot be tied to the caller.
	if session.UserID == "" || session.UserID != callerID {
		return nil, ErrUserMismatch
	}

	if session.PaymentStatus != PaymentStatusPaid {
		return &VerifyPaymentResponse{
			Success: false,
			Message: msgPaymentPending,
		}, nil
	}

	member, err := s.ApplyPaid(ctx, callerID)
	if err != nil {
		return nil, err
	}

	return &VerifyPaymentResponse{
		Success:        true,
		Message:        msgPaymentVerified,
		IsMember:       member.IsMember,
		MembershipDate: member.MembershipDate,
	}, nil
}

// ApplyPaid moves a user to the paid state. Repeating it is harmless:
// membership_date keeps its first value.
func (s *Service) ApplyPaid(ctx context.Context, userID string) (*Member, error) {
	ctx, span := tracer.Start(ctx, "membership.ApplyPaid")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", userID))

	member, err := s.members.ActivateMembership(ctx, userID)
	if err != nil {
		core.SetSpanError(ctx, err, "activate membership")
		return nil, fmt.Errorf("activate membership for %s: %w", userID, err)
	}

	slog.InfoContext(ctx, "membership activated",
		"user_id", userID,
		"membership_date", member.MembershipDate,
	)

	return member, nil
}
