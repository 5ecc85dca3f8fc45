// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carterperez-dev/membership/internal/config"
	"github.com/carterperez-dev/membership/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrExpiredToken       = errors.New("token expired")
)

const (
	msgRegistered     = "registration successful, please check your email to verify your account"
	msgLoggedIn       = "login successful"
	msgVerified       = "email verified successfully"
	msgResendGeneric  = "if an account with that email exists and is not verified, a verification email has been sent"
	msgForgotGeneric  = "if an account with that email exists, a password reset link has been sent"
	msgPasswordReset  = "password has been reset successfully"
	msgLoggedOut      = "logged out successfully"
	actionResend      = "resend-verification"
	actionForgotReset = "forgot-password"
)

type UserInfo struct {
	ID                    string
	Email                 string
	Name                  string
	PasswordHash          string
	IsVerified            bool
	IsMember              bool
	MembershipDate        *time.Time
	VerificationTokenHash *string
	VerificationExpires   *time.Time
	ResetTokenHash        *string
	ResetExpires          *time.Time
	CreatedAt             time.Time
}

type NewUser struct {
	Email                 string
	PasswordHash          string
	Name                  string
	VerificationTokenHash string
	VerificationExpires   time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, user NewUser) (*UserInfo, error)
	SetVerificationToken(
		ctx context.Context,
		userID, tokenHash string,
		expires time.Time,
	) error
	SetResetToken(
		ctx context.Context,
		userID, tokenHash string,
		expires time.Time,
	) error
	MarkVerified(ctx context.Context, userID, tokenHash string) error
	ResetPassword(
		ctx context.Context,
		userID, tokenHash, passwordHash string,
	) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Notifier delivers token links. Implementations never fail the caller.
type Notifier interface {
	SendVerification(ctx context.Context, to, name, token string)
	SendPasswordReset(ctx context.Context, to, name, token string)
}

// EmailLimiter throttles unauthenticated flows that send mail to an address.
type EmailLimiter interface {
	Allow(ctx context.Context, action, email string) bool
}

type Service struct {
	jwt      *JWTManager
	users    UserProvider
	notifier Notifier
	limiter  EmailLimiter
	hasher   *core.PasswordHasher
	cfg      config.AuthConfig
	now      func() time.Time
}

func NewService(
	jwt *JWTManager,
	users UserProvider,
	notifier Notifier,
	limiter EmailLimiter,
	cfg config.AuthConfig,
) *Service {
	return &Service{
		jwt:      jwt,
		users:    users,
		notifier: notifier,
		limiter:  limiter,
		hasher:   core.NewPasswordHasher(cfg.BcryptCost),
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	email := NormalizeEmail(req.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	verification, err := s.newToken(s.cfg.VerificationTTL)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, NewUser{
		Email:                 email,
		PasswordHash:          passwordHash,
		Name:                  strings.TrimSpace(req.Name),
		VerificationTokenHash: verification.hash,
		VerificationExpires:   verification.expires,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.notifier.SendVerification(ctx, user.Email, user.Name, verification.raw)

	token, _, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)

	return &AuthResponse{
		Message: msgRegistered,
		Token:   token,
		User:    ToUserResponse(user),
	}, nil
}

// Login compares the password before looking at verification status so an
// unverified account is only revealed to someone holding its password.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = s.hasher.VerifyTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := s.hasher.VerifyTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			slog.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	token, _, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AuthResponse{
		Message: msgLoggedIn,
		Token:   token,
		User:    ToUserResponse(user),
	}, nil
}

func (s *Service) VerifyEmail(
	ctx context.Context,
	req VerifyEmailRequest,
) (*MessageResponse, error) {
	if err := s.ConsumeVerificationToken(ctx, req.Email, req.Token); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: msgVerified}, nil
}

func (s *Service) ResendVerification(
	ctx context.Context,
	req EmailRequest,
) (*MessageResponse, error) {
	resp := &MessageResponse{Message: msgResendGeneric}
	email := NormalizeEmail(req.Email)

	if !s.limiter.Allow(ctx, actionResend, email) {
		return resp, nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return resp, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.IsVerified {
		return resp, nil
	}

	token, err := s.IssueVerificationToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.notifier.SendVerification(ctx, user.Email, user.Name, token)

	return resp, nil
}

func (s *Service) ForgotPassword(
	ctx context.Context,
	req EmailRequest,
) (*MessageResponse, error) {
	resp := &MessageResponse{Message: msgForgotGeneric}
	email := NormalizeEmail(req.Email)

	if !s.limiter.Allow(ctx, actionForgotReset, email) {
		return resp, nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return resp, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	token, err := s.IssueResetToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.notifier.SendPasswordReset(ctx, user.Email, user.Name, token)

	return resp, nil
}

func (s *Service) ResetPassword(
	ctx context.Context,
	req ResetPasswordRequest,
) (*MessageResponse, error) {
	if err := s.ConsumeResetToken(ctx, req.Email, req.Token, req.Password); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: msgPasswordReset}, nil
}

// Logout is stateless: bearer tokens expire on their own and the client
// discards its copy.
func (s *Service) Logout() *MessageResponse {
	return &MessageResponse{Message: msgLoggedOut}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
