// AngelaMos | 2026
// tokens.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/membership/internal/core"
)

type issuedToken struct {
	raw     string
	hash    string
	expires time.Time
}

func (s *Service) newToken(ttl time.Duration) (issuedToken, error) {
	raw, err := core.GenerateOpaqueToken()
	if err != nil {
		return issuedToken{}, fmt.Errorf("generate token: %w", err)
	}

	return issuedToken{
		raw:     raw,
		hash:    core.HashToken(raw),
		expires: s.now().Add(ttl),
	}, nil
}

// IssueVerificationToken replaces any outstanding verification token and
// returns the raw value for the email link. Only its digest is stored.
func (s *Service) IssueVerificationToken(
	ctx context.Context,
	user *UserInfo,
) (string, error) {
	token, err := s.newToken(s.cfg.VerificationTTL)
	if err != nil {
		return "", err
	}

	if err := s.users.SetVerificationToken(ctx, user.ID, token.hash, token.expires); err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}

	return token.raw, nil
}

func (s *Service) IssueResetToken(
	ctx context.Context,
	user *UserInfo,
) (string, error) {
	token, err := s.newToken(s.cfg.ResetTTL)
	if err != nil {
		return "", err
	}

	if err := s.users.SetResetToken(ctx, user.ID, token.hash, token.expires); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	return token.raw, nil
}

func (s *Service) ConsumeVerificationToken(
	ctx context.Context,
	email, token string,
) error {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("get user: %w", err)
	}

	if user.IsVerified {
		return nil
	}

	if !tokenMatches(token, user.VerificationTokenHash) ||
		s.expired(user.VerificationExpires) {
		return ErrInvalidToken
	}

	err = s.users.MarkVerified(ctx, user.ID, *user.VerificationTokenHash)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("mark verified: %w", err)
	}

	// Lost the race to a concurrent consumer of the same link.
	current, getErr := s.users.GetByID(ctx, user.ID)
	if getErr == nil && current.IsVerified {
		return nil
	}
	return ErrInvalidToken
}

// ConsumeResetToken matches email and token together so either one being
// wrong yields the same error. Expiry is reported separately once matched.
func (s *Service) ConsumeResetToken(
	ctx context.Context,
	email, token, newPassword string,
) error {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("get user: %w", err)
	}

	if !tokenMatches(token, user.ResetTokenHash) {
		return ErrInvalidToken
	}

	if s.expired(user.ResetExpires) {
		return ErrExpiredToken
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.users.ResetPassword(ctx, user.ID, *user.ResetTokenHash, passwordHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("reset password: %w", err)
	}

	return nil
}

func (s *Service) expired(expires *time.Time) bool {
	return expires == nil || !s.now().Before(*expires)
}

func tokenMatches(token string, storedHash *string) bool {
	if token == "" || storedHash == nil || *storedHash == "" {
		return false
	}
	return core.CompareTokenHash(token, *storedHash)
}
