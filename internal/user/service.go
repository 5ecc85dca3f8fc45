// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/membership/internal/auth"
	"github.com/carterperez-dev/membership/internal/membership"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	req auth.NewUser,
) (*auth.UserInfo, error) {
	tokenHash := req.VerificationTokenHash
	expires := req.VerificationExpires

	user := &User{
		ID:                         uuid.New().String(),
		Email:                      normalizeEmail(req.Email),
		PasswordHash:               req.PasswordHash,
		Name:                       strings.TrimSpace(req.Name),
		EmailVerificationTokenHash: &tokenHash,
		EmailVerificationExpires:   &expires,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) SetVerificationToken(
	ctx context.Context,
	userID, tokenHash string,
	expires time.Time,
) error {
	return s.repo.SetVerificationToken(ctx, userID, tokenHash, expires)
}

func (s *Service) SetResetToken(
	ctx context.Context,
	userID, tokenHash string,
	expires time.Time,
) error {
	return s.repo.SetResetToken(ctx, userID, tokenHash, expires)
}

func (s *Service) MarkVerified(
	ctx context.Context,
	userID, tokenHash string,
) error {
	_, err := s.repo.ConsumeVerificationToken(ctx, userID, tokenHash)
	return err
}

func (s *Service) ResetPassword(
	ctx context.Context,
	userID, tokenHash, passwordHash string,
) error {
	_, err := s.repo.ConsumeResetToken(ctx, userID, tokenHash, passwordHash)
	return err
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetMember(
	ctx context.Context,
	userID string,
) (*membership.Member, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toMember(user), nil
}

func (s *Service) ActivateMembership(
	ctx context.Context,
	userID string,
) (*membership.Member, error) {
	user, err := s.repo.ActivateMembership(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toMember(user), nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return user, nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	user, err := s.repo.UpdateName(ctx, userID, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *Service) Counts(ctx context.Context) (*Counts, error) {
	return s.repo.Counts(ctx)
}

// ClearExpiredTokens is an optimization only. Services compare expiry on every
// read regardless.
func (s *Service) ClearExpiredTokens(ctx context.Context) (int64, error) {
	return s.repo.ClearExpiredTokens(ctx, time.Now())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:                    u.ID,
		Email:                 u.Email,
		Name:                  u.Name,
		PasswordHash:          u.PasswordHash,
		IsVerified:            u.IsVerified,
		IsMember:              u.IsMember,
		MembershipDate:        u.MembershipDate,
		VerificationTokenHash: u.EmailVerificationTokenHash,
		VerificationExpires:   u.EmailVerificationExpires,
		ResetTokenHash:        u.ResetPasswordTokenHash,
		ResetExpires:          u.ResetPasswordExpires,
		CreatedAt:             u.CreatedAt,
	}
}

func toMember(u *User) *membership.Member {
	return &membership.Member{
		ID:             u.ID,
		Email:          u.Email,
		IsMember:       u.IsMember,
		MembershipDate: u.MembershipDate,
	}
}

var (
	_ auth.UserProvider      = (*Service)(nil)
	_ membership.MemberStore = (*Service)(nil)
)
