// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/membership/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SetVerificationToken(
		ctx context.Context,
		id, tokenHash string,
		expires time.Time,
	) error
	SetResetToken(
		ctx context.Context,
		id, tokenHash string,
		expires time.Time,
	) error
	ConsumeVerificationToken(
		ctx context.Context,
		id, tokenHash string,
	) (*User, error)
	ConsumeResetToken(
		ctx context.Context,
		id, tokenHash, passwordHash string,
	) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateName(ctx context.Context, id, name string) (*User, error)
	ActivateMembership(ctx context.Context, id string) (*User, error)
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)
	Counts(ctx context.Context) (*Counts, error)
}

type Counts struct {
	Total    int64 `db:"total"`
	Verified int64 `db:"verified"`
	Members  int64 `db:"members"`
}

const userColumns = `
		id, email, password_hash, name, is_verified, is_member,
		membership_date, email_verification_token, email_verification_expires,
		reset_password_token, reset_password_expires, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, name,
			email_verification_token, email_verification_expires
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING is_verified, is_member, created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.EmailVerificationTokenHash,
		user.EmailVerificationExpires,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT` + userColumns + `
		FROM users
		WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT` + userColumns + `
		FROM users
		WHERE email = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) SetVerificationToken(
	ctx context.Context,
	id, tokenHash string,
	expires time.Time,
) error {
	query := `
		UPDATE users
		SET email_verification_token = $2,
		    email_verification_expires = $3,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "set verification token", query, id, tokenHash, expires)
}

func (r *repository) SetResetToken(
	ctx context.Context,
	id, tokenHash string,
	expires time.Time,
) error {
	query := `
		UPDATE users
		SET reset_password_token = $2,
		    reset_password_expires = $3,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "set reset token", query, id, tokenHash, expires)
}

// ConsumeVerificationToken marks the account verified and clears the token in
// one statement. The token hash guard makes a concurrent second consumer see
// ErrNotFound instead of reusing the token.
func (r *repository) ConsumeVerificationToken(
	ctx context.Context,
	id, tokenHash string,
) (*User, error) {
	query := `
		UPDATE users
		SET is_verified = TRUE,
		    email_verification_token = NULL,
		    email_verification_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND email_verification_token = $2
		RETURNING` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query, id, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consume verification token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume verification token: %w", err)
	}

	return &user, nil
}

func (r *repository) ConsumeResetToken(
	ctx context.Context,
	id, tokenHash, passwordHash string,
) (*User, error) {
	query := `
		UPDATE users
		SET password_hash = $3,
		    reset_password_token = NULL,
		    reset_password_expires = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND reset_password_token = $2
		RETURNING` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query, id, tokenHash, passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consume reset token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}

	return &user, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *repository) UpdateName(
	ctx context.Context,
	id, name string,
) (*User, error) {
	query := `
		UPDATE users
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query, id, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update name: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update name: %w", err)
	}

	return &user, nil
}

// ActivateMembership is idempotent: membership_date keeps its first value.
func (r *repository) ActivateMembership(
	ctx context.Context,
	id string,
) (*User, error) {
	query := `
		UPDATE users
		SET is_member = TRUE,
		    membership_date = COALESCE(membership_date, NOW()),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("activate membership: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("activate membership: %w", err)
	}

	return &user, nil
}

func (r *repository) ClearExpiredTokens(
	ctx context.Context,
	now time.Time,
) (int64, error) {
	query := `
		UPDATE users
		SET email_verification_token = CASE
		        WHEN email_verification_expires < $1 THEN NULL
		        ELSE email_verification_token END,
		    email_verification_expires = CASE
		        WHEN email_verification_expires < $1 THEN NULL
		        ELSE email_verification_expires END,
		    reset_password_token = CASE
		        WHEN reset_password_expires < $1 THEN NULL
		        ELSE reset_password_token END,
		    reset_password_expires = CASE
		        WHEN reset_password_expires < $1 THEN NULL
		        ELSE reset_password_expires END,
		    updated_at = NOW()
		WHERE email_verification_expires < $1
		   OR reset_password_expires < $1`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("clear expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear expired tokens: %w", err)
	}

	return rows, nil
}

func (r *repository) Counts(ctx context.Context) (*Counts, error) {
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE is_verified) AS verified,
		       COUNT(*) FILTER (WHERE is_member) AS members
		FROM users`

	var counts Counts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	return &counts, nil
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
