// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                         string     `db:"id"`
	Email                      string     `db:"email"`
	PasswordHash               string     `db:"password_hash"`
	Name                       string     `db:"name"`
	IsVerified                 bool       `db:"is_verified"`
	IsMember                   bool       `db:"is_member"`
	MembershipDate             *time.Time `db:"membership_date"`
	EmailVerificationTokenHash *string    `db:"email_verification_token"`
	EmailVerificationExpires   *time.Time `db:"email_verification_expires"`
	ResetPasswordTokenHash     *string    `db:"reset_password_token"`
	ResetPasswordExpires       *time.Time `db:"reset_password_expires"`
	CreatedAt                  time.Time  `db:"created_at"`
	UpdatedAt                  time.Time  `db:"updated_at"`
}
