// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Name     string `json:"name"     validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Token string `json:"token" validate:"required,max=128"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Token    string `json:"token"    validate:"required,max=128"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

type UserResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	IsVerified     bool       `json:"is_verified"`
	IsMember       bool       `json:"is_member"`
	MembershipDate *time.Time `json:"membership_date"`
	CreatedAt      time.Time  `json:"created_at"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func ToUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		IsVerified:     u.IsVerified,
		IsMember:       u.IsMember,
		MembershipDate: u.MembershipDate,
		CreatedAt:      u.CreatedAt,
	}
}
