// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"max=100"`
}

type UserResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	IsVerified     bool       `json:"is_verified"`
	IsMember       bool       `json:"is_member"`
	MembershipDate *time.Time `json:"membership_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type ProfileResponse struct {
	User UserResponse `json:"user"`
}

type MembershipResponse struct {
	IsMember       bool       `json:"is_member"`
	MembershipDate *time.Time `json:"membership_date"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		IsVerified:     u.IsVerified,
		IsMember:       u.IsMember,
		MembershipDate: u.MembershipDate,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func ToMembershipResponse(u *User) MembershipResponse {
	return MembershipResponse{
		IsMember:       u.IsMember,
		MembershipDate: u.MembershipDate,
	}
}
