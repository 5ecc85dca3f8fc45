// AngelaMos | 2026
// dto.go

package membership

import (
	"time"
)

type CheckoutRequest struct {
	UserID string `json:"userId" validate:"omitempty,max=64"`
	Email  string `json:"email"  validate:"omitempty,email,max=255"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type VerifyPaymentResponse struct {
	Success        bool       `json:"success"`
	Message        string     `json:"message"`
	IsMember       bool       `json:"is_member,omitempty"`
	MembershipDate *time.Time `json:"membership_date,omitempty"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
