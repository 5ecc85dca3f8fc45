// AngelaMos | 2026
// limiter.go

package auth

import (
	"context"

	"github.com/carterperez-dev/membership/internal/middleware"
)

type keyedLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type emailLimiter struct {
	limiter keyedLimiter
}

// NewEmailLimiter keys limits on action and normalized address so a caller
// cannot flood one inbox by rotating source IPs.
func NewEmailLimiter(limiter *middleware.RateLimiter) EmailLimiter {
	return &emailLimiter{limiter: limiter}
}

func (l *emailLimiter) Allow(ctx context.Context, action, email string) bool {
	return l.limiter.Allow(ctx, "ratelimit:email:"+action+":"+email)
}
