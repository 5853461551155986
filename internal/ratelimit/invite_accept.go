package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tenantry/internal/config"
)

const keyInviteAccept = "ratelimit:invite:accept:%s:%s"

// InviteAcceptLimiter bounds accept attempts per (organization, email) pair so
// a 6-digit code cannot be brute forced within its TTL.
type InviteAcceptLimiter struct {
	enabled bool
	bucket  *TokenBucket
	rate    float64
	burst   int
}

func NewInviteAcceptLimiter(cfg config.Config, client *redis.Client) *InviteAcceptLimiter {
	limitCfg := cfg.RateLimit
	if !limitCfg.InviteAcceptEnabled || limitCfg.InviteAcceptRate <= 0 || limitCfg.InviteAcceptBurst <= 0 {
		return &InviteAcceptLimiter{}
	}

	return &InviteAcceptLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.InviteAcceptRate,
		burst:   limitCfg.InviteAcceptBurst,
	}
}

func (l *InviteAcceptLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *InviteAcceptLimiter) Allow(ctx context.Context, orgID, email string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	key := fmt.Sprintf(keyInviteAccept, strings.TrimSpace(orgID), strings.ToLower(strings.TrimSpace(email)))
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}
