package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tenantry/internal/config"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, cfg config.RateLimitConfig) *InviteAcceptLimiter {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewInviteAcceptLimiter(config.Config{RateLimit: cfg}, client)
}

func TestInviteAcceptLimiterExhaustsBurst(t *testing.T) {
	limiter := newLimiter(t, config.RateLimitConfig{
		InviteAcceptEnabled: true,
		InviteAcceptRate:    0.1,
		InviteAcceptBurst:   3,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "42", "jane@example.com")
		require.NoError(t, err)
		require.True(t, allowed, "attempt %d within burst", i)
	}

	allowed, err := limiter.Allow(ctx, "42", "jane@example.com")
	require.NoError(t, err)
	require.False(t, allowed)

	// Buckets are scoped per (organization, email).
	allowed, err = limiter.Allow(ctx, "42", "other@example.com")
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestInviteAcceptLimiterDisabled(t *testing.T) {
	limiter := newLimiter(t, config.RateLimitConfig{InviteAcceptEnabled: false})

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(context.Background(), "42", "jane@example.com")
		require.NoError(t, err)
		require.True(t, allowed)
	}
}

func TestNilLimiterAllows(t *testing.T) {
	var limiter *InviteAcceptLimiter

	allowed, err := limiter.Allow(context.Background(), "42", "jane@example.com")
	require.NoError(t, err)
	require.True(t, allowed)
}
