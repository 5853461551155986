package invitestore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (domain.InviteStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client), mr
}

func TestConsumeWithMatchingCode(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	inv := domain.PendingInvitation{
		Code:    "123456",
		Name:    "Jane Doe",
		NewUser: true,
		Roles:   []string{"support"},
	}
	require.NoError(t, store.Put(ctx, 42, "jane@example.com", inv, time.Hour))

	got, err := store.Consume(ctx, 42, "jane@example.com", "123456")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, inv, *got)

	// Redeemed once; a replay finds nothing.
	got, err = store.Consume(ctx, 42, "jane@example.com", "123456")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestConsumeWithWrongCodeLeavesInvitation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	inv := domain.PendingInvitation{Code: "123456"}
	require.NoError(t, store.Put(ctx, 42, "jane@example.com", inv, time.Hour))

	got, err := store.Consume(ctx, 42, "jane@example.com", "654321")
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = store.Consume(ctx, 42, "jane@example.com", "123456")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestConsumeMissingInvitation(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Consume(context.Background(), 42, "nobody@example.com", "123456")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestConsumeMalformedPayload(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	// A corrupted or legacy value must read as a verification failure, not
	// surface a script error.
	require.NoError(t, mr.Set("invite:42:jane@example.com", "not-json{{"))

	got, err := store.Consume(ctx, 42, "jane@example.com", "123456")
	require.NoError(t, err)
	require.Nil(t, got)

	// The stored value is left untouched.
	raw, err := mr.Get("invite:42:jane@example.com")
	require.NoError(t, err)
	require.Equal(t, "not-json{{", raw)
}

func TestConsumeAfterExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	inv := domain.PendingInvitation{Code: "123456"}
	require.NoError(t, store.Put(ctx, 42, "jane@example.com", inv, time.Minute))

	mr.FastForward(2 * time.Minute)

	got, err := store.Consume(ctx, 42, "jane@example.com", "123456")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPutOverwritesPreviousInvitation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, 42, "jane@example.com", domain.PendingInvitation{Code: "111111"}, time.Hour))
	require.NoError(t, store.Put(ctx, 42, "jane@example.com", domain.PendingInvitation{Code: "222222"}, time.Hour))

	got, err := store.Consume(ctx, 42, "jane@example.com", "111111")
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = store.Consume(ctx, 42, "jane@example.com", "222222")
	require.NoError(t, err)
	require.Equal(t, "222222", got.Code)
}

func TestDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, 42, "jane@example.com", domain.PendingInvitation{Code: "123456"}, time.Hour))
	require.NoError(t, store.Delete(ctx, 42, "jane@example.com"))

	got, err := store.Consume(ctx, 42, "jane@example.com", "123456")
	require.NoError(t, err)
	require.Nil(t, got)
}
