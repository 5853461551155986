// Package invitestore keeps pending invitations in redis with a TTL.
package invitestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
)

// consumeScript deletes the invitation only when the stored code matches, so
// a concurrent accept with the same code cannot redeem it twice. A value that
// fails to decode reads as no match, not as a script error.
const consumeScript = `
local raw = redis.call("GET", KEYS[1])
if not raw then
  return false
end
local ok, inv = pcall(cjson.decode, raw)
if not ok or type(inv) ~= "table" then
  return false
end
if inv["code"] ~= ARGV[1] then
  return false
end
redis.call("DEL", KEYS[1])
return raw
`

type store struct {
	client *redis.Client
	script *redis.Script
}

func New(client *redis.Client) domain.InviteStore {
	return &store{
		client: client,
		script: redis.NewScript(consumeScript),
	}
}

func key(orgID snowflake.ID, email string) string {
	return fmt.Sprintf("invite:%s:%s", orgID, email)
}

func (s *store) Put(ctx context.Context, orgID snowflake.ID, email string, inv domain.PendingInvitation, ttl time.Duration) error {
	payload, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(orgID, email), payload, ttl).Err()
}

func (s *store) Consume(ctx context.Context, orgID snowflake.ID, email, code string) (*domain.PendingInvitation, error) {
	raw, err := s.script.Run(ctx, s.client, []string{key(orgID, email)}, code).Text()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var inv domain.PendingInvitation
	if err := json.Unmarshal([]byte(raw), &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *store) Delete(ctx context.Context, orgID snowflake.ID, email string) error {
	return s.client.Del(ctx, key(orgID, email)).Err()
}
