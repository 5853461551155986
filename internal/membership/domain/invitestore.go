package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// PendingInvitation is the transient record authorizing one user to join one
// organization with a one-time code. It lives in the key-value store under
// (organization, email) and expires after the configured TTL.
type PendingInvitation struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	NewUser bool     `json:"new_user"`
	Roles   []string `json:"roles"`
}

type InviteStore interface {
	// Put stores the invitation, overwriting any pending one for the same
	// organization and email.
	Put(ctx context.Context, orgID snowflake.ID, email string, inv PendingInvitation, ttl time.Duration) error
	// Consume atomically deletes and returns the invitation iff the code
	// matches. It returns (nil, nil) when the invitation is absent, expired
	// or the code mismatches; in those cases nothing is deleted.
	Consume(ctx context.Context, orgID snowflake.ID, email, code string) (*PendingInvitation, error)
	// Delete removes a pending invitation unconditionally.
	Delete(ctx context.Context, orgID snowflake.ID, email string) error
}
