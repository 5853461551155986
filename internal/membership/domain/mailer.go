package domain

import "context"

// InviteMail carries everything needed to build the invitation email.
type InviteMail struct {
	To               string
	Name             string
	OrganizationID   string
	OrganizationName string
	Code             string
	NewUser          bool
}

// InviteMailer dispatches invitation emails. Sends are fire-and-forget:
// delivery is never verified, but a transport failure propagates.
type InviteMailer interface {
	SendInvitation(ctx context.Context, mail InviteMail) error
}
