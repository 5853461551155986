package email

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/smallbiznis/tenantry/internal/config"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
	"github.com/stretchr/testify/require"
)

type captureProvider struct {
	to      []string
	subject string
	body    string
}

func (p *captureProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	p.to = to
	p.subject = subject
	p.body = htmlBody
	return nil
}

func newTestMailer(provider Provider) *InviteMailer {
	cfg := config.Config{
		Invite: config.InviteConfig{
			RedirectURL:    "https://app.example.com",
			OrgDisplayName: "Example Corp",
			TTLSeconds:     3600,
		},
	}
	return NewInviteMailer(cfg, provider)
}

func TestJoinLinkEncodesInvitation(t *testing.T) {
	mailer := newTestMailer(&NoOpProvider{})

	link := mailer.JoinLink(domain.InviteMail{
		To:             "new user+tag@example.com",
		Name:           "New User",
		OrganizationID: "1234567890",
		Code:           "042731",
		NewUser:        true,
	})

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	require.Equal(t, "/join", parsed.Path)

	query := parsed.Query()
	require.Equal(t, "new user+tag@example.com", query.Get("email"))
	require.Equal(t, "1234567890", query.Get("organization_id"))
	require.Equal(t, "true", query.Get("new_user"))
	require.Equal(t, "042731", query.Get("code"))
	require.Equal(t, "New User", query.Get("name"))
}

func TestSendInvitationBody(t *testing.T) {
	provider := &captureProvider{}
	mailer := newTestMailer(provider)

	err := mailer.SendInvitation(context.Background(), domain.InviteMail{
		To:               "invitee@example.com",
		Name:             "Invitee",
		OrganizationID:   "42",
		OrganizationName: "Acme",
		Code:             "998877",
		NewUser:          false,
	})
	require.NoError(t, err)

	require.Equal(t, []string{"invitee@example.com"}, provider.to)
	require.Equal(t, "You're invited to join Acme", provider.subject)
	require.True(t, strings.Contains(provider.body, "998877"))
	require.True(t, strings.Contains(provider.body, "Example Corp"))
	require.True(t, strings.Contains(provider.body, "organization_id=42"))
}