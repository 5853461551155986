package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"github.com/smallbiznis/tenantry/internal/config"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
)

const inviteTemplate = `<html>
<body>
  <p>Hi {{.Name}},</p>
  <p>You have been invited to join <strong>{{.OrganizationName}}</strong>.</p>
  <p>Your verification code is <strong>{{.Code}}</strong>.</p>
  <p><a href="{{.JoinLink}}">Accept the invitation</a></p>
  <p>This invitation expires automatically.</p>
  <hr/>
  <p>{{.Footer}}</p>
</body>
</html>`

// InviteMailer builds and dispatches invitation email through a Provider.
type InviteMailer struct {
	provider       Provider
	redirectURL    string
	orgDisplayName string
	tmpl           *template.Template
}

func NewInviteMailer(cfg config.Config, provider Provider) *InviteMailer {
	return &InviteMailer{
		provider:       provider,
		redirectURL:    cfg.Invite.RedirectURL,
		orgDisplayName: cfg.Invite.OrgDisplayName,
		tmpl:           template.Must(template.New("invite").Parse(inviteTemplate)),
	}
}

// SendInvitation emails the join link carrying email, organization id,
// new-user flag, code and name.
func (m *InviteMailer) SendInvitation(ctx context.Context, mail domain.InviteMail) error {
	link := m.JoinLink(mail)

	var body bytes.Buffer
	err := m.tmpl.Execute(&body, map[string]any{
		"Name":             mail.Name,
		"OrganizationName": mail.OrganizationName,
		"Code":             mail.Code,
		"JoinLink":         link,
		"Footer":           m.orgDisplayName,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("You're invited to join %s", mail.OrganizationName)
	return m.provider.Send(ctx, []string{mail.To}, subject, body.String())
}

// JoinLink builds the invitation redirect URL.
func (m *InviteMailer) JoinLink(mail domain.InviteMail) string {
	query := url.Values{}
	query.Set("email", mail.To)
	query.Set("organization_id", mail.OrganizationID)
	query.Set("new_user", fmt.Sprintf("%t", mail.NewUser))
	query.Set("code", mail.Code)
	query.Set("name", mail.Name)
	return fmt.Sprintf("%s/join?%s", m.redirectURL, query.Encode())
}
