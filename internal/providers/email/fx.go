package email

import (
	"strings"

	"github.com/smallbiznis/tenantry/internal/config"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
	fx.Provide(NewInviteMailer),
	fx.Provide(func(m *InviteMailer) domain.InviteMailer { return m }),
)

// NewFromConfig selects the transport. Without a relay configured, outbound
// email is discarded.
func NewFromConfig(cfg config.Config) Provider {
	if strings.TrimSpace(cfg.SMTP.Host) == "" {
		return &NoOpProvider{}
	}
	return NewSMTP(cfg.SMTP)
}
