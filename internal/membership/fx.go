package membership

import (
	"github.com/smallbiznis/tenantry/internal/membership/event"
	"github.com/smallbiznis/tenantry/internal/membership/invitestore"
	"github.com/smallbiznis/tenantry/internal/membership/repository"
	"github.com/smallbiznis/tenantry/internal/membership/service"
	"go.uber.org/fx"
)

var Module = fx.Module("membership.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(invitestore.New),
	fx.Provide(event.NewOutboxPublisher),
	fx.Provide(service.NewService),
)
