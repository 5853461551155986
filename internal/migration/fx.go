package migration

import (
	"github.com/smallbiznis/tenantry/internal/config"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
	"github.com/smallbiznis/tenantry/internal/membership/event"
	"github.com/smallbiznis/tenantry/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite deployments fall back to gorm's schema sync.
			err := conn.AutoMigrate(
				&domain.Organization{},
				&domain.User{},
				&domain.Member{},
				&domain.RoleLabel{},
				&event.MembershipEvent{},
			)
			if err != nil {
				return err
			}
		}

		if cfg.Bootstrap.EnsureDefaultOrgAndAdmin {
			return seed.EnsureDefaultOrgAndAdmin(conn)
		}
		return nil
	}),
)
