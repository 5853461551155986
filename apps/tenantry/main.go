package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantry/internal/migration"
	"github.com/smallbiznis/tenantry/internal/observability"
	"github.com/smallbiznis/tenantry/internal/server"
	"github.com/smallbiznis/tenantry/pkg/db"
	"github.com/smallbiznis/tenantry/pkg/redis"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		redis.Module,
		server.Module,
		migration.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
