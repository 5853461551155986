// Package db opens and configures the relational store.
package db

import (
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/tenantry/internal/config"
	obslogger "github.com/smallbiznis/tenantry/internal/observability/logger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Open connects to the configured database with the zap-backed GORM logger.
func Open(cfg config.Config) (*gorm.DB, error) {
	dialect, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialect, &gorm.Config{
		Logger: obslogger.NewGormLogger(),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)

	return conn, nil
}

// NewTest opens an in-memory sqlite database for tests.
func NewTest() (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
}

// Module wires the database connection.
var Module = fx.Module("db",
	fx.Provide(Open),
)
