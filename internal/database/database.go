package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	_ "modernc.org/sqlite"
)

type Options struct {
	// Tracing attaches OpenTelemetry spans to every query.
	Tracing bool
	// LogLevel controls GORM's own query logger.
	LogLevel logger.LogLevel
}

func Connect(dsn string, opts Options) (*gorm.DB, error) {
	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	var (
		db  *gorm.DB
		err error
	)
	if IsPostgresDSN(dsn) {
		log.Info().Msg("connecting to PostgreSQL")
		db, err = gorm.Open(postgres.Open(dsn), gcfg)
	} else {
		log.Info().Str("dsn", dsn).Msg("using SQLite for local development")
		db, err = gorm.Open(
			gormsqlite.New(gormsqlite.Config{
				DriverName: "sqlite",
				DSN:        dsn,
			}),
			gcfg,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if !IsPostgresDSN(dsn) {
		db.Exec("PRAGMA journal_mode=WAL;")
		db.Exec("PRAGMA foreign_keys=ON;")
		db.Exec("PRAGMA busy_timeout=5000;")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if opts.Tracing {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, fmt.Errorf("enable gorm tracing: %w", err)
		}
	}

	return db, nil
}

func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
