package db

import (
	"regexp"
	"strings"
	"time"

	"github.com/amansoomro062/codesign/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

var sslmodeRe = regexp.MustCompile(`(?i)\bsslmode\s*=\s*[\w-]+`)

// RequireTLS rewrites (or appends) sslmode so the connection is encrypted.
func RequireTLS(dsn string) string {
	if sslmodeRe.MatchString(dsn) {
		return sslmodeRe.ReplaceAllString(dsn, "sslmode=require")
	}
	if dsn != "" && !strings.HasSuffix(dsn, " ") {
		dsn += " "
	}
	return dsn + "sslmode=require"
}

func New(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.IsProduction() {
		level = logger.Error
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}

	dsn := cfg.Database.DSN
	if cfg.Database.EnableTLS {
		dsn = RequireTLS(dsn)
	}

	db, err := gorm.Open(postgres.Open(dsn), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	return db, nil
}

// RegisterOpenTelemetryPlugin must run after telemetry.SetupTracing so the
// plugin picks up the global tracer provider.
func RegisterOpenTelemetryPlugin(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
