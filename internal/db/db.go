package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shinyyama/reconnect/internal/config"
	"github.com/shinyyama/reconnect/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func BuildDSN(cfg *config.Config) string {
	addr := cfg.DBHost

	// Prefer Cloud SQL unix socket when INSTANCE_CONNECTION_NAME is provided.
	if cfg.InstanceConnectionName != "" {
		addr = fmt.Sprintf("unix(/cloudsql/%s)", cfg.InstanceConnectionName)
	} else if strings.HasPrefix(cfg.DBHost, "tcp(") || strings.HasPrefix(cfg.DBHost, "unix(") {
		// already wrapped
	} else if strings.HasPrefix(cfg.DBHost, "/") {
		addr = fmt.Sprintf("unix(%s)", cfg.DBHost)
	} else {
		addr = fmt.Sprintf("tcp(%s:%s)", cfg.DBHost, cfg.DBPort)
	}

	return fmt.Sprintf("%s:%s@%s/%s?charset=utf8mb4&parseTime=True&loc=Local", cfg.DBUser, cfg.DBPassword, addr, cfg.DBName)
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)
	gcfg := &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(mysql.Open(dsn), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)

	return db, nil
}

// Migrate creates or updates the found_items table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.FoundItem{})
}

// ConnectWithRetry keeps trying to connect and migrate until it succeeds or ctx is done.
// The HTTP server is already serving while this runs; requests fail with a storage error
// until ready is called.
func ConnectWithRetry(ctx context.Context, cfg *config.Config, ready func(*gorm.DB)) error {
	interval := cfg.DBConnectRetry
	if interval <= 0 {
		interval = 5 * time.Second
	}
	for attempt := 1; ; attempt++ {
		conn, err := Connect(cfg)
		if err == nil {
			if err = Migrate(conn); err != nil {
				log.Warn().Err(err).Msg("auto migrate failed")
			}
			log.Info().Int("attempt", attempt).Msg("MySQL connected")
			ready(conn)
			return nil
		}
		log.Error().Err(err).Int("attempt", attempt).Dur("retry_in", interval).Msg("database connection failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		if interval < time.Minute {
			interval *= 2
		}
	}
}
