package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"app/internal/config"
)

// Connect は設定からDSNを組み立ててPostgresに接続する。
// devではSQLログを出し、それ以外は警告以上だけにする。
func Connect(cfg config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.GoEnv == "dev" {
		level = logger.Info
	}

	return gorm.Open(postgres.Open(buildDSN(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
}

func buildDSN(cfg config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB,
	)
}
