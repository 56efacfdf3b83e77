package database

import (
	"strings"

	"github.com/authhybrid/backend/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects with the driver the DSN names: sqlite for file: and
// sqlite: DSNs, postgres for everything else. TranslateError stays on
// in every environment: the conflict paths in the auth service match
// on gorm.ErrDuplicatedKey, which GORM only produces when driver
// errors are translated.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
	if isSQLiteDSN(cfg.DatabaseURL) {
		return gorm.Open(sqlite.Open(strings.TrimPrefix(cfg.DatabaseURL, "sqlite://")), gormCfg)
	}
	return gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
}

func isSQLiteDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "sqlite://") ||
		strings.HasPrefix(dsn, "file:") ||
		dsn == ":memory:"
}
