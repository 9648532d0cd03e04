package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gameflix/models"
	"gameflix/utils"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the process-wide connection, opened once at startup.
var DB *gorm.DB

// Open opens a gorm.DB for dsn. postgres:// and key=value DSNs go to
// postgres; sqlite DSNs (file:..., :memory:, sqlite:///path) and the empty
// DSN go to the embedded sqlite driver, the latter as data/gameflix.db.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	if isPostgres(dsn) {
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	if dsn == "" {
		if err := os.MkdirAll("data", 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = "file:" + filepath.ToSlash(filepath.Join("data", "gameflix.db"))
	}
	if strings.HasPrefix(dsn, "sqlite:///") {
		dsn = "file:" + strings.TrimPrefix(dsn, "sqlite:///")
	}
	gdb, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers; a single connection avoids SQLITE_BUSY and
	// keeps :memory: databases shared across the pool.
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return gdb, nil
}

// gormWriter sends gorm's slow-query and error lines to the app logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	utils.Log.WithField("component", "gorm").Warnf(format, args...)
}

// newLogger logs slow queries and failed statements. Missing rows are
// expected on every 404 lookup and are not logged.
func newLogger() logger.Interface {
	return logger.New(gormWriter{}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func isPostgres(dsn string) bool {
	for _, prefix := range []string{"postgres://", "postgresql://", "host="} {
		if strings.HasPrefix(dsn, prefix) {
			return true
		}
	}
	return false
}

// Migrate creates or updates every table the API uses.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.Account{},
		&models.CustomerProfile{},
		&models.DeveloperProfile{},
		&models.Game{},
		&models.Review{},
		&models.Payment{},
		&models.WishlistEntry{},
	)
}

// InitDB opens and migrates the database and stores it in DB.
func InitDB(dsn string) error {
	gdb, err := Open(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}
	if err := Migrate(gdb); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	DB = gdb
	utils.LogInfo("Database connected and migrated", map[string]interface{}{"driver": gdb.Dialector.Name()})
	return nil
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
