package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lojf/campreg/internal/models"
)

const dsnParams = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

var conn *gorm.DB

// Init opens the registry database at path and keeps it as the process-wide
// connection returned by Conn.
func Init(path string, log *zap.Logger) error {
	d, err := Open(path)
	if err != nil {
		return err
	}
	conn = d
	if log != nil {
		log.Info("database ready (sqlite)", zap.String("path", path))
	}
	return nil
}

// Open opens (or creates) a sqlite file and migrates the registry schema.
func Open(path string) (*gorm.DB, error) {
	if path == "" {
		path = "campreg.db"
	}
	d, err := gorm.Open(sqlite.Open(path+dsnParams), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := Migrate(d); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return d, nil
}

// Migrate creates or updates every registry table.
func Migrate(d *gorm.DB) error {
	if err := d.AutoMigrate(
		&models.Camp{},
		&models.User{},
		&models.Family{},
		&models.Individual{},
		&models.Delegate{},
		&models.AidDelivery{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// Lookup paths the report loader and search hit on every request.
	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS idx_individual_name ON individuals(name)",
		"CREATE INDEX IF NOT EXISTS idx_individual_nid  ON individuals(nid)",
	} {
		if err := d.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func Conn() *gorm.DB {
	return conn
}
