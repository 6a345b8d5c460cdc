// Package store persists panel-owned state (saved hosts, backup schedules,
// the operation audit log) in SQLite via GORM. Live SSH sessions are
// deliberately not persisted; they die with the process.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens (creating if needed) the SQLite database at path and migrates
// the schema.
func Init(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}

	if err := db.AutoMigrate(&SavedHost{}, &BackupSchedule{}, &AuditEntry{}, &Setting{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// DB is only published once the schema is in place; a half-initialized
	// handle would let handlers run against missing tables.
	DB = db
	return nil
}

// Close closes the underlying database handle.
func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// GetSetting returns the value for key, or an error when absent.
func GetSetting(key string) (string, error) {
	var s Setting
	if err := DB.First(&s, "key = ?", key).Error; err != nil {
		return "", err
	}
	return s.Value, nil
}

// SetSetting upserts a setting.
func SetSetting(key, value string) error {
	return DB.Save(&Setting{Key: key, Value: value}).Error
}

// Audit appends one entry to the operation log. Failures are returned so
// callers may log them, but callers should not fail the user-facing
// operation over a bookkeeping error.
func Audit(entry AuditEntry) error {
	return DB.Create(&entry).Error
}
