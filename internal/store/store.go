// Package store persists session profiles, saved port forwards, and
// restore-on-start session descriptors in a SQLite database managed by gorm.
// The command-history store (internal/history) is deliberately a separate
// file: it has its own write pattern (high-frequency inserts, FTS triggers)
// and shouldn't share a WAL with the low-frequency profile/settings data
// this package owns.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gluk-w/tabshell/internal/config"
)

var DB *gorm.DB

// Init opens (creating if necessary) the profile/settings database at
// config.Cfg.StorePath and runs auto-migration. Must be called after
// config.Load.
func Init() error {
	dbPath := config.Cfg.StorePath
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open store database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}

	if err := DB.AutoMigrate(&Setting{}, &SessionProfile{}, &PortForward{}, &SessionDescriptor{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	return nil
}

// Close releases the underlying database handle.
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

func GetSetting(key string) (string, error) {
	var s Setting
	if err := DB.Where("key = ?", key).First(&s).Error; err != nil {
		return "", err
	}
	return s.Value, nil
}

func SetSetting(key, value string) error {
	return DB.Where("key = ?", key).Assign(Setting{Value: value}).FirstOrCreate(&Setting{Key: key}).Error
}

func DeleteSetting(key string) error {
	return DB.Where("key = ?", key).Delete(&Setting{}).Error
}

// Profiles

func ListProfiles() ([]SessionProfile, error) {
	var profiles []SessionProfile
	if err := DB.Preload("Forwards").Order("sort_order, name").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func GetProfile(id uint) (*SessionProfile, error) {
	var p SessionProfile
	if err := DB.Preload("Forwards").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func SaveProfile(p *SessionProfile) error {
	return DB.Save(p).Error
}

func DeleteProfile(id uint) error {
	DB.Where("profile_id = ?", id).Delete(&PortForward{})
	return DB.Delete(&SessionProfile{}, id).Error
}

// Session descriptors (restore-on-start)

func ListSessionDescriptors() ([]SessionDescriptor, error) {
	var descs []SessionDescriptor
	if err := DB.Order("last_active_at").Find(&descs).Error; err != nil {
		return nil, err
	}
	return descs, nil
}

func SaveSessionDescriptor(d *SessionDescriptor) error {
	return DB.Save(d).Error
}

func DeleteSessionDescriptor(id string) error {
	return DB.Delete(&SessionDescriptor{}, "id = ?", id).Error
}

func ClearSessionDescriptors() error {
	return DB.Where("1 = 1").Delete(&SessionDescriptor{}).Error
}
