package settings

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConfigDocument is a JSON document stored under a unique key. Version increments on
// every replace and writers must present the version they read.
type ConfigDocument struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Key       string         `gorm:"column:key;not null;uniqueIndex" json:"key"`
	Value     datatypes.JSON `gorm:"column:value" json:"value"`
	Version   int            `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime;index" json:"updated_at"`
}

func (ConfigDocument) TableName() string { return "config_document" }

func (d *ConfigDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Version == 0 {
		d.Version = 1
	}
	return nil
}
