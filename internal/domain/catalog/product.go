package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProductStatusActive   = "ACTIVE"
	ProductStatusArchived = "ARCHIVED"
)

// Product is a managed affiliate product. Onboarding creates it ACTIVE; only the
// kill pass of the optimizer moves it to ARCHIVED.
type Product struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	Status       string         `gorm:"column:status;not null;index" json:"status"`
	Niche        string         `gorm:"column:niche;index" json:"niche,omitempty"`
	AffiliateURL string         `gorm:"column:affiliate_url" json:"affiliate_url,omitempty"`
	ArchivedAt   *time.Time     `gorm:"column:archived_at" json:"archived_at,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;autoUpdateTime;index" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Product) TableName() string { return "product" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProductStatusActive
	}
	return nil
}
