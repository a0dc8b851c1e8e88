package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductAnalytics is one dated performance sample for a product.
type ProductAnalytics struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index:idx_product_analytics_product_date,priority:1" json:"product_id"`
	Date        time.Time `gorm:"column:date;not null;index:idx_product_analytics_product_date,priority:2" json:"date"`
	Revenue     float64   `gorm:"column:revenue;not null;default:0" json:"revenue"`
	Clicks      int       `gorm:"column:clicks;not null;default:0" json:"clicks"`
	Conversions int       `gorm:"column:conversions;not null;default:0" json:"conversions"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ProductAnalytics) TableName() string { return "product_analytics" }

func (a *ProductAnalytics) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
