package experiments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventExposure   = "exposure"
	EventClick      = "click"
	EventConversion = "conversion"
	EventView       = "view"
)

// ABTestEvent is one observed sample for a variant of an A/B test.
type ABTestEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TestID     string    `gorm:"column:test_id;not null;index:idx_ab_test_event_test_variant,priority:1" json:"test_id"`
	Variant    string    `gorm:"column:variant;not null;index:idx_ab_test_event_test_variant,priority:2" json:"variant"`
	Event      string    `gorm:"column:event;not null;index:idx_ab_test_event_test_variant,priority:3" json:"event"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
}

func (ABTestEvent) TableName() string { return "ab_test_event" }

func (e *ABTestEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return nil
}

// VariantCounts is the per-variant aggregate of ABTestEvent rows.
type VariantCounts struct {
	Variant     string
	Exposures   int64
	Clicks      int64
	Conversions int64
	Views       int64
}
