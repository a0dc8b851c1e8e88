package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/autopilot-backend/internal/domain"
)

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:     uuid.New(),
		Title:  title,
		Status: types.ProductStatusActive,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedAnalytics(tb testing.TB, ctx context.Context, tx *gorm.DB, productID uuid.UUID, date time.Time, revenue float64) *types.ProductAnalytics {
	tb.Helper()
	a := &types.ProductAnalytics{
		ID:        uuid.New(),
		ProductID: productID,
		Date:      date.UTC(),
		Revenue:   revenue,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed analytics: %v", err)
	}
	return a
}

func SeedVideos(tb testing.TB, ctx context.Context, tx *gorm.DB, productID uuid.UUID, n int) {
	tb.Helper()
	for i := 0; i < n; i++ {
		v := &types.ProductVideo{ID: uuid.New(), ProductID: productID, Status: "generated"}
		if err := tx.WithContext(ctx).Create(v).Error; err != nil {
			tb.Fatalf("seed video: %v", err)
		}
	}
}
