package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type ProductAnalyticsRepo interface {
	Create(dbc dbctx.Context, rows []*types.ProductAnalytics) ([]*types.ProductAnalytics, error)
	// ListRecent returns up to limit rows for the product, newest first.
	// limit <= 0 returns all rows.
	ListRecent(dbc dbctx.Context, productID uuid.UUID, limit int) ([]*types.ProductAnalytics, error)
}

type productAnalyticsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductAnalyticsRepo(db *gorm.DB, baseLog *logger.Logger) ProductAnalyticsRepo {
	return &productAnalyticsRepo{
		db:  db,
		log: baseLog.With("repo", "ProductAnalyticsRepo"),
	}
}

func (r *productAnalyticsRepo) Create(dbc dbctx.Context, rows []*types.ProductAnalytics) ([]*types.ProductAnalytics, error) {
	if len(rows) == 0 {
		return []*types.ProductAnalytics{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *productAnalyticsRepo) ListRecent(dbc dbctx.Context, productID uuid.UUID, limit int) ([]*types.ProductAnalytics, error) {
	var out []*types.ProductAnalytics
	if productID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).
		Where("product_id = ?", productID).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
