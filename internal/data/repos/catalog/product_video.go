package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type ProductVideoRepo interface {
	Create(dbc dbctx.Context, videos []*types.ProductVideo) ([]*types.ProductVideo, error)
	CountByProduct(dbc dbctx.Context, productID uuid.UUID) (int64, error)
}

type productVideoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductVideoRepo(db *gorm.DB, baseLog *logger.Logger) ProductVideoRepo {
	return &productVideoRepo{
		db:  db,
		log: baseLog.With("repo", "ProductVideoRepo"),
	}
}

func (r *productVideoRepo) Create(dbc dbctx.Context, videos []*types.ProductVideo) ([]*types.ProductVideo, error) {
	if len(videos) == 0 {
		return []*types.ProductVideo{}, nil
	}
	if err := dbc.DB(r.db).Create(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *productVideoRepo) CountByProduct(dbc dbctx.Context, productID uuid.UUID) (int64, error) {
	if productID == uuid.Nil {
		return 0, nil
	}
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.ProductVideo{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
