package settings

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/autopilot-backend/internal/data/db"
	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/autopilot-backend/internal/pkg/errors"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type ConfigDocumentRepo interface {
	// GetByKey returns nil, nil when no document exists.
	GetByKey(dbc dbctx.Context, key string) (*types.ConfigDocument, error)
	// Create inserts version 1. It fails with ErrAlreadyExists when the key is taken.
	Create(dbc dbctx.Context, key string, value []byte) (*types.ConfigDocument, error)
	// ReplaceIfVersion swaps the value and bumps the version only when the stored
	// version still equals expected.
	ReplaceIfVersion(dbc dbctx.Context, key string, value []byte, expected int) (bool, error)
	ListKeys(dbc dbctx.Context) ([]string, error)
}

type configDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConfigDocumentRepo(db *gorm.DB, baseLog *logger.Logger) ConfigDocumentRepo {
	return &configDocumentRepo{
		db:  db,
		log: baseLog.With("repo", "ConfigDocumentRepo"),
	}
}

func (r *configDocumentRepo) GetByKey(dbc dbctx.Context, key string) (*types.ConfigDocument, error) {
	if key == "" {
		return nil, nil
	}
	var doc types.ConfigDocument
	err := dbc.DB(r.db).Where("key = ?", key).Limit(1).Find(&doc).Error
	if err != nil {
		return nil, err
	}
	if doc.Key == "" {
		return nil, nil
	}
	return &doc, nil
}

func (r *configDocumentRepo) Create(dbc dbctx.Context, key string, value []byte) (*types.ConfigDocument, error) {
	if key == "" {
		return nil, pkgerrors.ErrInvalidArgument
	}
	doc := &types.ConfigDocument{
		Key:     key,
		Value:   datatypes.JSON(value),
		Version: 1,
	}
	if err := dbc.DB(r.db).Create(doc).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.Join(pkgerrors.ErrAlreadyExists, err)
		}
		return nil, err
	}
	return doc, nil
}

func (r *configDocumentRepo) ReplaceIfVersion(dbc dbctx.Context, key string, value []byte, expected int) (bool, error) {
	if key == "" {
		return false, nil
	}
	res := dbc.DB(r.db).
		Model(&types.ConfigDocument{}).
		Where("key = ? AND version = ?", key, expected).
		Updates(map[string]interface{}{
			"value":      datatypes.JSON(value),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *configDocumentRepo) ListKeys(dbc dbctx.Context) ([]string, error) {
	var keys []string
	if err := dbc.DB(r.db).
		Model(&types.ConfigDocument{}).
		Order("key ASC").
		Pluck("key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
