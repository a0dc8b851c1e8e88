package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/autopilot-backend/internal/data/repos/catalog"
	"github.com/yungbote/autopilot-backend/internal/data/repos/experiments"
	"github.com/yungbote/autopilot-backend/internal/data/repos/jobs"
	"github.com/yungbote/autopilot-backend/internal/data/repos/settings"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type ProductRepo = catalog.ProductRepo
type ProductAnalyticsRepo = catalog.ProductAnalyticsRepo
type ProductVideoRepo = catalog.ProductVideoRepo

type ConfigDocumentRepo = settings.ConfigDocumentRepo

type ABTestEventRepo = experiments.ABTestEventRepo

type JobRunRepo = jobs.JobRunRepo

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}
func NewProductAnalyticsRepo(db *gorm.DB, baseLog *logger.Logger) ProductAnalyticsRepo {
	return catalog.NewProductAnalyticsRepo(db, baseLog)
}
func NewProductVideoRepo(db *gorm.DB, baseLog *logger.Logger) ProductVideoRepo {
	return catalog.NewProductVideoRepo(db, baseLog)
}

func NewConfigDocumentRepo(db *gorm.DB, baseLog *logger.Logger) ConfigDocumentRepo {
	return settings.NewConfigDocumentRepo(db, baseLog)
}

func NewABTestEventRepo(db *gorm.DB, baseLog *logger.Logger) ABTestEventRepo {
	return experiments.NewABTestEventRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}
