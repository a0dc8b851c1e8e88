package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/autopilot-backend/internal/data/repos"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type Repos struct {
	Products  repos.ProductRepo
	Analytics repos.ProductAnalyticsRepo
	Videos    repos.ProductVideoRepo
	Configs   repos.ConfigDocumentRepo
	Events    repos.ABTestEventRepo
	Jobs      repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Products:  repos.NewProductRepo(db, log),
		Analytics: repos.NewProductAnalyticsRepo(db, log),
		Videos:    repos.NewProductVideoRepo(db, log),
		Configs:   repos.NewConfigDocumentRepo(db, log),
		Events:    repos.NewABTestEventRepo(db, log),
		Jobs:      repos.NewJobRunRepo(db, log),
	}
}
