package domain

import (
	"github.com/yungbote/autopilot-backend/internal/domain/catalog"
	"github.com/yungbote/autopilot-backend/internal/domain/experiments"
	"github.com/yungbote/autopilot-backend/internal/domain/jobs"
	"github.com/yungbote/autopilot-backend/internal/domain/settings"
)

const (
	ProductStatusActive   = catalog.ProductStatusActive
	ProductStatusArchived = catalog.ProductStatusArchived

	EventExposure   = experiments.EventExposure
	EventClick      = experiments.EventClick
	EventConversion = experiments.EventConversion
	EventView       = experiments.EventView

	JobStatusQueued    = jobs.StatusQueued
	JobStatusRunning   = jobs.StatusRunning
	JobStatusSucceeded = jobs.StatusSucceeded
	JobStatusFailed    = jobs.StatusFailed

	JobTypeOptimizationCycle = jobs.TypeOptimizationCycle
	JobTypeABTestsAnalyze    = jobs.TypeABTestsAnalyze
	JobTypePromptsOptimize   = jobs.TypePromptsOptimize

	JobTriggerManual    = jobs.TriggerManual
	JobTriggerScheduled = jobs.TriggerScheduled
)

type (
	Product          = catalog.Product
	ProductAnalytics = catalog.ProductAnalytics
	ProductVideo     = catalog.ProductVideo

	ConfigDocument = settings.ConfigDocument

	ABTestEvent   = experiments.ABTestEvent
	VariantCounts = experiments.VariantCounts

	JobRun = jobs.JobRun
)

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		&Product{},
		&ProductAnalytics{},
		&ProductVideo{},
		&ConfigDocument{},
		&ABTestEvent{},
		&JobRun{},
	}
}
