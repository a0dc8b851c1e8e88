package experiments

import (
	"sort"

	"gorm.io/gorm"

	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type ABTestEventRepo interface {
	Create(dbc dbctx.Context, events []*types.ABTestEvent) ([]*types.ABTestEvent, error)
	// CountsByTest aggregates events per variant, ordered by variant name.
	CountsByTest(dbc dbctx.Context, testID string) ([]types.VariantCounts, error)
}

type abTestEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewABTestEventRepo(db *gorm.DB, baseLog *logger.Logger) ABTestEventRepo {
	return &abTestEventRepo{
		db:  db,
		log: baseLog.With("repo", "ABTestEventRepo"),
	}
}

func (r *abTestEventRepo) Create(dbc dbctx.Context, events []*types.ABTestEvent) ([]*types.ABTestEvent, error) {
	if len(events) == 0 {
		return []*types.ABTestEvent{}, nil
	}
	if err := dbc.DB(r.db).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

type eventCountRow struct {
	Variant string
	Event   string
	N       int64
}

func (r *abTestEventRepo) CountsByTest(dbc dbctx.Context, testID string) ([]types.VariantCounts, error) {
	if testID == "" {
		return []types.VariantCounts{}, nil
	}
	var rows []eventCountRow
	if err := dbc.DB(r.db).
		Model(&types.ABTestEvent{}).
		Select("variant, event, COUNT(*) AS n").
		Where("test_id = ?", testID).
		Group("variant, event").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	byVariant := map[string]*types.VariantCounts{}
	for _, row := range rows {
		vc := byVariant[row.Variant]
		if vc == nil {
			vc = &types.VariantCounts{Variant: row.Variant}
			byVariant[row.Variant] = vc
		}
		switch row.Event {
		case types.EventExposure:
			vc.Exposures += row.N
		case types.EventClick:
			vc.Clicks += row.N
		case types.EventConversion:
			vc.Conversions += row.N
		case types.EventView:
			vc.Views += row.N
		}
	}

	out := make([]types.VariantCounts, 0, len(byVariant))
	for _, vc := range byVariant {
		out = append(out, *vc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Variant < out[j].Variant })
	return out, nil
}
