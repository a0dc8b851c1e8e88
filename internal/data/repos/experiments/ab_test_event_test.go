package experiments

import (
	"context"
	"testing"

	"github.com/yungbote/autopilot-backend/internal/data/repos/testutil"
	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
)

func TestABTestEventRepoCountsByTest(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Of(context.Background())
	repo := NewABTestEventRepo(db, testutil.Logger(t))

	var events []*types.ABTestEvent
	add := func(testID, variant, event string, n int) {
		for i := 0; i < n; i++ {
			events = append(events, &types.ABTestEvent{TestID: testID, Variant: variant, Event: event})
		}
	}
	add("test_a", "A", types.EventExposure, 10)
	add("test_a", "A", types.EventClick, 3)
	add("test_a", "B", types.EventExposure, 8)
	add("test_a", "B", types.EventConversion, 2)
	add("test_other", "A", types.EventClick, 7)

	if _, err := repo.Create(dbc, events); err != nil {
		t.Fatalf("Create: %v", err)
	}

	counts, err := repo.CountsByTest(dbc, "test_a")
	if err != nil {
		t.Fatalf("CountsByTest: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("variants: want=2 got=%d", len(counts))
	}
	a, b := counts[0], counts[1]
	if a.Variant != "A" || a.Exposures != 10 || a.Clicks != 3 {
		t.Fatalf("variant A: %+v", a)
	}
	if b.Variant != "B" || b.Exposures != 8 || b.Conversions != 2 || b.Clicks != 0 {
		t.Fatalf("variant B: %+v", b)
	}

	empty, err := repo.CountsByTest(dbc, "test_missing")
	if err != nil || len(empty) != 0 {
		t.Fatalf("missing test: counts=%v err=%v", empty, err)
	}
}
