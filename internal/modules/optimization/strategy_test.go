package optimization

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
)

func newOptimizer(c *fakeCatalog) *StrategyOptimizer {
	return NewStrategyOptimizer(c, c, DefaultConfig(), testLog)
}

func TestAnalyzeProductNeedsTwoRecords(t *testing.T) {
	s := newOptimizer(&fakeCatalog{})
	snap := NewSnapshot(Entity{ID: uuid.New(), Title: "Solo"}, recordsFor(40), 1)
	if rec := s.AnalyzeProduct(snap); rec != nil {
		t.Fatalf("single record: want nil got %+v", rec)
	}
}

func TestAnalyzeProductHighROIScenario(t *testing.T) {
	s := newOptimizer(&fakeCatalog{})
	e := Entity{ID: uuid.New(), Title: "Espresso Machine"}

	// older half 5 x 5, newer half 5 x 15: total 100, trend up
	rising := append(repeat(5, 5), repeat(15, 5)...)
	rec := s.AnalyzeProduct(NewSnapshot(e, recordsFor(rising...), 1))
	if rec == nil {
		t.Fatalf("expected recommendation")
	}
	if math.Abs(rec.Metrics.ROI-369.37) > 0.01 {
		t.Fatalf("roi: want≈369.37 got=%v", rec.Metrics.ROI)
	}
	if rec.Metrics.Trend != TrendUp || rec.Action != ActionScale || rec.Priority != PriorityScale {
		t.Fatalf("rising: trend=%s action=%s priority=%d", rec.Metrics.Trend, rec.Action, rec.Priority)
	}
	if rec.Metrics.Revenue != 100 || rec.Metrics.Conversions != 10 {
		t.Fatalf("totals: revenue=%v conversions=%d", rec.Metrics.Revenue, rec.Metrics.Conversions)
	}

	flat := s.AnalyzeProduct(NewSnapshot(e, recordsFor(repeat(10, 10)...), 1))
	if flat.Metrics.Trend != TrendNeutral || flat.Action != ActionMaintain || flat.Priority != PriorityMaintain {
		t.Fatalf("flat: trend=%s action=%s", flat.Metrics.Trend, flat.Action)
	}
}

func TestAnalyzeProductDecisionTable(t *testing.T) {
	s := newOptimizer(&fakeCatalog{})
	e := Entity{ID: uuid.New(), Title: "Widget"}
	cases := []struct {
		name     string
		revenues []float64
		assets   int
		action   Action
		priority int
	}{
		// cost 2.70; revenue 3.00 -> roi 0.11
		{"kill", repeat(0.3, 10), 10, ActionKill, PriorityKill},
		// cost 2.70; revenue 4.60 falling -> roi 0.70, down
		{"optimize", append(repeat(0.6, 5), repeat(0.32, 5)...), 10, ActionOptimize, PriorityOptimize},
		// roi > 2 but falling -> maintain
		{"maintain falling winner", append(repeat(10, 5), repeat(5, 5)...), 1, ActionMaintain, PriorityMaintain},
		// no assets means roi 0, which the table classifies as kill
		{"zero assets", repeat(0, 6), 0, ActionKill, PriorityKill},
	}
	for _, tc := range cases {
		rec := s.AnalyzeProduct(NewSnapshot(e, recordsFor(tc.revenues...), tc.assets))
		if rec == nil {
			t.Fatalf("%s: expected recommendation", tc.name)
		}
		if rec.Action != tc.action || rec.Priority != tc.priority {
			t.Fatalf("%s: want=%s/%d got=%s/%d (roi=%v trend=%s)", tc.name, tc.action, tc.priority, rec.Action, rec.Priority, rec.Metrics.ROI, rec.Metrics.Trend)
		}
	}
}

func TestAnalyzeProductSortsDefensively(t *testing.T) {
	s := newOptimizer(&fakeCatalog{})
	records := recordsFor(append(repeat(1, 5), repeat(9, 5)...)...)
	// reverse so the input is newest-last and oldest-first is not assumed
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	rec := s.AnalyzeProduct(NewSnapshot(Entity{ID: uuid.New()}, records, 1))
	if rec.Metrics.Trend != TrendUp {
		t.Fatalf("trend: want=up got=%s", rec.Metrics.Trend)
	}
}

func TestKillLowPerformers(t *testing.T) {
	c := &fakeCatalog{}
	loser := c.add("Fidget Spinner", 2, append(repeat(0, 9), 0.01)...)
	fresh := c.add("New Arrival", 5, 0, 0, 0)
	free := c.add("No Videos Yet", 0, repeat(0, 8)...)
	winner := c.add("Standing Desk", 1, repeat(10, 10)...)
	broken := c.add("Broken Feed", 1, repeat(1, 10)...)
	broken.err = errBoom

	res, err := newOptimizer(c).KillLowPerformers(context.Background(), 0.5)
	if err != nil {
		t.Fatalf("KillLowPerformers: %v", err)
	}
	if res.Killed != 1 || len(res.Products) != 1 || res.Products[0] != "Fidget Spinner" {
		t.Fatalf("killed: %+v", res)
	}
	if res.ProductIDs[0] != loser.entity.ID {
		t.Fatalf("killed id: want=%s got=%s", loser.entity.ID, res.ProductIDs[0])
	}
	if res.Skipped != 1 || res.Protected != 1 || res.Failed != 1 || res.Evaluated != 3 {
		t.Fatalf("counters: skipped=%d protected=%d failed=%d evaluated=%d", res.Skipped, res.Protected, res.Failed, res.Evaluated)
	}
	if c.status(loser) != StatusArchived {
		t.Fatalf("loser not archived")
	}
	for _, p := range []*fakeProduct{fresh, free, winner, broken} {
		if c.status(p) != StatusActive {
			t.Fatalf("%s: want ACTIVE got %s", p.entity.Title, c.status(p))
		}
	}
}

func TestKillLowPerformersContinuesAfterArchiveFailure(t *testing.T) {
	c := &fakeCatalog{}
	first := c.add("Loser A", 3, repeat(0, 6)...)
	second := c.add("Loser B", 3, repeat(0, 6)...)
	c.setErr = map[uuid.UUID]error{first.entity.ID: errBoom}

	res, err := newOptimizer(c).KillLowPerformers(context.Background(), 0.5)
	if err != nil {
		t.Fatalf("KillLowPerformers: %v", err)
	}
	if res.Killed != 1 || res.Failed != 1 {
		t.Fatalf("want killed=1 failed=1, got %+v", res)
	}
	if c.status(second) != StatusArchived {
		t.Fatalf("second loser should still be archived")
	}
}

func TestKillLowPerformersPropagatesListFailure(t *testing.T) {
	c := &fakeCatalog{listErr: errBoom}
	if _, err := newOptimizer(c).KillLowPerformers(context.Background(), 0.5); err == nil {
		t.Fatalf("expected list failure to propagate")
	}
}

func TestRankAllProducts(t *testing.T) {
	c := &fakeCatalog{}
	c.add("Maintain", 1, repeat(10, 10)...)
	c.add("Kill", 10, repeat(0.1, 10)...)
	c.add("Scale", 1, append(repeat(5, 5), repeat(15, 5)...)...)
	c.add("Too New", 1, 5)

	recs, err := newOptimizer(c).RankAllProducts(context.Background())
	if err != nil {
		t.Fatalf("RankAllProducts: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len: want=3 got=%d", len(recs))
	}
	want := []string{"Kill", "Scale", "Maintain"}
	for i, title := range want {
		if recs[i].ProductTitle != title {
			t.Fatalf("rank %d: want=%s got=%s", i, title, recs[i].ProductTitle)
		}
	}
}

func TestAnalyzeProductByIDNotFound(t *testing.T) {
	s := newOptimizer(&fakeCatalog{})
	if _, err := s.AnalyzeProductByID(context.Background(), uuid.New()); !IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}
