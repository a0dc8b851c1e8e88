package optimization

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func newScaler(c *fakeCatalog, store *memConfigStore) *AutoScaler {
	return NewAutoScaler(c, c, store, DefaultConfig(), testLog)
}

func TestMultiplierForIsBoundedStepFunction(t *testing.T) {
	cases := map[float64]float64{
		-1: 1.0, 0: 1.0, 2.0: 1.0, 2.01: 1.3, 3.0: 1.3, 3.5: 1.5, 5.0: 1.5, 5.01: 2.0, 400: 2.0,
	}
	for roi, want := range cases {
		if got := MultiplierFor(roi); got != want {
			t.Fatalf("MultiplierFor(%v): want=%v got=%v", roi, want, got)
		}
	}
	prev := 0.0
	for roi := -2.0; roi < 20; roi += 0.05 {
		m := MultiplierFor(roi)
		if m < prev || m > 2.0 {
			t.Fatalf("multiplier %v at roi=%v (prev %v) breaks the monotone [1,2] bound", m, roi, prev)
		}
		prev = m
	}
}

func TestScaleWinnersPreservesUnrelatedKeys(t *testing.T) {
	c := &fakeCatalog{}
	star := c.add("Robot Vacuum", 1, repeat(10, 10)...)
	mid := c.add("Yoga Mat", 10, repeat(0.9, 10)...) // roi ≈ 2.33 -> 1.3
	c.add("Dud", 10, repeat(0.1, 10)...)
	c.add("Too New", 1, 100, 100)

	store := newMemConfigStore()
	store.put(KeySystemConfig, `{"existingField":{"nested":[1,2,3]},"products":{"`+star.entity.ID.String()+`":{"videosPerWeek":10,"owner":"ops"}}}`)

	res, err := newScaler(c, store).ScaleWinners(context.Background(), 2.0)
	if err != nil {
		t.Fatalf("ScaleWinners: %v", err)
	}
	if res.Scaled != 2 || len(res.Products) != 2 {
		t.Fatalf("scaled: want=2 got=%d (%d products)", res.Scaled, len(res.Products))
	}
	if res.Skipped != 1 || res.Evaluated != 3 {
		t.Fatalf("skipped/evaluated: want=1/3 got=%d/%d", res.Skipped, res.Evaluated)
	}
	if store.replaces != 1 {
		t.Fatalf("all entities should be written in one replace, got %d", store.replaces)
	}

	body := store.body(KeySystemConfig)
	wantExisting := map[string]interface{}{"nested": []interface{}{1.0, 2.0, 3.0}}
	if !reflect.DeepEqual(body["existingField"], wantExisting) {
		t.Fatalf("existingField: want=%v got=%v", wantExisting, body["existingField"])
	}

	products := body["products"].(map[string]interface{})
	starEntry := products[star.entity.ID.String()].(map[string]interface{})
	if starEntry["videosPerWeek"] != 14.0 {
		t.Fatalf("10 x 2.0 is capped at 14, got %v", starEntry["videosPerWeek"])
	}
	if starEntry["multiplier"] != 2.0 || starEntry["priority"] != "high" || starEntry["autoScale"] != true {
		t.Fatalf("star entry: got %v", starEntry)
	}
	if starEntry["owner"] != "ops" {
		t.Fatalf("owner should be preserved, got %v", starEntry["owner"])
	}

	midEntry := products[mid.entity.ID.String()].(map[string]interface{})
	if midEntry["multiplier"] != 1.3 {
		t.Fatalf("mid multiplier: want=1.3 got=%v", midEntry["multiplier"])
	}
	if vpw := midEntry["videosPerWeek"].(float64); vpw < 9.1-1e-9 || vpw > 9.1+1e-9 {
		t.Fatalf("new entries start from the default of 7: want=9.1 got=%v", vpw)
	}
}

func TestScaleWinnersCreatesMissingDocument(t *testing.T) {
	c := &fakeCatalog{}
	c.add("Air Fryer", 1, repeat(10, 10)...)
	store := newMemConfigStore()

	res, err := newScaler(c, store).ScaleWinners(context.Background(), 2.0)
	if err != nil {
		t.Fatalf("ScaleWinners: %v", err)
	}
	if res.Scaled != 1 || store.creates != 1 {
		t.Fatalf("scaled/creates: want=1/1 got=%d/%d", res.Scaled, store.creates)
	}
	if store.body(KeySystemConfig)["products"] == nil {
		t.Fatalf("products missing from created document")
	}
}

func TestScaleWinnersNoCandidatesDoesNotWrite(t *testing.T) {
	c := &fakeCatalog{}
	c.add("Dud", 10, repeat(0.1, 10)...)
	store := newMemConfigStore()

	res, err := newScaler(c, store).ScaleWinners(context.Background(), 2.0)
	if err != nil {
		t.Fatalf("ScaleWinners: %v", err)
	}
	if res.Scaled != 0 || store.creates != 0 || store.replaces != 0 {
		t.Fatalf("want no writes, got scaled=%d creates=%d replaces=%d", res.Scaled, store.creates, store.replaces)
	}
}

func TestScaleWinnersRetriesOnVersionConflict(t *testing.T) {
	c := &fakeCatalog{}
	c.add("Robot Vacuum", 1, repeat(10, 10)...)
	store := newMemConfigStore()
	store.put(KeySystemConfig, `{}`)
	store.conflicts = 2

	if _, err := newScaler(c, store).ScaleWinners(context.Background(), 2.0); err != nil {
		t.Fatalf("ScaleWinners after 2 conflicts: %v", err)
	}
	if store.replaces != 1 {
		t.Fatalf("replaces: want=1 got=%d", store.replaces)
	}

	store.conflicts = 10
	_, err := newScaler(c, store).ScaleWinners(context.Background(), 2.0)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("persistent conflict: want ErrVersionConflict got %v", err)
	}
}

func TestScaleWinnersRepeatedCallsStayUnderCap(t *testing.T) {
	c := &fakeCatalog{}
	p := c.add("Robot Vacuum", 1, repeat(10, 10)...)
	s := newScaler(c, newMemConfigStore())

	for i := 0; i < 5; i++ {
		if _, err := s.ScaleWinners(context.Background(), 2.0); err != nil {
			t.Fatalf("ScaleWinners #%d: %v", i, err)
		}
	}
	cfg, err := s.ScalingConfig(context.Background())
	if err != nil {
		t.Fatalf("ScalingConfig: %v", err)
	}
	if got := cfg[p.entity.ID.String()].VideosPerWeek; got > 14 {
		t.Fatalf("videosPerWeek exceeded cap: %v", got)
	}
}

func TestScaleWinnersPropagatesStoreFailure(t *testing.T) {
	c := &fakeCatalog{}
	c.add("Robot Vacuum", 1, repeat(10, 10)...)
	store := newMemConfigStore()
	store.failGet = errBoom

	if _, err := newScaler(c, store).ScaleWinners(context.Background(), 2.0); !errors.Is(err, errBoom) {
		t.Fatalf("want errBoom got %v", err)
	}
}

func TestGetRecommendationsIsReadOnly(t *testing.T) {
	c := &fakeCatalog{}
	c.add("Mid", 10, repeat(0.9, 10)...)
	c.add("Star", 3, repeat(10, 10)...)
	c.add("Dud", 10, repeat(0.1, 10)...)
	store := newMemConfigStore()

	recs, err := newScaler(c, store).GetRecommendations(context.Background())
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("recs: want=2 got=%d", len(recs))
	}
	if recs[0].ProductTitle != "Star" || recs[0].RecommendedVideos != 6 || recs[0].CurrentVideos != 3 {
		t.Fatalf("first rec: got %+v", recs[0])
	}
	if recs[1].ProductTitle != "Mid" || recs[1].RecommendedVideos != 13 || recs[1].Action != ActionScale {
		t.Fatalf("second rec: got %+v", recs[1])
	}
	if store.body(KeySystemConfig) != nil {
		t.Fatalf("recommendations must not write the scaling document")
	}
}
