package optimization

import (
	"math"
	"testing"
)

func TestCostModelDefaults(t *testing.T) {
	c := DefaultCostModel()
	if math.Abs(c.UnitCost()-0.27) > 1e-9 {
		t.Fatalf("unit cost: want=0.27 got=%v", c.UnitCost())
	}
	if math.Abs(c.CostOfAssets(2)-0.54) > 1e-9 {
		t.Fatalf("cost of 2: want=0.54 got=%v", c.CostOfAssets(2))
	}
	if c.CostOfAssets(0) != 0 || c.CostOfAssets(-3) != 0 {
		t.Fatalf("non-positive counts must cost nothing")
	}
}

func TestROIIsZeroWithoutCost(t *testing.T) {
	c := DefaultCostModel()
	if got := c.ROI(1000, 0); got != 0 {
		t.Fatalf("roi with no assets: want=0 got=%v", got)
	}
	if got := (CostModel{}).ROI(50, 4); got != 0 {
		t.Fatalf("roi with free assets: want=0 got=%v", got)
	}
	if got := c.ROI(100, 1); math.Abs(got-369.370370) > 1e-3 {
		t.Fatalf("roi: want≈369.37 got=%v", got)
	}
}
