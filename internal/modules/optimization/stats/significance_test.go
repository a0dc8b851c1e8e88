package stats

import (
	"math"
	"testing"
)

func TestTwoProportionNoData(t *testing.T) {
	if got := TwoProportion(0, 0, 5, 10); got != 0.5 {
		t.Fatalf("missing A: want=0.5 got=%v", got)
	}
	if got := TwoProportion(5, 10, 0, 0); got != 0.5 {
		t.Fatalf("missing B: want=0.5 got=%v", got)
	}
}

func TestTwoProportionDirection(t *testing.T) {
	better := TwoProportion(120, 1000, 80, 1000)
	if better <= 0.99 {
		t.Fatalf("A clearly better: want > 0.99 got=%v", better)
	}
	worse := TwoProportion(80, 1000, 120, 1000)
	if math.Abs(better+worse-1) > 1e-9 {
		t.Fatalf("symmetry: %v + %v != 1", better, worse)
	}
	if got := TwoProportion(50, 500, 50, 500); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("equal rates: want=0.5 got=%v", got)
	}
}

func TestTwoProportionDegenerateVariance(t *testing.T) {
	if got := TwoProportion(0, 100, 0, 100); got != 0.5 {
		t.Fatalf("all zero: want=0.5 got=%v", got)
	}
	if got := TwoProportion(100, 100, 100, 100); got != 0.5 {
		t.Fatalf("all success: want=0.5 got=%v", got)
	}
}

func TestPoissonRate(t *testing.T) {
	if got := PoissonRate(0, 0); got != 0.5 {
		t.Fatalf("no data: want=0.5 got=%v", got)
	}
	if got := PoissonRate(400, 300); got <= 0.99 {
		t.Fatalf("A views higher: want > 0.99 got=%v", got)
	}
	if got := PoissonRate(10, 11); got >= 0.5 {
		t.Fatalf("B slightly higher: want < 0.5 got=%v", got)
	}
}

func TestNormalCDF(t *testing.T) {
	cases := []struct {
		x, want float64
	}{
		{0, 0.5},
		{1.96, 0.9750},
		{-1.96, 0.0250},
		{3, 0.99865},
	}
	for _, tc := range cases {
		if got := NormalCDF(tc.x); math.Abs(got-tc.want) > 1e-4 {
			t.Fatalf("NormalCDF(%v): want=%v got=%v", tc.x, tc.want, got)
		}
	}
}

func TestWilsonInterval(t *testing.T) {
	lo, hi := WilsonInterval(0, 0)
	if lo != 0 || hi != 0 {
		t.Fatalf("no trials: got [%v, %v]", lo, hi)
	}
	lo, hi = WilsonInterval(50, 100)
	if lo >= 0.5 || hi <= 0.5 || lo < 0.39 || hi > 0.61 {
		t.Fatalf("50/100: got [%v, %v]", lo, hi)
	}
	lo, _ = WilsonInterval(0, 20)
	if lo != 0 {
		t.Fatalf("zero successes lower bound: got %v", lo)
	}
}
