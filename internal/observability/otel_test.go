package observability

import "testing"

func TestParseHeadersSkipsMalformedPairs(t *testing.T) {
	got := parseHeaders("x-api-key=abc, broken ,=nokey, tenant = t1")
	if len(got) != 2 || got["x-api-key"] != "abc" || got["tenant"] != "t1" {
		t.Fatalf("headers: got=%v", got)
	}
	if parseHeaders("  ") != nil {
		t.Fatalf("empty headers should be nil")
	}
}

func TestClampRatio(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0.25: 0.25, 3: 1} {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): want=%v got=%v", in, want, got)
		}
	}
}
