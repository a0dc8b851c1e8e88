package envutil

import (
	"testing"
	"time"
)

func TestDurationAcceptsSecondsAndGoSyntax(t *testing.T) {
	t.Setenv("CYCLE_INTERVAL", "90")
	if got := Duration("CYCLE_INTERVAL", time.Hour); got != 90*time.Second {
		t.Fatalf("seconds: want=90s got=%s", got)
	}
	t.Setenv("CYCLE_INTERVAL", "6h")
	if got := Duration("CYCLE_INTERVAL", time.Hour); got != 6*time.Hour {
		t.Fatalf("go syntax: want=6h got=%s", got)
	}
	t.Setenv("CYCLE_INTERVAL", "soon")
	if got := Duration("CYCLE_INTERVAL", time.Hour); got != time.Hour {
		t.Fatalf("fallback: want=1h got=%s", got)
	}
}

func TestBoolAndFloatFallbacks(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "off")
	if Bool("METRICS_ENABLED", true) {
		t.Fatalf("expected false for off")
	}
	t.Setenv("METRICS_ENABLED", "maybe")
	if !Bool("METRICS_ENABLED", true) {
		t.Fatalf("expected default for unparseable value")
	}
	t.Setenv("KILL_THRESHOLD", "0.75")
	if got := Float("KILL_THRESHOLD", 0.5); got != 0.75 {
		t.Fatalf("float: want=0.75 got=%v", got)
	}
	if got := Int("UNSET_INT_FOR_TEST", 4); got != 4 {
		t.Fatalf("int default: want=4 got=%d", got)
	}
}

func TestListDropsBlanks(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	got := List("CORS_ORIGINS", nil)
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("list: got=%v", got)
	}
	t.Setenv("CORS_ORIGINS", " , ")
	if got := List("CORS_ORIGINS", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("fallback: got=%v", got)
	}
}
