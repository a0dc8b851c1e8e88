package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerRedactsSecretsAndHashesAffiliateIDs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	log.Info("publish", "api_key", "sk-live-123", "affiliate_id", "aff-42", "product", "Blender")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries: want=1 got=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["api_key"] != "[REDACTED]" {
		t.Fatalf("api_key not redacted: %v", fields["api_key"])
	}
	hashed, _ := fields["affiliate_id"].(string)
	if len(hashed) != len("hash:")+12 {
		t.Fatalf("affiliate_id not hashed: %q", hashed)
	}
	if fields["product"] != "Blender" {
		t.Fatalf("product: want=Blender got=%v", fields["product"])
	}
}

func TestWithKeepsContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := FromZap(zap.New(core)).With("module", "AutoScaler")

	log.Warn("scaled")
	log.Debug("dropped below level")

	if logs.Len() != 1 {
		t.Fatalf("entries: want=1 got=%d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["module"]; got != "AutoScaler" {
		t.Fatalf("module: want=AutoScaler got=%v", got)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	if _, err := New("development"); err == nil {
		t.Fatalf("expected error for invalid LOG_LEVEL")
	}
}
