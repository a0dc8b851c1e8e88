package services

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/yungbote/autopilot-backend/internal/pkg/errors"
	"github.com/yungbote/autopilot-backend/internal/platform/ctxutil"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	as, err := NewAuthService(logger.NewNop(), "s3cret", "autopilot")
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	tok, err := as.IssueToken("ops@acme", []string{ScopeRead, ScopeWrite}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	ctx, err := as.SetContextFromToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if rd := ctxutil.GetRequestData(ctx); rd == nil || rd.Subject != "ops@acme" {
		t.Fatalf("request data: %+v", rd)
	}
	if !HasScope(ctx, ScopeWrite) {
		t.Fatalf("write scope missing")
	}
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	as, _ := NewAuthService(logger.NewNop(), "s3cret", "autopilot")
	other, _ := NewAuthService(logger.NewNop(), "different", "autopilot")

	expired, _ := as.IssueToken("ops", nil, -time.Minute)
	forged, _ := other.IssueToken("ops", []string{ScopeWrite}, time.Hour)

	for name, tok := range map[string]string{"expired": expired, "forged": forged, "garbage": "not.a.jwt"} {
		if _, err := as.SetContextFromToken(context.Background(), tok); !errors.Is(err, pkgerrors.ErrUnauthorized) {
			t.Fatalf("%s: want ErrUnauthorized got %v", name, err)
		}
	}
	if _, err := NewAuthService(logger.NewNop(), " ", ""); err == nil {
		t.Fatalf("empty secret should be rejected")
	}
}
