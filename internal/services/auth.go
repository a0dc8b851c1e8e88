package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgerrors "github.com/yungbote/autopilot-backend/internal/pkg/errors"
	"github.com/yungbote/autopilot-backend/internal/platform/ctxutil"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

const (
	ScopeRead  = "autopilot:read"
	ScopeWrite = "autopilot:write"
)

type OperatorClaims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies HS256 operator tokens for the API.
type AuthService interface {
	IssueToken(subject string, scopes []string, ttl time.Duration) (string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	log    *logger.Logger
	secret []byte
	issuer string
	now    func() time.Time
}

func NewAuthService(baseLog *logger.Logger, secret, issuer string) (AuthService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &authService{
		log:    baseLog.With("service", "AuthService"),
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

func (as *authService) IssueToken(subject string, scopes []string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("%w: subject required", pkgerrors.ErrInvalidArgument)
	}
	now := as.now()
	claims := OperatorClaims{
		Scope: strings.Join(scopes, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    as.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secret)
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(as.now),
	}
	if as.issuer != "" {
		opts = append(opts, jwt.WithIssuer(as.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(*jwt.Token) (interface{}, error) {
		return as.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, fmt.Errorf("%w: token expired", pkgerrors.ErrUnauthorized)
		}
		return ctx, fmt.Errorf("%w: %v", pkgerrors.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*OperatorClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return ctx, fmt.Errorf("%w: invalid token", pkgerrors.ErrUnauthorized)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		Subject: claims.Subject,
		Scopes:  strings.Fields(claims.Scope),
	}), nil
}

// HasScope reports whether the caller in ctx was granted scope.
func HasScope(ctx context.Context, scope string) bool {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return false
	}
	for _, s := range rd.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
