package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/autopilot-backend/internal/platform/logger"
	"github.com/yungbote/autopilot-backend/internal/services"
)

func TestRequireAuthScopes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	as, err := services.NewAuthService(logger.NewNop(), "s3cret", "")
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	reader, _ := as.IssueToken("viewer", []string{services.ScopeRead}, time.Hour)
	writer, _ := as.IssueToken("operator", []string{services.ScopeRead, services.ScopeWrite}, time.Hour)

	r := gin.New()
	r.Use(NewAuthMiddleware(logger.NewNop(), as).RequireAuth())
	r.GET("/api/ab-tests", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/optimization/kill", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/api/ab-tests", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/ab-tests", reader, http.StatusOK},
		{http.MethodPost, "/api/optimization/kill", reader, http.StatusForbidden},
		{http.MethodPost, "/api/optimization/kill", writer, http.StatusOK},
		{http.MethodPost, "/api/optimization/kill", "garbage", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s %s: want=%d got=%d", tc.method, tc.path, tc.want, rec.Code)
		}
	}
}
