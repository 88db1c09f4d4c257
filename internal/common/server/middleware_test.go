package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/motormarket/motormarket/internal/common/auth"
	"github.com/motormarket/motormarket/internal/common/config"
)

func newAuthedEngine(authCfg config.AuthConfig, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/", JWTAuth(authCfg, nil))
	if len(roles) > 0 {
		grp.Use(RequireRoles(roles...))
	}
	grp.GET("/ping", func(c *gin.Context) {
		ai, ok := AuthFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no auth info"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"subject": ai.Subject})
	})
	return r
}

func TestJWTAuthAndRequireRoles(t *testing.T) {
	authCfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "motormarket",
		Audience:  "motormarket",
	}

	adminToken, _, err := auth.GenerateAccessToken(authCfg, "u-1", []string{"buyer", "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	r := newAuthedEngine(authCfg, "admin")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with admin token, got %d body=%s", w.Code, w.Body.String())
	}

	// buyer-only token must be rejected by the role gate
	buyerToken, _, err := auth.GenerateAccessToken(authCfg, "u-2", []string{"buyer"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req2.Header.Set("Authorization", "Bearer "+buyerToken)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)
	if w2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without admin role, got %d", w2.Code)
	}
}

func TestJWTAuthRejectsMissingAndGarbageTokens(t *testing.T) {
	authCfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "motormarket",
	}
	r := newAuthedEngine(authCfg)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req2.Header.Set("Authorization", "Bearer not-a-jwt")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)
	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", w2.Code)
	}
}

func TestJWTAuthDisabledPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", JWTAuth(config.AuthConfig{Enabled: false}, nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with auth disabled, got %d", w.Code)
	}
}
