package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comanda/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg config.SwaggerConfig, auth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, auth), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return router
}

func serveSwagger(router *gin.Engine, remoteAddr string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection_Disabled(t *testing.T) {
	w := serveSwagger(swaggerRouter(config.SwaggerConfig{}, nil), "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestSwaggerProtection_EnabledNoRestrictions(t *testing.T) {
	w := serveSwagger(swaggerRouter(config.SwaggerConfig{Enabled: true}, nil), "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "docs", w.Body.String())
}

func TestSwaggerProtection_AllowedIPs(t *testing.T) {
	cfg := config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.5", "192.168.1.0/24", "not-an-ip"}}
	router := swaggerRouter(cfg, nil)

	tests := []struct {
		addr string
		want int
	}{
		{"10.0.0.5:4000", http.StatusOK},
		{"192.168.1.77:4000", http.StatusOK},
		{"10.0.0.6:4000", http.StatusForbidden},
		{"172.16.0.1:4000", http.StatusForbidden},
	}
	for _, tt := range tests {
		w := serveSwagger(router, tt.addr, nil)
		assert.Equal(t, tt.want, w.Code, tt.addr)
	}
}

func TestSwaggerProtection_RequireAuth(t *testing.T) {
	cfg := config.SwaggerConfig{Enabled: true, RequireAuth: true}

	authCfg := DefaultSessionAuthConfig(newTestVerifier())
	authCfg.SkipPathPrefixes = nil
	router := swaggerRouter(cfg, SessionAuthWithConfig(authCfg))

	t.Run("rejects anonymous callers", func(t *testing.T) {
		w := serveSwagger(router, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("serves authenticated callers", func(t *testing.T) {
		h := http.Header{}
		h.Set(AuthHeaderKey, BearerPrefix+signToken(t, validClaims()))
		w := serveSwagger(router, "", h)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestIsIPAllowed(t *testing.T) {
	assert.False(t, isIPAllowed(nil, nil, nil))
}
