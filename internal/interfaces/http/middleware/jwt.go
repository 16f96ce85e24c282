package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/comanda/backend/internal/infrastructure/auth"
	"github.com/comanda/backend/internal/infrastructure/logger"
	"github.com/comanda/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Session context keys
const (
	SessionKey        = "session"
	SessionSubjectKey = "session_subject"
	AuthHeaderKey     = "Authorization"
	BearerPrefix      = "Bearer "
)

// TokenVerifier validates a bearer token and returns the caller's session
type TokenVerifier interface {
	Verify(token string) (*auth.Session, error)
}

// SessionAuthConfig holds configuration for the session middleware
type SessionAuthConfig struct {
	// Verifier is required for token validation
	Verifier TokenVerifier
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// DefaultSessionAuthConfig returns the default session middleware configuration
func DefaultSessionAuthConfig(verifier TokenVerifier) SessionAuthConfig {
	return SessionAuthConfig{
		Verifier: verifier,
		SkipPaths: []string{
			"/health",
			"/api/v1/system/ping",
		},
		SkipPathPrefixes: []string{
			"/swagger",
		},
	}
}

// SessionAuth creates session authentication middleware with the default config
func SessionAuth(verifier TokenVerifier) gin.HandlerFunc {
	return SessionAuthWithConfig(DefaultSessionAuthConfig(verifier))
}

// SessionAuthWithConfig requires a valid bearer token on every path not skipped
func SessionAuthWithConfig(cfg SessionAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipAuth(cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, errMissingCredentials, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		session, err := cfg.Verifier.Verify(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		c.Set(SessionKey, session)
		c.Set(SessionSubjectKey, session.Subject)

		// the request logger and access log pick the subject up from the request context
		ctx := logger.WithSubject(c.Request.Context(), session.Subject)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Session authenticated",
				zap.String("subject", session.Subject),
				zap.String("role", session.Role),
			)
		}

		c.Next()
	}
}

var errMissingCredentials = errors.New("missing credentials")

func skipAuth(cfg SessionAuthConfig, path string) bool {
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// handleAuthError handles authentication errors
func handleAuthError(c *gin.Context, cfg SessionAuthConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		c.Abort()
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("Session authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, msg = dto.ErrCodeTokenNotValid, "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingSubject):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}

// GetSession returns the session set by SessionAuth, or nil on skipped paths
func GetSession(c *gin.Context) *auth.Session {
	if v, exists := c.Get(SessionKey); exists {
		if s, ok := v.(*auth.Session); ok {
			return s
		}
	}
	return nil
}

// GetSessionSubject returns the authenticated subject, or ""
func GetSessionSubject(c *gin.Context) string {
	return c.GetString(SessionSubjectKey)
}
