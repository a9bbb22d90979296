package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/RangerDjanger/BetterDay/pkg/config"
	"github.com/RangerDjanger/BetterDay/pkg/logger"
	"github.com/RangerDjanger/BetterDay/pkg/security/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var log = logger.NewLogger()

const (
	bearerSchema = "Bearer "
	userIDKey    = "user_id"
)

// NewAuthMiddleware resolves the caller's opaque user id. The front door
// client principal header is preferred when enabled; otherwise a Bearer JWT
// is required.
func NewAuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AllowClientPrincipal {
			if header := c.GetHeader(auth.ClientPrincipalHeader); header != "" {
				principal, err := auth.ParseClientPrincipal(header)
				if err != nil {
					log.Warn("Client principal rejected", zap.Error(err))
					abortUnauthorized(c, "invalid client principal")
					return
				}
				c.Set(userIDKey, principal.UserID)
				c.Set("identity_provider", principal.IdentityProvider)
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := auth.ValidateToken(authHeader[len(bearerSchema):], cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			log.Warn("Token validation failed", zap.Error(err))
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// RateLimitMiddleware counts requests per authenticated user. It must run
// after NewAuthMiddleware. Limiter failures let the request through.
func RateLimitMiddleware(limiter auth.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}
		key := fmt.Sprintf("%s:%s", userID, c.FullPath())

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Error("Rate limiter error", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":    "rate limit exceeded",
				"reset_in": time.Until(decision.ResetAt).Round(time.Second).String(),
			})
			return
		}

		c.Next()
	}
}

// GetUserID retrieves the authenticated user's ID from the context
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
