package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CacheMiddleware caches successful GET responses per user and resource.
// Writes to the same resource clear that user's entries.
type CacheMiddleware struct {
	cache *cache.RedisClient
	ttl   time.Duration
}

func NewCacheMiddleware(cache *cache.RedisClient, ttl time.Duration) *CacheMiddleware {
	return &CacheMiddleware{cache: cache, ttl: ttl}
}

// responseBuffer is a custom ResponseWriter that stores the response
type responseBuffer struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func newResponseBuffer(original gin.ResponseWriter) *responseBuffer {
	return &responseBuffer{
		ResponseWriter: original,
		body:           bytes.NewBufferString(""),
	}
}

func (r *responseBuffer) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseBuffer) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// CacheResponse serves a cached body for resource when one exists.
func (m *CacheMiddleware) CacheResponse(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if m == nil || m.cache == nil || !ok || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := responseKey(userID, resource, c.Request.URL.RawQuery)
		if cached, err := m.cache.Get(c.Request.Context(), key); err == nil {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			c.Abort()
			return
		}

		writer := c.Writer
		buff := newResponseBuffer(writer)
		c.Writer = buff

		c.Next()

		c.Writer = writer
		if buff.Status() == http.StatusOK && buff.body.Len() > 0 {
			if err := m.cache.Set(c.Request.Context(), key, buff.body.String(), m.ttl); err != nil {
				log.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
			}
		}
	}
}

// CacheInvalidate drops the caller's cached responses for the resources
// after a successful write.
func (m *CacheMiddleware) CacheInvalidate(resources ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		userID, ok := GetUserID(c)
		if m == nil || m.cache == nil || !ok {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		for _, resource := range resources {
			pattern := cache.GenerateCacheKey("response", userID, resource) + "*"
			if err := m.cache.ClearByPattern(c.Request.Context(), pattern); err != nil {
				log.Warn("Failed to invalidate cache", zap.String("pattern", pattern), zap.Error(err))
			}
		}
	}
}

func responseKey(userID, resource, rawQuery string) string {
	if rawQuery == "" {
		return cache.GenerateCacheKey("response", userID, resource)
	}
	return cache.GenerateCacheKey("response", userID, resource, rawQuery)
}
