package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/farhanadi/ticketbook/internal/cache"
)

func CacheMiddleware(eventCache *cache.EventCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("event_cache", eventCache)
		c.Next()
	}
}

// GetEventCache returns nil when no cache is wired, which callers treat as
// a permanent miss.
func GetEventCache(c *gin.Context) *cache.EventCache {
	eventCache, exists := c.Get("event_cache")
	if !exists {
		return nil
	}
	return eventCache.(*cache.EventCache)
}
