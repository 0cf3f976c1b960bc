package server

import (
	"strings"

	obscontext "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/context"
	"github.com/gin-gonic/gin"
)

const (
	HeaderActorType = "X-Actor-Type"
	HeaderActorID   = "X-Actor-Id"
)

var knownActorTypes = map[string]struct{}{
	"user":      {},
	"guest":     {},
	"sales_rep": {},
	"system":    {},
}

// ActorContext resolves the caller from upstream headers. Authentication is
// handled in front of this service; unknown types fall back to guest.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorType := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderActorType)))
		actorID := strings.TrimSpace(c.GetHeader(HeaderActorID))
		if _, ok := knownActorTypes[actorType]; !ok {
			actorType = "guest"
		}

		ctx := obscontext.WithActor(c.Request.Context(), actorType, actorID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) PublicRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if token := strings.TrimSpace(c.Param("token")); token != "" {
			key = key + ":" + token
		}
		if !s.publicLimiter.Allow(c.Request.Context(), key) {
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
