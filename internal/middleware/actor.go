package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The upstream identity layer authenticates the caller, enforces the campus
// email domain, and forwards the verified identity in these headers. The
// engine trusts them without re-verifying.
const (
	actorIDHeader    = "X-User-ID"
	actorEmailHeader = "X-User-Email"

	actorContextKey = "actor"
)

// Actor is the verified identity of the caller.
type Actor struct {
	ID    string
	Email string
}

// WithActor populates the request context with the caller's identity when
// the identity headers are present. Handlers that require an actor use
// RequireActor.
func WithActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(actorIDHeader); id != "" {
			c.Set(actorContextKey, Actor{ID: id, Email: c.GetHeader(actorEmailHeader)})
		}
		c.Next()
	}
}

// ActorFrom returns the caller's identity, if any.
func ActorFrom(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}

// RequireActor returns the caller's identity or writes a 401 and reports
// false.
func RequireActor(c *gin.Context) (Actor, bool) {
	actor, ok := ActorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return Actor{}, false
	}
	return actor, true
}
