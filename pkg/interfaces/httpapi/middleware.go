package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/application/services"
	"github.com/vsinha/baleyard/pkg/domain/entities"
)

const (
	// HeaderRole carries the client-selected role. The console is trusted.
	HeaderRole = "X-Role"
	// HeaderOperator carries the acting operator id
	HeaderOperator = "X-Operator"

	actorKey = "baleyard_actor"
)

// Actor is who a request acts as
type Actor struct {
	Role       entities.Role
	OperatorID string
}

// actorMiddleware resolves the actor from the request headers, falling back
// to the store session for whichever header is absent
func (s *Server) actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.store.Session()
		actor := Actor{Role: session.CurrentRole, OperatorID: session.OperatorID}

		if role := c.GetHeader(HeaderRole); role != "" {
			actor.Role = entities.Role(role)
			if !actor.Role.Valid() {
				c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
					Error: fmt.Sprintf("unknown role %q", role),
					Code:  "invalid_role",
				})
				return
			}
		}
		if op := c.GetHeader(HeaderOperator); op != "" {
			actor.OperatorID = op
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// actorFrom returns the actor stored by actorMiddleware
func actorFrom(c *gin.Context) Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(Actor); ok {
			return a
		}
	}
	return Actor{}
}

// require rejects the request unless the actor's role holds perm
func (s *Server) require(perm entities.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := services.Authorize(actorFrom(c).Role, perm); err != nil {
			s.abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if op := c.GetHeader(HeaderOperator); op != "" {
			fields = append(fields, zap.String("operator_id", op))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("http request", fields...)
			return
		}
		logger.Debug("http request", fields...)
	}
}
