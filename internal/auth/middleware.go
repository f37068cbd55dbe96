package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HeaderUserID carries the id of the user authenticated by the upstream
// session provider.
const HeaderUserID = "X-User-ID"

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Middleware resolves the caller from HeaderUserID and stores the Actor in
// the request context.
func Middleware(users UserFinder, log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + HeaderUserID + " header"})
			return
		}

		u, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			log.Error("failed to resolve user", zap.String("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
			return
		}
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), ActorFromUser(u)))
		c.Next()
	}
}

// Require rejects the request unless the actor may perform action regardless
// of store.
func Require(action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := Authorize(ActorFromContext(c.Request.Context()), action, ""); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}
