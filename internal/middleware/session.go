package middleware

import (
	"net/http"
	"strings"

	"github.com/docquiz/docquiz-backend/internal/response"
	"github.com/docquiz/docquiz-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextKeySessionID is the Gin context key for the authenticated
	// session id.
	ContextKeySessionID = "session_id"
)

// RequireSessionToken validates the exam session token and checks that it
// grants access to the session named in the path. The token comes from the
// Authorization header, or from ?token= for WebSocket upgrades which cannot
// send headers from the browser.
func RequireSessionToken(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		tokenSessionID, err := sessions.ParseSessionToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		pathID, err := uuid.Parse(c.Param("session_id"))
		if err != nil {
			response.AbortFail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}

		if tokenSessionID != pathID {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}

		c.Set(ContextKeySessionID, pathID)
		c.Next()
	}
}

// GetSessionID retrieves the authenticated session id from the Gin context.
func GetSessionID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(ContextKeySessionID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	// WebSocket upgrades pass the token as a query param
	return c.Query("token")
}
