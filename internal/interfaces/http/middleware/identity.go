package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/infrastructure/logger"
	"github.com/hotelops/backend/internal/interfaces/http/dto"
)

// UserIDHeader carries the acting user of a request. Authentication happens
// upstream; this service only attributes changes.
const UserIDHeader = "X-User-ID"

// UserIDKey is the gin context key holding the parsed caller uuid.UUID
const UserIDKey = "user_id"

// Identity parses the X-User-ID header when present. A malformed value is
// rejected with 401 instead of being silently ignored.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			c.Next()
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			abortUnauthorized(c, "X-User-ID must be a valid UUID")
			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), userID.String()))
		c.Next()
	}
}

// RequireUser rejects requests that carry no caller identity.
// Use it on every mutating route, after Identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			abortUnauthorized(c, "X-User-ID header is required")
			return
		}
		c.Next()
	}
}

// GetUserID returns the caller set by Identity
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	requestID := logger.GetRequestID(c.Request.Context())
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, requestID))
}
