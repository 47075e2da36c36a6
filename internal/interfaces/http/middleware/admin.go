package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// SessionKey holds the resolved *identity.Session
const SessionKey = "session"

// SessionResolver resolves the session of an authenticated user
type SessionResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*identity.Session, error)
}

// RequireSession resolves the caller's session and rejects disabled
// accounts. Must run after JWT authentication.
func RequireSession(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := loadSession(c, resolver); !ok {
			return
		}
		c.Next()
	}
}

// AdminOnly rejects callers whose session role is not admin with 403
func AdminOnly(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := loadSession(c, resolver)
		if !ok {
			return
		}
		if !session.IsAdmin() {
			abort(c, http.StatusForbidden, dto.ErrCodeForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// GetSession returns the session resolved by RequireSession or AdminOnly
func GetSession(c *gin.Context) *identity.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*identity.Session); ok {
			return s
		}
	}
	return nil
}

func loadSession(c *gin.Context, resolver SessionResolver) (*identity.Session, bool) {
	if s := GetSession(c); s != nil {
		return s, checkActive(c, s)
	}

	userID, ok := GetUserUUID(c)
	if !ok {
		abort(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return nil, false
	}

	session, err := resolver.Resolve(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			abort(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Account no longer exists")
			return nil, false
		}
		logger.GetGinLogger(c).Error("Failed to resolve session",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		abort(c, http.StatusServiceUnavailable, "SESSION_UNAVAILABLE", "Unable to load session, try again")
		return nil, false
	}

	c.Set(SessionKey, session)
	return session, checkActive(c, session)
}

func checkActive(c *gin.Context, s *identity.Session) bool {
	if s.Status == identity.UserStatusDisabled {
		abort(c, http.StatusForbidden, dto.ErrCodeAccountDisabled, "Account is disabled")
		return false
	}
	return true
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(logger.GinRequestIDKey)))
}
