package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// GuestIDHeader identifies an anonymous client's cart and local favorites
const GuestIDHeader = "X-Guest-ID"

const ownerKey = "owner_key"

// GuestConfig controls the guest id cookie issued to anonymous clients
type GuestConfig struct {
	CookieName string
	Domain     string
	Path       string
	Secure     bool
	SameSite   string // strict, lax or none
	MaxAge     time.Duration
}

// DefaultGuestConfig returns the guest cookie defaults
func DefaultGuestConfig() GuestConfig {
	return GuestConfig{
		CookieName: "guest_id",
		Path:       "/",
		SameSite:   "lax",
		MaxAge:     30 * 24 * time.Hour,
	}
}

// GuestOwner resolves the owner of the cart and local favorites: the signed-in
// user when optional auth found one, otherwise the X-Guest-ID header, then the
// guest cookie. Anonymous clients without either are issued a new guest id.
// It must run after OptionalJWTAuthMiddleware.
func GuestOwner(cfg GuestConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultGuestConfig().CookieName
	}
	sameSite := parseSameSite(cfg.SameSite)

	return func(c *gin.Context) {
		if userID, ok := GetUserUUID(c); ok {
			c.Set(ownerKey, shared.UserOwner(userID))
			c.Next()
			return
		}

		guestID := c.GetHeader(GuestIDHeader)
		if guestID == "" {
			guestID, _ = c.Cookie(cfg.CookieName)
		}
		owner := shared.GuestOwnerFor(guestID)
		if owner == shared.GuestOwner {
			guestID = uuid.NewString()
			owner = shared.GuestOwnerFor(guestID)
			c.SetSameSite(sameSite)
			c.SetCookie(cfg.CookieName, guestID, int(cfg.MaxAge.Seconds()), cfg.Path, cfg.Domain, cfg.Secure, true)
		}
		c.Header(GuestIDHeader, guestID)

		c.Set(ownerKey, owner)
		c.Request = c.Request.WithContext(logger.WithGuestID(c.Request.Context(), guestID))
		c.Next()
	}
}

// GetOwner returns the owner resolved by GuestOwner
func GetOwner(c *gin.Context) shared.OwnerKey {
	if v, ok := c.Get(ownerKey); ok {
		if owner, ok := v.(shared.OwnerKey); ok {
			return owner
		}
	}
	if userID, ok := GetUserUUID(c); ok {
		return shared.UserOwner(userID)
	}
	return shared.GuestOwnerFor(c.GetHeader(GuestIDHeader))
}

// GuestIDOf returns the anonymous id a request carries, if any. Login and
// register use it to adopt the guest cart.
func GuestIDOf(c *gin.Context, cookieName string) string {
	if id := c.GetHeader(GuestIDHeader); id != "" {
		return id
	}
	id, _ := c.Cookie(cookieName)
	return id
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
