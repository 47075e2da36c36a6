package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guestRouter(t *testing.T, got *shared.OwnerKey) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(OptionalJWTAuthMiddleware(DefaultJWTConfig(newTestJWTService())), GuestOwner(DefaultGuestConfig()))
	router.GET("/cart", func(c *gin.Context) {
		*got = GetOwner(c)
		c.Status(http.StatusOK)
	})
	return router
}

func TestGuestOwner(t *testing.T) {
	var owner shared.OwnerKey
	router := guestRouter(t, &owner)

	t.Run("signed-in user", func(t *testing.T) {
		pair, input := newTestTokenPair(t, newTestJWTService())
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
		req.Header.Set(GuestIDHeader, "ignored")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, shared.UserOwner(input.UserID), owner)
		assert.Empty(t, w.Header().Get("Set-Cookie"))
	})

	t.Run("guest header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set(GuestIDHeader, "g-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, shared.OwnerKey("guest:g-123"), owner)
		assert.Equal(t, "g-123", w.Header().Get(GuestIDHeader))
		assert.Empty(t, w.Header().Get("Set-Cookie"))
	})

	t.Run("guest cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.AddCookie(&http.Cookie{Name: "guest_id", Value: "from-cookie"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, shared.OwnerKey("guest:from-cookie"), owner)
	})

	t.Run("new anonymous client gets an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

		issued := w.Header().Get(GuestIDHeader)
		require.NotEmpty(t, issued)
		assert.Equal(t, shared.GuestOwnerFor(issued), owner)
		cookie := w.Header().Get("Set-Cookie")
		assert.True(t, strings.HasPrefix(cookie, "guest_id="+issued))
		assert.Contains(t, cookie, "HttpOnly")
		assert.Contains(t, cookie, "SameSite=Lax")
	})

	t.Run("unusable header is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set(GuestIDHeader, "bad:id")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEqual(t, shared.GuestOwner, owner)
		assert.NotEqual(t, "bad:id", w.Header().Get(GuestIDHeader))
	})
}

func TestGetOwner_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, shared.GuestOwner, GetOwner(c))

	c.Request.Header.Set(GuestIDHeader, "abc")
	assert.Equal(t, shared.OwnerKey("guest:abc"), GetOwner(c))
}

func TestGuestIDOf(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GuestIDOf(c, "guest_id"))

	c.Request.AddCookie(&http.Cookie{Name: "guest_id", Value: "cookie-id"})
	assert.Equal(t, "cookie-id", GuestIDOf(c, "guest_id"))

	c.Request.Header.Set(GuestIDHeader, "header-id")
	assert.Equal(t, "header-id", GuestIDOf(c, "guest_id"))
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite("Strict"))
	assert.Equal(t, http.SameSiteNoneMode, parseSameSite("none"))
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite(""))
}
