package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.Prefix())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.Prefix())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.Use(func(c *gin.Context) {
		c.Header("X-API", "1")
		c.Next()
	})

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-API"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test/ping", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDomainGroup_MiddlewareScope(t *testing.T) {
	engine := gin.New()
	blocked := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusForbidden)
	}
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	open := NewDomainGroup("open", "/items")
	open.GET("", ok)
	locked := NewDomainGroup("locked", "/items").Use(blocked)
	locked.POST("", ok)
	nested := locked.Group("nested", "/archive")
	nested.GET("", ok)

	r := NewRouter(engine)
	r.Register(open).Register(locked).Setup()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/items", http.StatusOK},
		{http.MethodPost, "/api/v1/items", http.StatusForbidden},
		{http.MethodGet, "/api/v1/items/archive", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRouter_Routes(t *testing.T) {
	g := NewDomainGroup("catalog", "/catalog")
	g.GET("/products", func(*gin.Context) {})
	g.Group("admin", "/admin").DELETE("/:id", func(*gin.Context) {})

	r := NewRouter(gin.New()).Register(g)
	assert.Equal(t, []RouteInfo{
		{Group: "admin", Method: http.MethodDelete, Path: "/api/v1/catalog/admin/:id"},
		{Group: "catalog", Method: http.MethodGet, Path: "/api/v1/catalog/products"},
	}, r.Routes())
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "/api/v1", joinPath("/api/v1", ""))
	assert.Equal(t, "/api/v1/cart", joinPath("/api/v1", "/cart"))
	assert.Equal(t, "/api/v1/cart/", joinPath("/api/v1", "/cart/"))
}

type fixedResolver struct {
	role identity.Role
}

func (f fixedResolver) Resolve(_ context.Context, userID uuid.UUID) (*identity.Session, error) {
	return &identity.Session{UserID: userID, Status: identity.UserStatusActive, Role: f.role}, nil
}

type storefront struct {
	engine *gin.Engine
	jwt    *auth.JWTService
	router *Router
}

func newStorefront(t *testing.T, role identity.Role) *storefront {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-key-32-chars!",
		RefreshSecret:          "router-test-refresh-secret-32ch!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "storefront-test",
		MaxRefreshCount:        3,
	})
	resolver := fixedResolver{role: role}

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	adminCfg := jwtCfg
	adminCfg.QueryTokenPaths = []string{FeedPath}

	guards := Guards{
		Owner:   []gin.HandlerFunc{middleware.OptionalJWTAuthMiddleware(jwtCfg), middleware.GuestOwner(middleware.DefaultGuestConfig())},
		Member:  []gin.HandlerFunc{middleware.JWTAuthMiddlewareWithConfig(jwtCfg), middleware.RequireSession(resolver)},
		Admin:   []gin.HandlerFunc{middleware.JWTAuthMiddlewareWithConfig(adminCfg), middleware.AdminOnly(resolver)},
		Payload: middleware.PayloadLimit(256),
	}
	handlers := Handlers{
		System:    handler.NewSystemHandler("storefront", "test", nil),
		Product:   handler.NewProductHandler(nil),
		Auth:      handler.NewAuthHandler(nil, nil, "guest_id"),
		Cart:      handler.NewCartHandler(nil),
		Favorites: handler.NewFavoritesHandler(nil, "guest_id"),
		Address:   handler.NewAddressHandler(nil),
		Order:     handler.NewOrderHandler(nil, nil),
		User:      handler.NewUserHandler(nil),
		Dashboard: handler.NewDashboardHandler(nil),
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := RegisterStorefront(NewRouter(engine), handlers, guards)
	r.Setup()
	return &storefront{engine: engine, jwt: jwtService, router: r}
}

func (s *storefront) token(t *testing.T) string {
	t.Helper()
	pair, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Email: "sam@shop.io"})
	require.NoError(t, err)
	return pair.AccessToken
}

func (s *storefront) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestStorefront_RouteTable(t *testing.T) {
	s := newStorefront(t, identity.RoleCustomer)

	registered := make(map[string]bool)
	for _, route := range s.router.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"GET /api/v1/health",
		"GET /api/v1/catalog/products/slug/:slug",
		"POST /api/v1/auth/login",
		"PUT /api/v1/cart/items/:key",
		"POST /api/v1/favorites/local/:product_id/toggle",
		"POST /api/v1/favorites/sync",
		"GET /api/v1/favorites/:product_id",
		"POST /api/v1/favorites/local/:product_id",
		"DELETE /api/v1/favorites/local",
		"POST /api/v1/checkout",
		"POST /api/v1/orders/:id/cancel",
		"PATCH /api/v1/admin/products/:id/stock",
		"GET /api/v1/admin/orders/feed",
		"PATCH /api/v1/admin/users/:id/role",
		"GET /api/v1/admin/dashboard",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
	assert.True(t, registered["GET "+FeedPath])
}

func TestStorefront_Access(t *testing.T) {
	customer := newStorefront(t, identity.RoleCustomer)
	admin := newStorefront(t, identity.RoleAdmin)

	t.Run("health is public", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, customer.do(http.MethodGet, "/api/v1/health", "").Code)
	})

	t.Run("catalog is public", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, customer.do(http.MethodGet, "/api/v1/catalog/products/not-a-uuid", "").Code)
	})

	t.Run("member routes need a token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, customer.do(http.MethodGet, "/api/v1/auth/me", "").Code)
		assert.Equal(t, http.StatusUnauthorized, customer.do(http.MethodPost, "/api/v1/checkout", "").Code)
	})

	t.Run("guests get an id on cart routes", func(t *testing.T) {
		w := customer.do(http.MethodDelete, "/api/v1/cart/items/bad-key", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.GuestIDHeader))
	})

	t.Run("customers are kept out of admin", func(t *testing.T) {
		w := customer.do(http.MethodGet, "/api/v1/admin/dashboard", customer.token(t))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admins pass", func(t *testing.T) {
		w := admin.do(http.MethodGet, "/api/v1/admin/products/not-a-uuid", admin.token(t))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("feed accepts a query token", func(t *testing.T) {
		w := admin.do(http.MethodGet, FeedPath+"?token="+admin.token(t), "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		w = admin.do(http.MethodGet, "/api/v1/admin/dashboard?token="+admin.token(t), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestStorefront_PayloadCap(t *testing.T) {
	s := newStorefront(t, identity.RoleCustomer)
	token := s.token(t)

	post := func(method, path string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(strings.Repeat("x", 1024)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusRequestEntityTooLarge, post(http.MethodPost, "/api/v1/cart/items"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, post(http.MethodPut, "/api/v1/cart/items/abc"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, post(http.MethodPost, "/api/v1/checkout"))
	// Profile writes are outside the cart and checkout cap
	assert.Equal(t, http.StatusBadRequest, post(http.MethodPut, "/api/v1/profile"))
}
