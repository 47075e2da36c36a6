package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
)

// FeedPath is the admin order feed route. Browsers cannot set headers on a
// websocket handshake, so it also accepts the access token as ?token=.
const FeedPath = "/api/v1/admin/orders/feed"

// Handlers are the HTTP handlers mounted under the API prefix
type Handlers struct {
	System    *handler.SystemHandler
	Product   *handler.ProductHandler
	Auth      *handler.AuthHandler
	Cart      *handler.CartHandler
	Favorites *handler.FavoritesHandler
	Address   *handler.AddressHandler
	Order     *handler.OrderHandler
	User      *handler.UserHandler
	Dashboard *handler.DashboardHandler
}

// Guards are the middleware chains for each audience
type Guards struct {
	// Owner resolves the cart owner: the signed-in user or a guest id
	Owner []gin.HandlerFunc
	// Member requires an authenticated, active account
	Member []gin.HandlerFunc
	// Admin requires an admin session
	Admin []gin.HandlerFunc
	// AuthLimit throttles credential endpoints. Optional.
	AuthLimit gin.HandlerFunc
	// Payload caps JSON bodies on cart and checkout writes. Optional.
	Payload gin.HandlerFunc
}

// StorefrontGroups builds the route groups of the storefront API
func StorefrontGroups(h Handlers, g Guards) []*DomainGroup {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/products", h.Product.List)
	catalog.GET("/products/slug/:slug", h.Product.GetBySlug)
	catalog.GET("/products/:id", h.Product.GetByID)
	catalog.GET("/featured", h.Product.Featured)
	catalog.GET("/categories", h.Product.Categories)
	catalog.GET("/brands", h.Product.Brands)

	authPublic := NewDomainGroup("auth", "/auth")
	if g.AuthLimit != nil {
		authPublic.Use(g.AuthLimit)
	}
	authPublic.POST("/register", h.Auth.Register)
	authPublic.POST("/login", h.Auth.Login)
	authPublic.POST("/refresh", h.Auth.Refresh)

	cart := NewDomainGroup("cart", "/cart").Use(g.Owner...)
	if g.Payload != nil {
		cart.Use(g.Payload)
	}
	cart.GET("", h.Cart.Get)
	cart.DELETE("", h.Cart.Clear)
	cart.POST("/items", h.Cart.AddItem)
	cart.PUT("/items/:key", h.Cart.UpdateItem)
	cart.DELETE("/items/:key", h.Cart.RemoveItem)
	cart.POST("/refresh", h.Cart.Refresh)

	localFavorites := NewDomainGroup("favorites-local", "/favorites/local").Use(g.Owner...)
	localFavorites.GET("", h.Favorites.ListLocal)
	localFavorites.DELETE("", h.Favorites.ClearLocal)
	localFavorites.GET("/:product_id", h.Favorites.ContainsLocal)
	localFavorites.POST("/:product_id", h.Favorites.AddLocal)
	localFavorites.POST("/:product_id/toggle", h.Favorites.ToggleLocal)
	localFavorites.DELETE("/:product_id", h.Favorites.RemoveLocal)

	member := NewDomainGroup("member", "").Use(g.Member...)
	member.POST("/auth/logout", h.Auth.Logout)
	member.GET("/auth/me", h.Auth.Me)
	member.PUT("/auth/password", h.Auth.ChangePassword)

	member.GET("/profile", h.Auth.GetProfile)
	member.PUT("/profile", h.Auth.UpdateProfile)
	member.POST("/profile/avatar/upload-url", h.Auth.AvatarUploadURL)

	member.GET("/addresses", h.Address.List)
	member.POST("/addresses", h.Address.Create)
	member.PUT("/addresses/:id", h.Address.Update)
	member.DELETE("/addresses/:id", h.Address.Delete)
	member.POST("/addresses/:id/default", h.Address.SetDefault)

	member.GET("/favorites", h.Favorites.List)
	member.POST("/favorites/sync", h.Favorites.Sync)
	member.GET("/favorites/:product_id", h.Favorites.IsFavorite)
	member.POST("/favorites/:product_id", h.Favorites.Add)
	member.DELETE("/favorites/:product_id", h.Favorites.Remove)

	member.POST("/checkout", withPayload(g, h.Order.Checkout)...)
	member.GET("/orders", h.Order.ListMy)
	member.GET("/orders/:id", h.Order.GetMy)
	member.POST("/orders/:id/cancel", h.Order.CancelMy)

	admin := NewDomainGroup("admin", "/admin").Use(g.Admin...)
	admin.GET("/dashboard", h.Dashboard.Stats)

	products := admin.Group("admin-products", "/products")
	products.GET("", h.Product.AdminList)
	products.POST("", h.Product.Create)
	products.GET("/:id", h.Product.AdminGet)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)
	products.PATCH("/:id/featured", h.Product.SetFeatured)
	products.PATCH("/:id/active", h.Product.SetActive)
	products.PATCH("/:id/stock", h.Product.SetStock)
	products.POST("/:id/images/upload-url", h.Product.ImageUploadURL)
	products.POST("/:id/images", h.Product.AttachImage)
	products.DELETE("/:id/images", h.Product.RemoveImage)

	orders := admin.Group("admin-orders", "/orders")
	orders.GET("", h.Order.AdminList)
	orders.GET("/feed", h.Order.Feed)
	orders.GET("/:id", h.Order.AdminGet)
	orders.PATCH("/:id/status", h.Order.UpdateStatus)

	users := admin.Group("admin-users", "/users")
	users.GET("", h.User.List)
	users.PATCH("/:id/role", h.User.SetRole)
	users.PATCH("/:id/status", h.User.SetStatus)

	return []*DomainGroup{system, catalog, authPublic, cart, localFavorites, member, admin}
}

// RegisterStorefront registers every storefront group with r
func RegisterStorefront(r *Router, h Handlers, g Guards) *Router {
	for _, group := range StorefrontGroups(h, g) {
		r.Register(group)
	}
	return r
}

func withPayload(g Guards, h gin.HandlerFunc) []gin.HandlerFunc {
	if g.Payload == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{g.Payload, h}
}
