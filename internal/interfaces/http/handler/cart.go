package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CartService manages guest and user carts
type CartService interface {
	Get(ctx context.Context, owner shared.OwnerKey) (*cartapp.CartResponse, error)
	AddItem(ctx context.Context, owner shared.OwnerKey, req cartapp.AddItemRequest) (*cartapp.MutationResponse, error)
	UpdateItem(ctx context.Context, owner shared.OwnerKey, key cart.VariantKey, qty int) (*cartapp.MutationResponse, error)
	RemoveItem(ctx context.Context, owner shared.OwnerKey, key cart.VariantKey) (*cartapp.CartResponse, error)
	Clear(ctx context.Context, owner shared.OwnerKey) error
	Refresh(ctx context.Context, owner shared.OwnerKey) (*cartapp.MutationResponse, error)
}

// CartHandler handles cart endpoints. The owner is resolved by the
// GuestOwner middleware.
type CartHandler struct {
	BaseHandler
	cartService CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get godoc
// @Summary      Get cart
// @Description  Return the cart of the caller's owner key
// @Tags         cart
// @Produce      json
// @Param        X-Guest-ID header string false "Guest id"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	resp, err := h.cartService.Get(c.Request.Context(), middleware.GetOwner(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem godoc
// @Summary      Add to cart
// @Description  Add a product variant. Same-variant lines merge; quantities are clamped to stock.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Guest-ID header string false "Guest id"
// @Param        request body cartapp.AddItemRequest true "Item"
// @Success      200 {object} dto.Response{data=cartapp.MutationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cartapp.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.cartService.AddItem(c.Request.Context(), middleware.GetOwner(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateItem godoc
// @Summary      Update cart line quantity
// @Description  A quantity of zero or less removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Guest-ID header string false "Guest id"
// @Param        key path string true "Variant key"
// @Param        request body cartapp.UpdateItemRequest true "Quantity"
// @Success      200 {object} dto.Response{data=cartapp.MutationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items/{key} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	key, ok := h.variantKey(c)
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.cartService.UpdateItem(c.Request.Context(), middleware.GetOwner(c), key, *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem godoc
// @Summary      Remove cart line
// @Tags         cart
// @Produce      json
// @Param        X-Guest-ID header string false "Guest id"
// @Param        key path string true "Variant key"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items/{key} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	key, ok := h.variantKey(c)
	if !ok {
		return
	}

	resp, err := h.cartService.RemoveItem(c.Request.Context(), middleware.GetOwner(c), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Clear godoc
// @Summary      Clear cart
// @Tags         cart
// @Param        X-Guest-ID header string false "Guest id"
// @Success      204
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), middleware.GetOwner(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Refresh godoc
// @Summary      Refresh cart
// @Description  Re-read live price and stock for every line
// @Tags         cart
// @Produce      json
// @Param        X-Guest-ID header string false "Guest id"
// @Success      200 {object} dto.Response{data=cartapp.MutationResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/refresh [post]
func (h *CartHandler) Refresh(c *gin.Context) {
	resp, err := h.cartService.Refresh(c.Request.Context(), middleware.GetOwner(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// variantKey parses and normalizes the :key path parameter
func (h *CartHandler) variantKey(c *gin.Context) (cart.VariantKey, bool) {
	productID, size, color, err := cart.ParseVariantKey(c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return "", false
	}
	return cart.NewVariantKey(productID, size, color), true
}

var _ CartService = (*cartapp.Service)(nil)
