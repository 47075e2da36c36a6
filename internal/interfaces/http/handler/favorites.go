package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	favoritesapp "github.com/storefront/backend/internal/application/favorites"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// FavoritesService manages local (guest) and account favorites
type FavoritesService interface {
	ListLocal(ctx context.Context, owner shared.OwnerKey) ([]favoritesapp.FavoriteResponse, error)
	AddLocal(ctx context.Context, owner shared.OwnerKey, productID uuid.UUID) (*favoritesapp.ToggleResponse, error)
	ToggleLocal(ctx context.Context, owner shared.OwnerKey, productID uuid.UUID) (*favoritesapp.ToggleResponse, error)
	ContainsLocal(ctx context.Context, owner shared.OwnerKey, productID uuid.UUID) (bool, error)
	RemoveLocal(ctx context.Context, owner shared.OwnerKey, productID uuid.UUID) error
	ClearLocal(ctx context.Context, owner shared.OwnerKey) error
	List(ctx context.Context, userID uuid.UUID) ([]favoritesapp.FavoriteResponse, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Sync(ctx context.Context, userID uuid.UUID, localOwner shared.OwnerKey) (*favoritesapp.SyncResponse, error)
}

// FavoritesHandler handles local and account favorites
type FavoritesHandler struct {
	BaseHandler
	favoritesService FavoritesService
	guestCookieName  string
}

// NewFavoritesHandler creates a new FavoritesHandler
func NewFavoritesHandler(favoritesService FavoritesService, guestCookieName string) *FavoritesHandler {
	return &FavoritesHandler{favoritesService: favoritesService, guestCookieName: guestCookieName}
}

// ListLocal godoc
// @Summary      List local favorites
// @Description  List the favorites kept for the caller's owner key (signed-in user or guest id)
// @Tags         favorites
// @Produce      json
// @Param        X-Guest-ID header string false "Guest id"
// @Success      200 {object} dto.Response{data=[]favoritesapp.FavoriteResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /favorites/local [get]
func (h *FavoritesHandler) ListLocal(c *gin.Context) {
	items, err := h.favoritesService.ListLocal(c.Request.Context(), middleware.GetOwner(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// AddLocal godoc
// @Summary      Add a local favorite
// @Description  Add a product to the caller's local favorites. Adding twice is a no-op.
// @Tags         favorites
// @Produce      json
// @Param        X-Guest-ID header string false "Guest id"
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=favoritesapp.ToggleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /favorites/local/{product_id} [post]
func (h *FavoritesHandler) AddLocal(c *gin.Context) {
	productID, ok := h.uuidParam(c, "product_id", "product")
	if !ok {
		return
	}

	resp, err := h.favoritesService.AddLocal(c.Request.Context(), middleware.GetOwner(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ToggleLocal godoc
// @Summary      Toggle a local favorite
// @Description  Add the product to the caller's local favorites, or remove it when present
// @Tags         favorites
// @Produce      json
// @Param        X-Guest-ID header string false "Guest id"
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=favoritesapp.ToggleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /favorites/local/{product_id}/toggle [post]
func (h *FavoritesHandler) ToggleLocal(c *gin.Context) {
	productID, ok := h.uuidParam(c, "product_id", "product")
	if !ok {
		return
	}

	resp, err := h.favoritesService.ToggleLocal(c.Request.Context(), middleware.GetOwner(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ContainsLocal godoc
// @Summary      Check a local favorite
// @Tags         favorites
// @Produce      json
// @Param        X-Guest-ID header string false "Guest id"
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=favoritesapp.StateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /favorites/local/{product_id} [get]
func (h *FavoritesHandler) ContainsLocal(c *gin.Context) {
	productID, ok := h.uuidParam(c, "product_id", "product")
	if !ok {
		return
	}

	in, err := h.favoritesService.ContainsLocal(c.Request.Context(), middleware.GetOwner(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, favoritesapp.StateResponse{ProductID: productID, IsFavorite: in})
}

// RemoveLocal godoc
// @Summary      Remove a local favorite
// @Tags         favorites
// @Param        X-Guest-ID header string false "Guest id"
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /favorites/local/{product_id} [delete]
func (h *FavoritesHandler) RemoveLocal(c *gin.Context) {
	productID, ok := h.uuidParam(c, "product_id", "product")
	if !ok {
		return
	}

	if err := h.favoritesService.RemoveLocal(c.Request.Context(), middleware.GetOwner(c), productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ClearLocal godoc
// @Summary      Clear local favorites
// @Tags         favorites
// @Param        X-Guest-ID header string false "Guest id"
// @Success      204
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /favorites/local [delete]
func (h *FavoritesHandler) ClearLocal(c *gin.Context) {
	if err := h.favoritesService.ClearLocal(c.Request.Context(), middleware.GetOwner(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// List godoc
// @Summary      List account favorites
// @Description  List the caller's favorites joined with current product data
// @Tags         favorites
// @Produce      json
// @Success      200 {object} dto.Response{data=[]favoritesapp.FavoriteResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /favorites [get]
func (h *FavoritesHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	items, err := h.favoritesService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// IsFavorite godoc
// @Summary      Check an account favorite
// @Tags         favorites
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=favoritesapp.StateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /favorites/{product_id} [get]
func (h *FavoritesHandler) IsFavorite(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "product_id", "product")
	if !ok {
		return
	}

	is, err := h.favoritesService.IsFavorite(c.Request.Context(), userID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, favoritesapp.StateResponse{ProductID: productID, IsFavorite: is})
}

// Add godoc
// @Summary      Add an account favorite
// @Description  Favorite a product for the caller. Adding twice is a no-op.
// @Tags         favorites
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=favoritesapp.StateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /favorites/{product_id} [post]
func (h *FavoritesHandler) Add(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "product_id", "product")
	if !ok {
		return
	}

	if err := h.favoritesService.Add(c.Request.Context(), userID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, favoritesapp.StateResponse{ProductID: productID, IsFavorite: true})
}

// Remove godoc
// @Summary      Remove an account favorite
// @Tags         favorites
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /favorites/{product_id} [delete]
func (h *FavoritesHandler) Remove(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "product_id", "product")
	if !ok {
		return
	}

	if err := h.favoritesService.Remove(c.Request.Context(), userID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Sync godoc
// @Summary      Sync local favorites into the account
// @Description  Fold the caller's guest list into the account favorites and clear the guest list
// @Tags         favorites
// @Produce      json
// @Param        X-Guest-ID header string false "Guest id"
// @Success      200 {object} dto.Response{data=favoritesapp.SyncResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /favorites/sync [post]
func (h *FavoritesHandler) Sync(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	local := shared.GuestOwnerFor(middleware.GuestIDOf(c, h.guestCookieName))
	if local == shared.GuestOwner {
		// nothing identifies a local list; report the account as is
		items, err := h.favoritesService.List(c.Request.Context(), userID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, favoritesapp.SyncResponse{Total: len(items)})
		return
	}

	resp, err := h.favoritesService.Sync(c.Request.Context(), userID, local)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

var _ FavoritesService = (*favoritesapp.Service)(nil)
