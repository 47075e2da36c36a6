package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	addressapp "github.com/storefront/backend/internal/application/address"
)

// AddressService manages the caller's address book
type AddressService interface {
	List(ctx context.Context, userID uuid.UUID) ([]addressapp.AddressResponse, error)
	Create(ctx context.Context, userID uuid.UUID, req addressapp.AddressRequest) (*addressapp.AddressResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, req addressapp.AddressRequest) (*addressapp.AddressResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetDefault(ctx context.Context, userID, id uuid.UUID) (*addressapp.AddressResponse, error)
}

// AddressHandler handles address book endpoints
type AddressHandler struct {
	BaseHandler
	addressService AddressService
}

// NewAddressHandler creates a new AddressHandler
func NewAddressHandler(addressService AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// List godoc
// @Summary      List addresses
// @Description  List the caller's saved shipping addresses, default first
// @Tags         addresses
// @Produce      json
// @Success      200 {object} dto.Response{data=[]addressapp.AddressResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /addresses [get]
func (h *AddressHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	addresses, err := h.addressService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addresses)
}

// Create godoc
// @Summary      Create an address
// @Description  The first address becomes the default
// @Tags         addresses
// @Accept       json
// @Produce      json
// @Param        request body addressapp.AddressRequest true "Address"
// @Success      201 {object} dto.Response{data=addressapp.AddressResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /addresses [post]
func (h *AddressHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req addressapp.AddressRequest
	if !h.bindJSON(c, &req) {
		return
	}

	addr, err := h.addressService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, addr)
}

// Update godoc
// @Summary      Update an address
// @Tags         addresses
// @Accept       json
// @Produce      json
// @Param        id path string true "Address ID" format(uuid)
// @Param        request body addressapp.AddressRequest true "Address"
// @Success      200 {object} dto.Response{data=addressapp.AddressResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /addresses/{id} [put]
func (h *AddressHandler) Update(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "address")
	if !ok {
		return
	}
	var req addressapp.AddressRequest
	if !h.bindJSON(c, &req) {
		return
	}

	addr, err := h.addressService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addr)
}

// Delete godoc
// @Summary      Delete an address
// @Description  Deleting the default promotes the most recent remaining address
// @Tags         addresses
// @Param        id path string true "Address ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /addresses/{id} [delete]
func (h *AddressHandler) Delete(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "address")
	if !ok {
		return
	}

	if err := h.addressService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetDefault godoc
// @Summary      Set the default address
// @Tags         addresses
// @Produce      json
// @Param        id path string true "Address ID" format(uuid)
// @Success      200 {object} dto.Response{data=addressapp.AddressResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /addresses/{id}/default [post]
func (h *AddressHandler) SetDefault(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "address")
	if !ok {
		return
	}

	addr, err := h.addressService.SetDefault(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addr)
}

var _ AddressService = (*addressapp.Service)(nil)
