package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// OrderService places and manages orders
type OrderService interface {
	Checkout(ctx context.Context, userID uuid.UUID, req orderapp.CheckoutRequest) (*orderapp.OrderResponse, error)
	ListMy(ctx context.Context, userID uuid.UUID, f orderapp.ListFilter) (*orderapp.ListResult, error)
	GetMy(ctx context.Context, userID, id uuid.UUID) (*orderapp.OrderResponse, error)
	CancelMy(ctx context.Context, userID, id uuid.UUID) (*orderapp.OrderResponse, error)
	List(ctx context.Context, f orderapp.ListFilter) (*orderapp.ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req orderapp.UpdateStatusRequest) (*orderapp.OrderResponse, error)
}

// OrderFeed streams order events to a websocket client until it disconnects
type OrderFeed interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

// OrderHandler handles checkout, order history and order administration
type OrderHandler struct {
	BaseHandler
	orderService OrderService
	feed         OrderFeed
}

// NewOrderHandler creates a new OrderHandler. feed may be nil, in which case
// the admin feed answers 503.
func NewOrderHandler(orderService OrderService, feed OrderFeed) *OrderHandler {
	return &OrderHandler{orderService: orderService, feed: feed}
}

// Checkout godoc
// @Summary      Checkout
// @Description  Turn the caller's cart into a pending order. Stock is reserved in one transaction.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.CheckoutRequest true "Checkout"
// @Success      201 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req orderapp.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Checkout(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// ListMy godoc
// @Summary      List my orders
// @Tags         orders
// @Produce      json
// @Param        status query string false "Order status" Enums(pending, processing, shipped, delivered, cancelled)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListMy(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var filter orderapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.orderService.ListMy(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, result.Orders, result.Total, page, pageSize)
}

// GetMy godoc
// @Summary      Get my order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetMy(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetMy(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// CancelMy godoc
// @Summary      Cancel my order
// @Description  Only pending orders can be cancelled; items are restocked
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) CancelMy(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.CancelMy(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// AdminList godoc
// @Summary      List orders
// @Tags         admin
// @Produce      json
// @Param        status query string false "Order status" Enums(pending, processing, shipped, delivered, cancelled)
// @Param        search query string false "Order number search"
// @Param        from query string false "From date" format(date)
// @Param        to query string false "To date" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *OrderHandler) AdminList(c *gin.Context) {
	var filter orderapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, result.Orders, result.Total, page, pageSize)
}

// AdminGet godoc
// @Summary      Get order
// @Tags         admin
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id} [get]
func (h *OrderHandler) AdminGet(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus godoc
// @Summary      Update order status
// @Description  Move an order along its lifecycle. Cancelling restocks the items.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.UpdateStatusRequest true "Status"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "order")
	if !ok {
		return
	}
	var req orderapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Feed godoc
// @Summary      Order feed
// @Description  Upgrade to a websocket that streams order events. Browsers pass the access token as ?token=.
// @Tags         admin
// @Param        token query string false "Access token"
// @Success      101
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/feed [get]
func (h *OrderHandler) Feed(c *gin.Context) {
	if h.feed == nil {
		h.Error(c, http.StatusServiceUnavailable, "FEED_UNAVAILABLE", "Order feed is not enabled")
		return
	}

	// the upgrader has already answered when this fails
	if err := h.feed.ServeWS(c.Writer, c.Request); err != nil {
		logger.GetGinLogger(c).Debug("Order feed closed", zap.Error(err))
	}
}

var _ OrderService = (*orderapp.Service)(nil)
