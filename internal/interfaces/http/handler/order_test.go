package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func orderRouter(svc *MockOrderService, feed OrderFeed, mw ...gin.HandlerFunc) *gin.Engine {
	h := NewOrderHandler(svc, feed)
	r := newTestRouter(mw...)
	r.POST("/checkout", h.Checkout)
	r.GET("/orders", h.ListMy)
	r.GET("/orders/:id", h.GetMy)
	r.POST("/orders/:id/cancel", h.CancelMy)
	r.GET("/admin/orders", h.AdminList)
	r.GET("/admin/orders/feed", h.Feed)
	r.GET("/admin/orders/:id", h.AdminGet)
	r.PATCH("/admin/orders/:id/status", h.UpdateStatus)
	return r
}

func TestOrderHandler_Checkout(t *testing.T) {
	svc := new(MockOrderService)
	userID := uuid.New()
	addressID := uuid.New()

	svc.On("Checkout", mock.Anything, userID, mock.MatchedBy(func(r orderapp.CheckoutRequest) bool {
		return r.AddressID != nil && *r.AddressID == addressID && r.PaymentMethod == "cod"
	})).Return(&orderapp.OrderResponse{OrderNumber: "SO-1001", Status: "pending", Total: decimal.NewFromInt(59)}, nil)

	r := orderRouter(svc, nil, withUser(userID))
	w := doJSON(r, http.MethodPost, "/checkout", `{"address_id":"`+addressID.String()+`","payment_method":"cod"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "SO-1001")

	w = doJSON(r, http.MethodPost, "/checkout", `{"payment_method":"bitcoin"}`)
	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	svc.AssertExpectations(t)
}

func TestOrderHandler_CheckoutEmptyCart(t *testing.T) {
	svc := new(MockOrderService)
	userID := uuid.New()
	svc.On("Checkout", mock.Anything, userID, mock.Anything).
		Return(nil, shared.NewInvalidInputError("Your cart is empty"))

	w := doJSON(orderRouter(svc, nil, withUser(userID)), http.MethodPost, "/checkout", `{"payment_method":"card"}`)
	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
}

func TestOrderHandler_ListMy(t *testing.T) {
	svc := new(MockOrderService)
	userID := uuid.New()
	svc.On("ListMy", mock.Anything, userID, orderapp.ListFilter{Status: "pending", Page: 2, PageSize: 5}).
		Return(&orderapp.ListResult{Orders: []orderapp.OrderResponse{{OrderNumber: "SO-1"}}, Total: 6}, nil)

	w := doJSON(orderRouter(svc, nil, withUser(userID)), http.MethodGet, "/orders?status=pending&page=2&page_size=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(6), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	svc.AssertExpectations(t)
}

func TestOrderHandler_GetAndCancel(t *testing.T) {
	svc := new(MockOrderService)
	userID := uuid.New()
	mine := uuid.New()
	shipped := uuid.New()
	other := uuid.New()

	svc.On("GetMy", mock.Anything, userID, mine).Return(&orderapp.OrderResponse{ID: mine}, nil)
	svc.On("GetMy", mock.Anything, userID, other).Return(nil, shared.NewNotFoundError("Order"))
	svc.On("CancelMy", mock.Anything, userID, mine).Return(&orderapp.OrderResponse{ID: mine, Status: "cancelled"}, nil)
	svc.On("CancelMy", mock.Anything, userID, shipped).
		Return(nil, shared.NewDomainError(shared.CodeInvalidState, "Only pending orders can be cancelled"))

	r := orderRouter(svc, nil, withUser(userID))
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/orders/"+mine.String(), nil).Code)
	assertErrorCode(t, doJSON(r, http.MethodGet, "/orders/"+other.String(), nil), http.StatusNotFound, dto.ErrCodeNotFound)

	w := doJSON(r, http.MethodPost, "/orders/"+mine.String()+"/cancel", nil)
	assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
	w = doJSON(r, http.MethodPost, "/orders/"+shipped.String()+"/cancel", nil)
	assertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
	svc.AssertExpectations(t)
}

func TestOrderHandler_Admin(t *testing.T) {
	svc := new(MockOrderService)
	adminID := uuid.New()
	id := uuid.New()

	svc.On("List", mock.Anything, orderapp.ListFilter{}).Return(&orderapp.ListResult{Total: 0}, nil)
	svc.On("Get", mock.Anything, id).Return(&orderapp.OrderResponse{ID: id}, nil)
	svc.On("UpdateStatus", mock.Anything, id, orderapp.UpdateStatusRequest{Status: "shipped"}).
		Return(&orderapp.OrderResponse{ID: id, Status: "shipped"}, nil)

	r := orderRouter(svc, nil, withUser(adminID))
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/admin/orders", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/admin/orders/"+id.String(), nil).Code)
	w := doJSON(r, http.MethodPatch, "/admin/orders/"+id.String()+"/status", `{"status":"shipped"}`)
	assert.Contains(t, w.Body.String(), `"status":"shipped"`)

	w = doJSON(r, http.MethodPatch, "/admin/orders/"+id.String()+"/status", `{"status":"lost"}`)
	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	svc.AssertExpectations(t)
}

func TestOrderHandler_Feed(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		w := doJSON(orderRouter(new(MockOrderService), nil), http.MethodGet, "/admin/orders/feed", nil)
		assertErrorCode(t, w, http.StatusServiceUnavailable, "FEED_UNAVAILABLE")
	})

	t.Run("delegates to the hub", func(t *testing.T) {
		feed := new(MockOrderFeed)
		feed.On("ServeWS", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(0).(http.ResponseWriter).WriteHeader(http.StatusBadRequest)
		}).Return(errors.New("websocket: not a websocket handshake"))

		w := doJSON(orderRouter(new(MockOrderService), feed), http.MethodGet, "/admin/orders/feed", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		feed.AssertExpectations(t)
	})
}
