package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/application/media"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func productRouter(svc *MockProductService) *gin.Engine {
	h := NewProductHandler(svc)
	r := newTestRouter()
	r.GET("/catalog/products", h.List)
	r.GET("/catalog/products/:id", h.GetByID)
	r.GET("/catalog/products/slug/:slug", h.GetBySlug)
	r.GET("/catalog/featured", h.Featured)
	r.GET("/catalog/categories", h.Categories)
	r.POST("/admin/products", h.Create)
	r.DELETE("/admin/products/:id", h.Delete)
	r.PATCH("/admin/products/:id/featured", h.SetFeatured)
	r.PATCH("/admin/products/:id/stock", h.SetStock)
	r.POST("/admin/products/:id/images/upload-url", h.ImageUploadURL)
	r.POST("/admin/products/:id/images", h.AttachImage)
	r.DELETE("/admin/products/:id/images", h.RemoveImage)
	return r
}

func TestProductHandler_List(t *testing.T) {
	svc := new(MockProductService)
	items := []catalogapp.ProductListResponse{{ID: uuid.New(), Name: "Linen Shirt", Price: decimal.NewFromInt(40)}}
	svc.On("List", mock.Anything, mock.MatchedBy(func(f catalogapp.ProductListFilter) bool {
		return f.Category == "shirts" && f.Page == 2 && f.PageSize == 10 && f.InStock != nil && *f.InStock
	})).Return(items, int64(11), nil)

	w := doJSON(productRouter(svc), http.MethodGet, "/catalog/products?category=shirts&page=2&page_size=10&in_stock=true", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(11), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	svc.AssertExpectations(t)
}

func TestProductHandler_ListRejectsBadQuery(t *testing.T) {
	svc := new(MockProductService)
	w := doJSON(productRouter(svc), http.MethodGet, "/catalog/products?order_by=secret", nil)
	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	svc.AssertNotCalled(t, "List")
}

func TestProductHandler_GetByID(t *testing.T) {
	svc := new(MockProductService)
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc.On("GetByID", mock.Anything, id).Return(&catalogapp.ProductResponse{ID: id, Name: "Tee"}, nil).Once()
		w := doJSON(productRouter(svc), http.MethodGet, "/catalog/products/"+id.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Tee"`)
	})

	t.Run("inactive or missing", func(t *testing.T) {
		svc.On("GetByID", mock.Anything, id).Return(nil, shared.NewNotFoundError("Product")).Once()
		w := doJSON(productRouter(svc), http.MethodGet, "/catalog/products/"+id.String(), nil)
		assertErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("bad id", func(t *testing.T) {
		w := doJSON(productRouter(svc), http.MethodGet, "/catalog/products/not-a-uuid", nil)
		assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})
}

func TestProductHandler_SlugAndFeatured(t *testing.T) {
	svc := new(MockProductService)
	svc.On("GetBySlug", mock.Anything, "linen-shirt").Return(&catalogapp.ProductResponse{Slug: "linen-shirt"}, nil)
	svc.On("ListFeatured", mock.Anything, 4).Return([]catalogapp.ProductListResponse{}, nil)
	svc.On("ListCategories", mock.Anything).Return([]string{"shirts", "shoes"}, nil)
	r := productRouter(svc)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/catalog/products/slug/linen-shirt", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/catalog/featured?limit=4", nil).Code)
	w := doJSON(r, http.MethodGet, "/catalog/categories", nil)
	assert.Contains(t, w.Body.String(), `["shirts","shoes"]`)
	svc.AssertExpectations(t)
}

func TestProductHandler_Create(t *testing.T) {
	svc := new(MockProductService)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(r catalogapp.CreateProductRequest) bool {
		return r.Name == "Canvas Tote" && r.Price.Equal(decimal.RequireFromString("19.90")) && r.Stock == 5
	})).Return(&catalogapp.ProductResponse{ID: uuid.New(), Name: "Canvas Tote"}, nil)

	w := doJSON(productRouter(svc), http.MethodPost, "/admin/products", `{"name":"Canvas Tote","price":"19.90","stock":5}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)

	t.Run("missing name", func(t *testing.T) {
		w := doJSON(productRouter(svc), http.MethodPost, "/admin/products", `{"price":"1"}`)
		assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := doJSON(productRouter(svc), http.MethodPost, "/admin/products", `{"name":`)
		assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeInvalidJSON)
	})
}

func TestProductHandler_AdminMutations(t *testing.T) {
	svc := new(MockProductService)
	id := uuid.New()
	r := productRouter(svc)

	svc.On("SetFeatured", mock.Anything, id, true).Return(&catalogapp.ProductResponse{ID: id, IsFeatured: true}, nil)
	w := doJSON(r, http.MethodPatch, "/admin/products/"+id.String()+"/featured", `{"value":true}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPatch, "/admin/products/"+id.String()+"/featured", `{}`)
	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	svc.On("ApplyStock", mock.Anything, id, mock.MatchedBy(func(req catalogapp.StockRequest) bool {
		return req.Delta != nil && *req.Delta == -3 && req.Stock == nil
	})).Return(nil, shared.ErrInsufficientStock)
	w = doJSON(r, http.MethodPatch, "/admin/products/"+id.String()+"/stock", `{"delta":-3}`)
	assertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock)

	svc.On("Delete", mock.Anything, id).Return(nil)
	w = doJSON(r, http.MethodDelete, "/admin/products/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	svc.AssertExpectations(t)
}

func TestProductHandler_Images(t *testing.T) {
	svc := new(MockProductService)
	id := uuid.New()
	r := productRouter(svc)

	upload := media.UploadRequest{FileName: "front.png", ContentType: "image/png", Size: 2048}
	svc.On("RequestImageUpload", mock.Anything, id, upload).
		Return(&media.UploadTicket{UploadURL: "https://s3/put", StorageKey: "product-images/x.png"}, nil)
	w := doJSON(r, http.MethodPost, "/admin/products/"+id.String()+"/images/upload-url", upload)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "product-images/x.png")

	svg := media.UploadRequest{FileName: "x.svg", ContentType: "image/svg+xml", Size: 10}
	svc.On("RequestImageUpload", mock.Anything, id, svg).
		Return(nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE", "Only images are accepted"))
	w = doJSON(r, http.MethodPost, "/admin/products/"+id.String()+"/images/upload-url", svg)
	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeDisallowedContentType)

	svc.On("AttachImage", mock.Anything, id, "product-images/x.png").Return(&catalogapp.ProductResponse{ID: id}, nil)
	w = doJSON(r, http.MethodPost, "/admin/products/"+id.String()+"/images", catalogapp.ImageRequest{Ref: "product-images/x.png"})
	assert.Equal(t, http.StatusOK, w.Code)

	svc.On("RemoveImage", mock.Anything, id, "product-images/x.png").Return(&catalogapp.ProductResponse{ID: id}, nil)
	w = doJSON(r, http.MethodDelete, "/admin/products/"+id.String()+"/images", catalogapp.ImageRequest{Ref: "product-images/x.png"})
	assert.Equal(t, http.StatusOK, w.Code)
}
