package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/application/media"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

const defaultFeaturedLimit = 8

// ProductService is the catalog surface used by the storefront and back office
type ProductService interface {
	List(ctx context.Context, filter catalogapp.ProductListFilter) ([]catalogapp.ProductListResponse, int64, error)
	AdminList(ctx context.Context, filter catalogapp.ProductListFilter) ([]catalogapp.ProductListResponse, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	GetBySlug(ctx context.Context, slug string) (*catalogapp.ProductResponse, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	ListFeatured(ctx context.Context, limit int) ([]catalogapp.ProductListResponse, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListBrands(ctx context.Context) ([]string, error)
	Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*catalogapp.ProductResponse, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*catalogapp.ProductResponse, error)
	ApplyStock(ctx context.Context, id uuid.UUID, req catalogapp.StockRequest) (*catalogapp.ProductResponse, error)
	RequestImageUpload(ctx context.Context, id uuid.UUID, req media.UploadRequest) (*media.UploadTicket, error)
	AttachImage(ctx context.Context, id uuid.UUID, ref string) (*catalogapp.ProductResponse, error)
	RemoveImage(ctx context.Context, id uuid.UUID, ref string) (*catalogapp.ProductResponse, error)
}

// ProductHandler handles catalog endpoints, public and admin
type ProductHandler struct {
	BaseHandler
	productService ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List godoc
// @Summary      List products
// @Description  Paginated list of active products with optional filtering
// @Tags         catalog
// @Produce      json
// @Param        search query string false "Search term"
// @Param        category query string false "Category"
// @Param        brand query string false "Brand"
// @Param        min_price query number false "Minimum price"
// @Param        max_price query number false "Maximum price"
// @Param        featured query boolean false "Featured only"
// @Param        in_stock query boolean false "In stock only"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(name, price, created_at, stock)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductListResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, products, total, page, pageSize)
}

// GetByID godoc
// @Summary      Get product by ID
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetBySlug godoc
// @Summary      Get product by slug
// @Tags         catalog
// @Produce      json
// @Param        slug path string true "Product slug"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products/slug/{slug} [get]
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Product slug is required")
		return
	}

	product, err := h.productService.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Featured godoc
// @Summary      List featured products
// @Tags         catalog
// @Produce      json
// @Param        limit query int false "Maximum products" default(8) maximum(50)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductListResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/featured [get]
func (h *ProductHandler) Featured(c *gin.Context) {
	products, err := h.productService.ListFeatured(c.Request.Context(), queryInt(c, "limit", defaultFeaturedLimit))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Categories godoc
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]string}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/categories [get]
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.productService.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Brands godoc
// @Summary      List brands
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]string}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/brands [get]
func (h *ProductHandler) Brands(c *gin.Context) {
	brands, err := h.productService.ListBrands(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brands)
}

// AdminList godoc
// @Summary      List products (admin)
// @Description  Paginated list including inactive products
// @Tags         admin
// @Produce      json
// @Param        search query string false "Search term"
// @Param        active query boolean false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductListResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *ProductHandler) AdminList(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	products, total, err := h.productService.AdminList(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, products, total, page, pageSize)
}

// AdminGet godoc
// @Summary      Get product (admin)
// @Tags         admin
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [get]
func (h *ProductHandler) AdminGet(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.AdminGet(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateProductRequest true "Product fields"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "product")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Tags         admin
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetFeatured godoc
// @Summary      Set the featured flag
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.SetFlagRequest true "Flag"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/featured [patch]
func (h *ProductHandler) SetFeatured(c *gin.Context) {
	h.setFlag(c, h.productService.SetFeatured)
}

// SetActive godoc
// @Summary      Set the active flag
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.SetFlagRequest true "Flag"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/active [patch]
func (h *ProductHandler) SetActive(c *gin.Context) {
	h.setFlag(c, h.productService.SetActive)
}

func (h *ProductHandler) setFlag(c *gin.Context, set func(context.Context, uuid.UUID, bool) (*catalogapp.ProductResponse, error)) {
	id, ok := h.uuidParam(c, "id", "product")
	if !ok {
		return
	}
	var req catalogapp.SetFlagRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := set(c.Request.Context(), id, *req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// SetStock godoc
// @Summary      Set or adjust stock
// @Description  The body carries either an absolute stock or a delta
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.StockRequest true "Stock"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/stock [patch]
func (h *ProductHandler) SetStock(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "product")
	if !ok {
		return
	}
	var req catalogapp.StockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.ApplyStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ImageUploadURL godoc
// @Summary      Request an image upload URL
// @Description  Return a presigned PUT URL for a new product image
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body media.UploadRequest true "Upload"
// @Success      200 {object} dto.Response{data=media.UploadTicket}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/images/upload-url [post]
func (h *ProductHandler) ImageUploadURL(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "product")
	if !ok {
		return
	}
	var req media.UploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ticket, err := h.productService.RequestImageUpload(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}

// AttachImage godoc
// @Summary      Attach an image
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.ImageRequest true "Image reference"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/images [post]
func (h *ProductHandler) AttachImage(c *gin.Context) {
	h.changeImage(c, h.productService.AttachImage)
}

// RemoveImage godoc
// @Summary      Remove an image
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.ImageRequest true "Image reference"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/images [delete]
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	h.changeImage(c, h.productService.RemoveImage)
}

func (h *ProductHandler) changeImage(c *gin.Context, change func(context.Context, uuid.UUID, string) (*catalogapp.ProductResponse, error)) {
	id, ok := h.uuidParam(c, "id", "product")
	if !ok {
		return
	}
	var req catalogapp.ImageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := change(c.Request.Context(), id, req.Ref)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

var _ ProductService = (*catalogapp.ProductService)(nil)
