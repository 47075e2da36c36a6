package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/media"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	defaultFeaturedLimit = 8
	maxFeaturedLimit     = 50
	maxSlugAttempts      = 20
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	media       *media.Presigner
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, presigner *media.Presigner, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		media:       presigner,
		logger:      logger,
	}
}

// List returns active products for shoppers
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductListResponse, int64, error) {
	active := true
	filter.Active = &active
	return s.list(ctx, filter)
}

// AdminList returns products including inactive ones
func (s *ProductService) AdminList(ctx context.Context, filter ProductListFilter) ([]ProductListResponse, int64, error) {
	return s.list(ctx, filter)
}

func (s *ProductService) list(ctx context.Context, filter ProductListFilter) ([]ProductListResponse, int64, error) {
	domainFilter := buildProductFilter(filter)

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductListResponses(products, s.media), total, nil
}

// GetByID returns an active product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.NewNotFoundError("Product")
	}
	response := ToProductResponse(product, s.media, false)
	return &response, nil
}

// GetBySlug returns an active product by slug
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.NewNotFoundError("Product")
	}
	response := ToProductResponse(product, s.media, false)
	return &response, nil
}

// AdminGet returns any product, including its raw image references
func (s *ProductService) AdminGet(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product, s.media, true)
	return &response, nil
}

// ListFeatured returns the newest active featured products
func (s *ProductService) ListFeatured(ctx context.Context, limit int) ([]ProductListResponse, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	if limit > maxFeaturedLimit {
		limit = maxFeaturedLimit
	}

	filter := shared.DefaultFilter()
	filter.PageSize = limit
	filter.Filters["is_active"] = true
	filter.Filters["is_featured"] = true

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToProductListResponses(products, s.media), nil
}

// ListCategories returns distinct categories of active products
func (s *ProductService) ListCategories(ctx context.Context) ([]string, error) {
	return s.productRepo.DistinctValues(ctx, "category")
}

// ListBrands returns distinct brands of active products
func (s *ProductService) ListBrands(ctx context.Context) ([]string, error) {
	return s.productRepo.DistinctValues(ctx, "brand")
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.Price)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := product.SetDescription(req.Description); err != nil {
			return nil, err
		}
	}
	if req.CompareAtPrice != nil {
		if err := product.SetPricing(req.Price, req.CompareAtPrice); err != nil {
			return nil, err
		}
	}
	if err := product.SetStock(req.Stock); err != nil {
		return nil, err
	}
	if err := product.SetClassification(req.Category, req.Brand); err != nil {
		return nil, err
	}
	if err := product.SetVariants(req.Sizes, req.Colors); err != nil {
		return nil, err
	}
	for _, ref := range req.Images {
		if err := product.AttachImage(ref); err != nil {
			return nil, err
		}
	}
	product.SetFeatured(req.IsFeatured)
	if req.IsActive != nil {
		product.SetActive(*req.IsActive)
	}

	slug, err := s.uniqueSlug(ctx, product.Slug, nil)
	if err != nil {
		return nil, err
	}
	product.Slug = slug

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
	)
	response := ToProductResponse(product, s.media, true)
	return &response, nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		oldSlug := product.Slug
		if err := product.Rename(*req.Name); err != nil {
			return nil, err
		}
		if product.Slug != oldSlug {
			slug, err := s.uniqueSlug(ctx, product.Slug, &product.ID)
			if err != nil {
				return nil, err
			}
			product.Slug = slug
		}
	}
	if req.Description != nil {
		if err := product.SetDescription(*req.Description); err != nil {
			return nil, err
		}
	}
	if req.Price != nil || req.CompareAtPrice != nil || req.ClearCompareAtPrice {
		price := product.Price
		if req.Price != nil {
			price = *req.Price
		}
		compareAt := product.CompareAtPrice
		if req.CompareAtPrice != nil {
			compareAt = req.CompareAtPrice
		}
		if req.ClearCompareAtPrice {
			compareAt = nil
		}
		if err := product.SetPricing(price, compareAt); err != nil {
			return nil, err
		}
	}
	if req.Category != nil || req.Brand != nil {
		category, brand := product.Category, product.Brand
		if req.Category != nil {
			category = *req.Category
		}
		if req.Brand != nil {
			brand = *req.Brand
		}
		if err := product.SetClassification(category, brand); err != nil {
			return nil, err
		}
	}
	if req.Sizes != nil || req.Colors != nil {
		sizes, colors := product.Sizes, product.Colors
		if req.Sizes != nil {
			sizes = req.Sizes
		}
		if req.Colors != nil {
			colors = req.Colors
		}
		if err := product.SetVariants(sizes, colors); err != nil {
			return nil, err
		}
	}
	if req.IsFeatured != nil {
		product.SetFeatured(*req.IsFeatured)
	}
	if req.IsActive != nil {
		product.SetActive(*req.IsActive)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product, s.media, true)
	return &response, nil
}

// Delete removes a product and, best-effort, its stored images
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	for _, ref := range product.Images {
		if err := s.media.Delete(ctx, ref); err != nil {
			s.logger.Warn("Failed to delete product image",
				zap.String("product_id", id.String()),
				zap.String("ref", ref),
				zap.Error(err),
			)
		}
	}
	return nil
}

// SetFeatured sets the featured flag
func (s *ProductService) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		p.SetFeatured(featured)
		return nil
	})
}

// SetActive sets shopper visibility
func (s *ProductService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		p.SetActive(active)
		return nil
	})
}

// SetStock sets the absolute stock level
func (s *ProductService) SetStock(ctx context.Context, id uuid.UUID, stock int) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.SetStock(stock)
	})
}

// AdjustStock applies a signed delta; stock never goes below zero
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.AdjustStock(delta)
	})
}

// ApplyStock dispatches a StockRequest to SetStock or AdjustStock
func (s *ProductService) ApplyStock(ctx context.Context, id uuid.UUID, req StockRequest) (*ProductResponse, error) {
	switch {
	case req.Stock != nil && req.Delta != nil:
		return nil, shared.NewInvalidInputError("Provide either stock or delta, not both")
	case req.Stock != nil:
		return s.SetStock(ctx, id, *req.Stock)
	case req.Delta != nil:
		return s.AdjustStock(ctx, id, *req.Delta)
	default:
		return nil, shared.NewInvalidInputError("Provide stock or delta")
	}
}

// RequestImageUpload returns a presigned upload ticket for a product image
func (s *ProductService) RequestImageUpload(ctx context.Context, id uuid.UUID, req media.UploadRequest) (*media.UploadTicket, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(product.Images) >= catalog.MaxImages {
		return nil, shared.NewDomainError("TOO_MANY_IMAGES",
			fmt.Sprintf("A product cannot have more than %d images", catalog.MaxImages))
	}
	return s.media.Presign(ctx, media.ProductImageDir(id), req)
}

// AttachImage adds an image reference. Storage keys must live under the product's
// image prefix and exist in storage.
func (s *ProductService) AttachImage(ctx context.Context, id uuid.UUID, ref string) (*ProductResponse, error) {
	ref = strings.TrimSpace(ref)
	if !media.IsAbsoluteURL(ref) {
		if !media.KeyWithin(ref, media.ProductImageDir(id)) {
			return nil, shared.NewDomainError("INVALID_IMAGE", "Image key does not belong to this product")
		}
		exists, err := s.media.Exists(ctx, ref)
		if err != nil {
			return nil, shared.WrapDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload", err)
		}
		if !exists {
			return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "File not found in storage. Please upload the file first.")
		}
	}
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.AttachImage(ref)
	})
}

// RemoveImage drops an image reference and deletes the stored object
func (s *ProductService) RemoveImage(ctx context.Context, id uuid.UUID, ref string) (*ProductResponse, error) {
	resp, err := s.mutate(ctx, id, func(p *catalog.Product) error {
		if !p.RemoveImage(ref) {
			return shared.NewNotFoundError("Image")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.media.Delete(ctx, ref); err != nil {
		s.logger.Warn("Failed to delete product image",
			zap.String("product_id", id.String()),
			zap.String("ref", ref),
			zap.Error(err),
		)
	}
	return resp, nil
}

func (s *ProductService) mutate(ctx context.Context, id uuid.UUID, fn func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	response := ToProductResponse(product, s.media, true)
	return &response, nil
}

// uniqueSlug returns base, or base with a numeric suffix, that no other product uses
func (s *ProductService) uniqueSlug(ctx context.Context, base string, excludeID *uuid.UUID) (string, error) {
	if base == "" {
		base = "product"
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		exists, err := s.productRepo.ExistsBySlug(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8]), nil
}

func buildProductFilter(filter ProductListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
		Filters:  make(map[string]interface{}),
	}

	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.Brand != "" {
		domainFilter.Filters["brand"] = filter.Brand
	}
	if filter.MinPrice != nil {
		domainFilter.Filters["min_price"] = decimal.NewFromFloat(*filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		domainFilter.Filters["max_price"] = decimal.NewFromFloat(*filter.MaxPrice)
	}
	if filter.Featured != nil {
		domainFilter.Filters["is_featured"] = *filter.Featured
	}
	if filter.InStock != nil {
		domainFilter.Filters["in_stock"] = *filter.InStock
	}
	if filter.Active != nil {
		domainFilter.Filters["is_active"] = *filter.Active
	}
	return domainFilter
}
