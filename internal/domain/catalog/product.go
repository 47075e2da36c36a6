package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	// MaxImages is the maximum number of images a product may reference
	MaxImages = 10
	// maxVariantValueLength bounds a single size or color label
	maxVariantValueLength = 30
)

// Product represents a sellable item in the storefront catalog.
// It is the aggregate root for catalog operations.
type Product struct {
	shared.BaseAggregateRoot
	Name           string
	Slug           string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Stock          int
	Category       string
	Brand          string
	Images         []string
	Sizes          []string
	Colors         []string
	IsFeatured     bool
	IsActive       bool
}

// NewProduct creates a new active product with zero stock
func NewProduct(name string, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              Slugify(name),
		Price:             price,
		Images:            make([]string, 0),
		Sizes:             make([]string, 0),
		Colors:            make([]string, 0),
		IsActive:          true,
	}, nil
}

// Rename changes the product name and regenerates the slug
func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	if name == p.Name {
		return nil
	}

	p.Name = name
	p.Slug = Slugify(name)
	p.IncrementVersion()
	return nil
}

// SetDescription sets the long description
func (p *Product) SetDescription(description string) error {
	if utf8.RuneCountInString(description) > 5000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 5000 characters")
	}
	p.Description = strings.TrimSpace(description)
	p.IncrementVersion()
	return nil
}

// SetPricing sets the selling price and optional compare-at price.
// The compare-at price, when given, must not be lower than the price.
func (p *Product) SetPricing(price decimal.Decimal, compareAt *decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if compareAt != nil && compareAt.LessThan(price) {
		return shared.NewDomainError("INVALID_PRICE", "Compare-at price cannot be lower than price")
	}

	p.Price = price
	p.CompareAtPrice = compareAt
	p.IncrementVersion()
	return nil
}

// SetClassification sets the category and brand
func (p *Product) SetClassification(category, brand string) error {
	category = strings.TrimSpace(category)
	brand = strings.TrimSpace(brand)
	if utf8.RuneCountInString(category) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}
	if utf8.RuneCountInString(brand) > 100 {
		return shared.NewDomainError("INVALID_BRAND", "Brand cannot exceed 100 characters")
	}

	p.Category = category
	p.Brand = brand
	p.IncrementVersion()
	return nil
}

// SetVariants replaces the available sizes and colors.
// Blank values are dropped and duplicates collapsed.
func (p *Product) SetVariants(sizes, colors []string) error {
	cleanSizes, err := normalizeVariantValues(sizes, "size")
	if err != nil {
		return err
	}
	cleanColors, err := normalizeVariantValues(colors, "color")
	if err != nil {
		return err
	}

	p.Sizes = cleanSizes
	p.Colors = cleanColors
	p.IncrementVersion()
	return nil
}

// AcceptsVariant reports whether size and color are valid for this product.
// An empty option list accepts only an empty value.
func (p *Product) AcceptsVariant(size, color string) bool {
	return acceptsValue(p.Sizes, size) && acceptsValue(p.Colors, color)
}

// SetFeatured toggles the featured flag
func (p *Product) SetFeatured(featured bool) {
	if p.IsFeatured == featured {
		return
	}
	p.IsFeatured = featured
	p.IncrementVersion()
}

// SetActive toggles shopper visibility
func (p *Product) SetActive(active bool) {
	if p.IsActive == active {
		return
	}
	p.IsActive = active
	p.IncrementVersion()
}

// SetStock sets the absolute stock level
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Stock cannot be negative")
	}
	p.Stock = stock
	p.IncrementVersion()
	return nil
}

// AdjustStock applies a signed delta to the stock level
func (p *Product) AdjustStock(delta int) error {
	if p.Stock+delta < 0 {
		return shared.NewDomainError(shared.CodeInsufficientStock, "Insufficient stock for "+p.Name)
	}
	p.Stock += delta
	p.IncrementVersion()
	return nil
}

// InStock reports whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// IsPurchasable reports whether shoppers can add the product to a cart
func (p *Product) IsPurchasable() bool {
	return p.IsActive && p.Stock > 0
}

// AttachImage appends an image reference
func (p *Product) AttachImage(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return shared.NewDomainError("INVALID_IMAGE", "Image reference cannot be empty")
	}
	for _, img := range p.Images {
		if img == ref {
			return nil
		}
	}
	if len(p.Images) >= MaxImages {
		return shared.NewDomainError("TOO_MANY_IMAGES", "A product cannot have more than 10 images")
	}

	p.Images = append(p.Images, ref)
	p.IncrementVersion()
	return nil
}

// RemoveImage drops an image reference; it reports whether it was present
func (p *Product) RemoveImage(ref string) bool {
	for i, img := range p.Images {
		if img == ref {
			p.Images = append(p.Images[:i], p.Images[i+1:]...)
			p.IncrementVersion()
			return true
		}
	}
	return false
}

// PrimaryImage returns the first image or an empty string
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// IsOnSale reports whether a compare-at price above the price is set
func (p *Product) IsOnSale() bool {
	return p.CompareAtPrice != nil && p.CompareAtPrice.GreaterThan(p.Price)
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}

func normalizeVariantValues(values []string, kind string) ([]string, error) {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if utf8.RuneCountInString(v) > maxVariantValueLength {
			return nil, shared.NewDomainError("INVALID_VARIANT", "Each "+kind+" must be at most 30 characters")
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

func acceptsValue(options []string, value string) bool {
	value = strings.TrimSpace(value)
	if len(options) == 0 {
		return value == ""
	}
	for _, o := range options {
		if strings.EqualFold(o, value) {
			return true
		}
	}
	return false
}
