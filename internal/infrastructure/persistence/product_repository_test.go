package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, repo *GormProductRepository, name, price string, stock int, mutate ...func(*catalog.Product)) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, decimal.RequireFromString(price))
	require.NoError(t, err)
	require.NoError(t, p.SetStock(stock))
	for _, m := range mutate {
		m(p)
	}
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDB(t))

	p := seedProduct(t, repo, "Canvas Sneaker", "59.90", 12, func(p *catalog.Product) {
		require.NoError(t, p.SetVariants([]string{"41", "42"}, []string{"white"}))
		require.NoError(t, p.AttachImage("product-images/a.jpg"))
		require.NoError(t, p.SetClassification("shoes", "Acme"))
	})

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Canvas Sneaker", found.Name)
	assert.Equal(t, "canvas-sneaker", found.Slug)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("59.90")))
	assert.Equal(t, []string{"41", "42"}, found.Sizes)
	assert.Equal(t, []string{"white"}, found.Colors)
	assert.Equal(t, []string{"product-images/a.jpg"}, found.Images)
	assert.Equal(t, p.Version, found.Version)

	bySlug, err := repo.FindBySlug(ctx, "canvas-sneaker")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySlug.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormProductRepository_SavePersistsInactive(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDB(t))

	p := seedProduct(t, repo, "Hidden Hat", "10", 1, func(p *catalog.Product) { p.SetActive(false) })

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestGormProductRepository_UpdateViaSave(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDB(t))
	p := seedProduct(t, repo, "Wool Scarf", "25", 3)

	require.NoError(t, p.Rename("Merino Scarf"))
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "merino-scarf", found.Slug)

	count, err := repo.Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormProductRepository_DuplicateSlug(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))
	seedProduct(t, repo, "Denim Jacket", "80", 1)

	dup, err := catalog.NewProduct("Denim Jacket", decimal.NewFromInt(90))
	require.NoError(t, err)
	err = repo.Save(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
}

func TestGormProductRepository_FindAllFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDB(t))

	seedProduct(t, repo, "Red Dress", "40", 5, func(p *catalog.Product) {
		require.NoError(t, p.SetClassification("dresses", "Flora"))
		p.SetFeatured(true)
	})
	seedProduct(t, repo, "Blue Dress", "120", 0, func(p *catalog.Product) {
		require.NoError(t, p.SetClassification("dresses", "Flora"))
	})
	seedProduct(t, repo, "Trail Boot", "150", 2, func(p *catalog.Product) {
		require.NoError(t, p.SetClassification("shoes", "Peak"))
	})
	seedProduct(t, repo, "Old Boot", "30", 9, func(p *catalog.Product) {
		require.NoError(t, p.SetClassification("shoes", "Peak"))
		p.SetActive(false)
	})

	names := func(ps []catalog.Product) []string {
		out := make([]string, len(ps))
		for i := range ps {
			out[i] = ps[i].Name
		}
		return out
	}

	tests := []struct {
		name    string
		filter  shared.Filter
		want    []string
		wantCnt int64
	}{
		{
			name:    "active sorted by price",
			filter:  shared.Filter{OrderBy: "price", OrderDir: "asc", Filters: map[string]any{"is_active": true}},
			want:    []string{"Red Dress", "Blue Dress", "Trail Boot"},
			wantCnt: 3,
		},
		{
			name:    "search is case-insensitive over brand",
			filter:  shared.Filter{Search: "flora", OrderBy: "price", OrderDir: "asc", Filters: map[string]any{}},
			want:    []string{"Red Dress", "Blue Dress"},
			wantCnt: 2,
		},
		{
			name:    "in stock within category",
			filter:  shared.Filter{Filters: map[string]any{"category": "dresses", "in_stock": true}},
			want:    []string{"Red Dress"},
			wantCnt: 1,
		},
		{
			name: "price range",
			filter: shared.Filter{OrderBy: "price", OrderDir: "desc", Filters: map[string]any{
				"min_price": decimal.NewFromInt(35),
				"max_price": decimal.NewFromInt(130),
			}},
			want:    []string{"Blue Dress", "Red Dress"},
			wantCnt: 2,
		},
		{
			name:    "featured",
			filter:  shared.Filter{Filters: map[string]any{"is_featured": true}},
			want:    []string{"Red Dress"},
			wantCnt: 1,
		},
		{
			name:    "pagination keeps total",
			filter:  shared.Filter{Page: 2, PageSize: 2, OrderBy: "price", OrderDir: "asc", Filters: map[string]any{}},
			want:    []string{"Blue Dress", "Trail Boot"},
			wantCnt: 4,
		},
		{
			name:    "unknown sort field falls back",
			filter:  shared.Filter{OrderBy: "price; DROP TABLE products", Filters: map[string]any{"brand": "Peak", "is_active": true}},
			want:    []string{"Trail Boot"},
			wantCnt: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindAll(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))

			cnt, err := repo.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCnt, cnt)
		})
	}
}

func TestGormProductRepository_DistinctAndLowStock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDB(t))

	seedProduct(t, repo, "A", "1", 2, func(p *catalog.Product) { require.NoError(t, p.SetClassification("shoes", "Peak")) })
	seedProduct(t, repo, "B", "1", 50, func(p *catalog.Product) { require.NoError(t, p.SetClassification("bags", "Peak")) })
	seedProduct(t, repo, "C", "1", 0, func(p *catalog.Product) { require.NoError(t, p.SetClassification("", "Zen")) })
	seedProduct(t, repo, "D", "1", 1, func(p *catalog.Product) {
		require.NoError(t, p.SetClassification("hats", "Gone"))
		p.SetActive(false)
	})

	categories, err := repo.DistinctValues(ctx, "category")
	require.NoError(t, err)
	assert.Equal(t, []string{"bags", "shoes"}, categories)

	brands, err := repo.DistinctValues(ctx, "brand")
	require.NoError(t, err)
	assert.Equal(t, []string{"Peak", "Zen"}, brands)

	_, err = repo.DistinctValues(ctx, "password_hash")
	assert.Error(t, err)

	low, err := repo.CountLowStock(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), low)
}

func TestGormProductRepository_StockMovements(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDB(t))
	p := seedProduct(t, repo, "Tote", "15", 3)

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 2))

	err := repo.DecrementStock(ctx, p.ID, 2)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	err = repo.DecrementStock(ctx, uuid.New(), 1)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	require.NoError(t, repo.IncrementStock(ctx, p.ID, 4))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Stock)
	assert.Equal(t, p.Version+2, found.Version)
}

func TestGormProductRepository_ExistsBySlugAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDB(t))
	p := seedProduct(t, repo, "Belt", "20", 1)

	exists, err := repo.ExistsBySlug(ctx, "belt", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsBySlug(ctx, "belt", &p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, p.ID), shared.ErrNotFound))

	ids, err := repo.FindByIDs(ctx, []uuid.UUID{p.ID})
	require.NoError(t, err)
	assert.Empty(t, ids)
}
