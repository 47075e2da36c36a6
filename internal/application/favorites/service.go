package favorites

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/favorites"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// URLResolver turns stored image references into URLs
type URLResolver interface {
	ResolveURL(ref string) string
}

// Service manages both the owner-keyed local favorites lists and the
// favorites table of authenticated users
type Service struct {
	store       favorites.ListStore
	repo        favorites.Repository
	productRepo catalog.ProductRepository
	urls        URLResolver
	logger      *zap.Logger
	locks       shared.OwnerLocks
}

// NewService creates a favorites Service
func NewService(
	store favorites.ListStore,
	repo favorites.Repository,
	productRepo catalog.ProductRepository,
	urls URLResolver,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		repo:        repo,
		productRepo: productRepo,
		urls:        urls,
		logger:      logger,
	}
}

// ListLocal returns the owner's local list
func (s *Service) ListLocal(ctx context.Context, owner shared.OwnerKey) ([]FavoriteResponse, error) {
	list, err := s.store.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return ToLocalResponses(list), nil
}

// AddLocal favorites a product in the owner's local list; it is idempotent
func (s *Service) AddLocal(ctx context.Context, owner shared.OwnerKey, productID uuid.UUID) (*ToggleResponse, error) {
	item, err := s.snapshot(ctx, productID)
	if err != nil {
		return nil, err
	}

	var count int
	err = s.withList(ctx, owner, func(list *favorites.List) (bool, error) {
		changed := list.Add(item)
		count = len(list.Items)
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return &ToggleResponse{ProductID: productID, IsFavorite: true, Count: count}, nil
}

// ToggleLocal adds or removes a product in the owner's local list
func (s *Service) ToggleLocal(ctx context.Context, owner shared.OwnerKey, productID uuid.UUID) (*ToggleResponse, error) {
	var (
		state bool
		count int
	)
	err := s.withList(ctx, owner, func(list *favorites.List) (bool, error) {
		if list.Remove(productID) {
			count = len(list.Items)
			return true, nil
		}
		item, err := s.snapshot(ctx, productID)
		if err != nil {
			return false, err
		}
		state = list.Add(item)
		count = len(list.Items)
		return state, nil
	})
	if err != nil {
		return nil, err
	}
	return &ToggleResponse{ProductID: productID, IsFavorite: state, Count: count}, nil
}

// ContainsLocal reports whether the product is in the owner's local list
func (s *Service) ContainsLocal(ctx context.Context, owner shared.OwnerKey, productID uuid.UUID) (bool, error) {
	list, err := s.store.Load(ctx, owner)
	if err != nil {
		return false, err
	}
	return list.Contains(productID), nil
}

// RemoveLocal removes a product from the owner's local list
func (s *Service) RemoveLocal(ctx context.Context, owner shared.OwnerKey, productID uuid.UUID) error {
	return s.withList(ctx, owner, func(list *favorites.List) (bool, error) {
		return list.Remove(productID), nil
	})
}

// ClearLocal deletes the owner's local list
func (s *Service) ClearLocal(ctx context.Context, owner shared.OwnerKey) error {
	defer s.locks.Lock(owner)()
	return s.store.Delete(ctx, owner)
}

// List returns the user's favorites joined with current product data.
// Favorites whose product no longer exists are omitted.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]FavoriteResponse, error) {
	rows, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []FavoriteResponse{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	out := make([]FavoriteResponse, 0, len(rows))
	for _, r := range rows {
		p, ok := byID[r.ProductID]
		if !ok {
			continue
		}
		out = append(out, FavoriteResponse{
			ProductID: p.ID,
			Name:      p.Name,
			Slug:      p.Slug,
			Image:     s.urls.ResolveURL(p.PrimaryImage()),
			Price:     p.Price,
			InStock:   p.IsPurchasable(),
			AddedAt:   r.CreatedAt,
		})
	}
	return out, nil
}

// Add favorites a product for the user; it is idempotent
func (s *Service) Add(ctx context.Context, userID, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return shared.NewNotFoundError("Product")
	}
	return s.repo.Add(ctx, favorites.NewFavorite(userID, productID))
}

// Remove unfavorites a product for the user
func (s *Service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.repo.Remove(ctx, userID, productID)
}

// IsFavorite reports whether the user favorited the product
func (s *Service) IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, userID, productID)
}

// Sync writes the union of the local list of localOwner and the user's table
// rows to the table, then clears the local list.
func (s *Service) Sync(ctx context.Context, userID uuid.UUID, localOwner shared.OwnerKey) (*SyncResponse, error) {
	defer s.locks.Lock(localOwner)()

	list, err := s.store.Load(ctx, localOwner)
	if err != nil {
		return nil, err
	}

	var added int64
	if ids := list.ProductIDs(); len(ids) > 0 {
		existing, err := s.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		live := make([]uuid.UUID, 0, len(existing))
		for i := range existing {
			live = append(live, existing[i].ID)
		}
		if len(live) > 0 {
			added, err = s.repo.AddMany(ctx, userID, live)
			if err != nil {
				return nil, err
			}
		}
	}

	if err := s.store.Delete(ctx, localOwner); err != nil {
		s.logger.Warn("Failed to clear local favorites after sync",
			zap.String("owner", localOwner.String()),
			zap.Error(err),
		)
	}

	rows, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SyncResponse{Added: added, Total: len(rows)}, nil
}

// withList loads, mutates and saves the owner's local list under the owner
// lock. fn reports whether the list changed; unchanged lists are not saved.
func (s *Service) withList(ctx context.Context, owner shared.OwnerKey, fn func(*favorites.List) (bool, error)) error {
	defer s.locks.Lock(owner)()

	list, err := s.store.Load(ctx, owner)
	if err != nil {
		return err
	}
	changed, err := fn(list)
	if err != nil || !changed {
		return err
	}
	return s.store.Save(ctx, list)
}

func (s *Service) snapshot(ctx context.Context, productID uuid.UUID) (favorites.Item, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return favorites.Item{}, err
	}
	if !product.IsActive {
		return favorites.Item{}, shared.NewNotFoundError("Product")
	}
	return favorites.Item{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     s.urls.ResolveURL(product.PrimaryImage()),
		Price:     product.Price,
	}, nil
}
