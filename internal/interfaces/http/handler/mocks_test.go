package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	addressapp "github.com/storefront/backend/internal/application/address"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/application/dashboard"
	favoritesapp "github.com/storefront/backend/internal/application/favorites"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/application/media"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/mock"
)

// getOr returns the first mock return value typed, or the zero value when nil
func getOr[T any](args mock.Arguments, i int) T {
	var zero T
	if v := args.Get(i); v != nil {
		return v.(T)
	}
	return zero
}

type MockProductService struct{ mock.Mock }

func (m *MockProductService) List(ctx context.Context, f catalogapp.ProductListFilter) ([]catalogapp.ProductListResponse, int64, error) {
	args := m.Called(ctx, f)
	return getOr[[]catalogapp.ProductListResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductService) AdminList(ctx context.Context, f catalogapp.ProductListFilter) ([]catalogapp.ProductListResponse, int64, error) {
	args := m.Called(ctx, f)
	return getOr[[]catalogapp.ProductListResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id)
	return getOr[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *MockProductService) GetBySlug(ctx context.Context, slug string) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, slug)
	return getOr[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *MockProductService) AdminGet(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id)
	return getOr[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *MockProductService) ListFeatured(ctx context.Context, limit int) ([]catalogapp.ProductListResponse, error) {
	args := m.Called(ctx, limit)
	return getOr[[]catalogapp.ProductListResponse](args, 0), args.Error(1)
}

func (m *MockProductService) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return getOr[[]string](args, 0), args.Error(1)
}

func (m *MockProductService) ListBrands(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return getOr[[]string](args, 0), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, req)
	return getOr[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, req)
	return getOr[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) SetFeatured(ctx context.Context, id uuid.UUID, v bool) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, v)
	return getOr[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *MockProductService) SetActive(ctx context.Context, id uuid.UUID, v bool) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, v)
	return getOr[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *MockProductService) ApplyStock(ctx context.Context, id uuid.UUID, req catalogapp.StockRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, req)
	return getOr[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *MockProductService) RequestImageUpload(ctx context.Context, id uuid.UUID, req media.UploadRequest) (*media.UploadTicket, error) {
	args := m.Called(ctx, id, req)
	return getOr[*media.UploadTicket](args, 0), args.Error(1)
}

func (m *MockProductService) AttachImage(ctx context.Context, id uuid.UUID, ref string) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, ref)
	return getOr[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *MockProductService) RemoveImage(ctx context.Context, id uuid.UUID, ref string) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, ref)
	return getOr[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

type MockCartService struct{ mock.Mock }

func (m *MockCartService) Get(ctx context.Context, owner shared.OwnerKey) (*cartapp.CartResponse, error) {
	args := m.Called(ctx, owner)
	return getOr[*cartapp.CartResponse](args, 0), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, owner shared.OwnerKey, req cartapp.AddItemRequest) (*cartapp.MutationResponse, error) {
	args := m.Called(ctx, owner, req)
	return getOr[*cartapp.MutationResponse](args, 0), args.Error(1)
}

func (m *MockCartService) UpdateItem(ctx context.Context, owner shared.OwnerKey, key cart.VariantKey, qty int) (*cartapp.MutationResponse, error) {
	args := m.Called(ctx, owner, key, qty)
	return getOr[*cartapp.MutationResponse](args, 0), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, owner shared.OwnerKey, key cart.VariantKey) (*cartapp.CartResponse, error) {
	args := m.Called(ctx, owner, key)
	return getOr[*cartapp.CartResponse](args, 0), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, owner shared.OwnerKey) error {
	return m.Called(ctx, owner).Error(0)
}

func (m *MockCartService) Refresh(ctx context.Context, owner shared.OwnerKey) (*cartapp.MutationResponse, error) {
	args := m.Called(ctx, owner)
	return getOr[*cartapp.MutationResponse](args, 0), args.Error(1)
}

type MockFavoritesService struct{ mock.Mock }

func (m *MockFavoritesService) ListLocal(ctx context.Context, owner shared.OwnerKey) ([]favoritesapp.FavoriteResponse, error) {
	args := m.Called(ctx, owner)
	return getOr[[]favoritesapp.FavoriteResponse](args, 0), args.Error(1)
}

func (m *MockFavoritesService) ToggleLocal(ctx context.Context, owner shared.OwnerKey, productID uuid.UUID) (*favoritesapp.ToggleResponse, error) {
	args := m.Called(ctx, owner, productID)
	return getOr[*favoritesapp.ToggleResponse](args, 0), args.Error(1)
}

func (m *MockFavoritesService) AddLocal(ctx context.Context, owner shared.OwnerKey, productID uuid.UUID) (*favoritesapp.ToggleResponse, error) {
	args := m.Called(ctx, owner, productID)
	return getOr[*favoritesapp.ToggleResponse](args, 0), args.Error(1)
}

func (m *MockFavoritesService) ContainsLocal(ctx context.Context, owner shared.OwnerKey, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, owner, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoritesService) ClearLocal(ctx context.Context, owner shared.OwnerKey) error {
	return m.Called(ctx, owner).Error(0)
}

func (m *MockFavoritesService) IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoritesService) RemoveLocal(ctx context.Context, owner shared.OwnerKey, productID uuid.UUID) error {
	return m.Called(ctx, owner, productID).Error(0)
}

func (m *MockFavoritesService) List(ctx context.Context, userID uuid.UUID) ([]favoritesapp.FavoriteResponse, error) {
	args := m.Called(ctx, userID)
	return getOr[[]favoritesapp.FavoriteResponse](args, 0), args.Error(1)
}

func (m *MockFavoritesService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *MockFavoritesService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *MockFavoritesService) Sync(ctx context.Context, userID uuid.UUID, local shared.OwnerKey) (*favoritesapp.SyncResponse, error) {
	args := m.Called(ctx, userID, local)
	return getOr[*favoritesapp.SyncResponse](args, 0), args.Error(1)
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, req identityapp.RegisterRequest) (*identityapp.AuthResponse, error) {
	args := m.Called(ctx, req)
	return getOr[*identityapp.AuthResponse](args, 0), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.AuthResponse, error) {
	args := m.Called(ctx, req)
	return getOr[*identityapp.AuthResponse](args, 0), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.AuthResponse, error) {
	args := m.Called(ctx, req)
	return getOr[*identityapp.AuthResponse](args, 0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	return m.Called(ctx, claims).Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, userID uuid.UUID) (*identityapp.SessionResponse, error) {
	args := m.Called(ctx, userID)
	return getOr[*identityapp.SessionResponse](args, 0), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req identityapp.ChangePasswordRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

type MockProfileService struct{ mock.Mock }

func (m *MockProfileService) Get(ctx context.Context, userID uuid.UUID) (*identityapp.ProfileResponse, error) {
	args := m.Called(ctx, userID)
	return getOr[*identityapp.ProfileResponse](args, 0), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, userID uuid.UUID, req identityapp.UpdateProfileRequest) (*identityapp.ProfileResponse, error) {
	args := m.Called(ctx, userID, req)
	return getOr[*identityapp.ProfileResponse](args, 0), args.Error(1)
}

func (m *MockProfileService) RequestAvatarUpload(ctx context.Context, userID uuid.UUID, req media.UploadRequest) (*media.UploadTicket, error) {
	args := m.Called(ctx, userID, req)
	return getOr[*media.UploadTicket](args, 0), args.Error(1)
}

type MockAddressService struct{ mock.Mock }

func (m *MockAddressService) List(ctx context.Context, userID uuid.UUID) ([]addressapp.AddressResponse, error) {
	args := m.Called(ctx, userID)
	return getOr[[]addressapp.AddressResponse](args, 0), args.Error(1)
}

func (m *MockAddressService) Create(ctx context.Context, userID uuid.UUID, req addressapp.AddressRequest) (*addressapp.AddressResponse, error) {
	args := m.Called(ctx, userID, req)
	return getOr[*addressapp.AddressResponse](args, 0), args.Error(1)
}

func (m *MockAddressService) Update(ctx context.Context, userID, id uuid.UUID, req addressapp.AddressRequest) (*addressapp.AddressResponse, error) {
	args := m.Called(ctx, userID, id, req)
	return getOr[*addressapp.AddressResponse](args, 0), args.Error(1)
}

func (m *MockAddressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockAddressService) SetDefault(ctx context.Context, userID, id uuid.UUID) (*addressapp.AddressResponse, error) {
	args := m.Called(ctx, userID, id)
	return getOr[*addressapp.AddressResponse](args, 0), args.Error(1)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) Checkout(ctx context.Context, userID uuid.UUID, req orderapp.CheckoutRequest) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, userID, req)
	return getOr[*orderapp.OrderResponse](args, 0), args.Error(1)
}

func (m *MockOrderService) ListMy(ctx context.Context, userID uuid.UUID, f orderapp.ListFilter) (*orderapp.ListResult, error) {
	args := m.Called(ctx, userID, f)
	return getOr[*orderapp.ListResult](args, 0), args.Error(1)
}

func (m *MockOrderService) GetMy(ctx context.Context, userID, id uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, userID, id)
	return getOr[*orderapp.OrderResponse](args, 0), args.Error(1)
}

func (m *MockOrderService) CancelMy(ctx context.Context, userID, id uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, userID, id)
	return getOr[*orderapp.OrderResponse](args, 0), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, f orderapp.ListFilter) (*orderapp.ListResult, error) {
	args := m.Called(ctx, f)
	return getOr[*orderapp.ListResult](args, 0), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id)
	return getOr[*orderapp.OrderResponse](args, 0), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req orderapp.UpdateStatusRequest) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	return getOr[*orderapp.OrderResponse](args, 0), args.Error(1)
}

type MockOrderFeed struct{ mock.Mock }

func (m *MockOrderFeed) ServeWS(w http.ResponseWriter, r *http.Request) error {
	return m.Called(w, r).Error(0)
}

type MockUserAdminService struct{ mock.Mock }

func (m *MockUserAdminService) List(ctx context.Context, f identityapp.UserListFilter) (*identityapp.UserListResult, error) {
	args := m.Called(ctx, f)
	return getOr[*identityapp.UserListResult](args, 0), args.Error(1)
}

func (m *MockUserAdminService) SetRole(ctx context.Context, actorID, targetID uuid.UUID, req identityapp.SetRoleRequest) (*identityapp.SessionResponse, error) {
	args := m.Called(ctx, actorID, targetID, req)
	return getOr[*identityapp.SessionResponse](args, 0), args.Error(1)
}

func (m *MockUserAdminService) SetStatus(ctx context.Context, actorID, targetID uuid.UUID, req identityapp.SetStatusRequest) error {
	return m.Called(ctx, actorID, targetID, req).Error(0)
}

type MockDashboardService struct{ mock.Mock }

func (m *MockDashboardService) Stats(ctx context.Context, now time.Time) (*dashboard.Stats, error) {
	args := m.Called(ctx, now)
	return getOr[*dashboard.Stats](args, 0), args.Error(1)
}

var (
	_ ProductService   = (*MockProductService)(nil)
	_ CartService      = (*MockCartService)(nil)
	_ FavoritesService = (*MockFavoritesService)(nil)
	_ AuthService      = (*MockAuthService)(nil)
	_ ProfileService   = (*MockProfileService)(nil)
	_ AddressService   = (*MockAddressService)(nil)
	_ OrderService     = (*MockOrderService)(nil)
	_ OrderFeed        = (*MockOrderFeed)(nil)
	_ UserAdminService = (*MockUserAdminService)(nil)
	_ DashboardService = (*MockDashboardService)(nil)
)
