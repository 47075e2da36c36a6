package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	appfavorites "github.com/storefront/backend/internal/application/favorites"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// URLResolver turns stored avatar references into URLs
type URLResolver interface {
	ResolveURL(ref string) string
}

// CartMerger folds guest carts into user carts and clears carts on logout
type CartMerger interface {
	MergeGuestCart(ctx context.Context, guest, user shared.OwnerKey) (int, error)
	Clear(ctx context.Context, owner shared.OwnerKey) error
}

// FavoritesSyncer copies a local favorites list into the favorites table
type FavoritesSyncer interface {
	Sync(ctx context.Context, userID uuid.UUID, localOwner shared.OwnerKey) (*appfavorites.SyncResponse, error)
}

// LoginMetrics records login outcomes
type LoginMetrics interface {
	RecordLogin(ctx context.Context, outcome string)
}

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// AuthService handles registration, login, token rotation and logout
type AuthService struct {
	users     identity.UserRepository
	profiles  identity.ProfileRepository
	resolver  *SessionResolver
	policy    identity.RolePolicy
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	carts     CartMerger
	favorites FavoritesSyncer
	urls      URLResolver
	metrics   LoginMetrics
	logger    *zap.Logger
}

// AuthDeps groups the collaborators of AuthService. Carts, Favorites and
// Metrics are optional.
type AuthDeps struct {
	Users     identity.UserRepository
	Profiles  identity.ProfileRepository
	Resolver  *SessionResolver
	Policy    identity.RolePolicy
	JWT       *auth.JWTService
	Blacklist auth.TokenBlacklist
	Carts     CartMerger
	Favorites FavoritesSyncer
	URLs      URLResolver
	Metrics   LoginMetrics
	Logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(d AuthDeps) *AuthService {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     d.Users,
		profiles:  d.Profiles,
		resolver:  d.Resolver,
		policy:    d.Policy,
		jwt:       d.JWT,
		blacklist: d.Blacklist,
		carts:     d.Carts,
		favorites: d.Favorites,
		urls:      d.URLs,
		metrics:   d.Metrics,
		logger:    logger,
	}
}

// Register creates the user and its profile, then signs the user in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	user, err := identity.NewUser(req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "An account with this email already exists")
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	profile, err := identity.NewProfile(user, req.FullName, s.policy.Derive(user, nil))
	if err != nil {
		return nil, err
	}
	if err := s.profiles.Create(ctx, profile); err != nil && !errors.Is(err, shared.ErrAlreadyExists) {
		// resolution synthesises the row later
		s.logger.Error("Failed to create profile at registration",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.signIn(ctx, user, req.GuestID, req.IP)
}

// Login verifies credentials, issues tokens and folds in guest data
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.recordLogin(ctx, "failure")
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		s.recordLogin(ctx, "failure")
		return nil, errInvalidCredentials
	}
	if !user.CanLogin() {
		s.recordLogin(ctx, "disabled")
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "This account has been disabled")
	}

	user.RecordLoginSuccess(req.IP)
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	resp, err := s.signIn(ctx, user, req.GuestID, req.IP)
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, "success")
	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return resp, nil
}

func (s *AuthService) signIn(ctx context.Context, user *identity.User, guestID, _ string) (*AuthResponse, error) {
	pair, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, shared.WrapDomainError("TOKEN_ERROR", "Failed to generate authentication tokens", err)
	}

	// a stale entry may predate a status or profile change
	s.resolver.Invalidate(ctx, user.ID)
	session, err := s.resolver.Resolve(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp := &AuthResponse{Token: pair, Session: ToSessionResponse(session, s.urls)}
	if guestID != "" {
		resp.MergedCartLines, resp.SyncedFavorites = s.adoptGuestData(ctx, user.ID, shared.GuestOwnerFor(guestID))
	}
	return resp, nil
}

// adoptGuestData is best effort; sign-in never fails on it
func (s *AuthService) adoptGuestData(ctx context.Context, userID uuid.UUID, guest shared.OwnerKey) (int, int64) {
	var merged int
	var synced int64
	if s.carts != nil {
		n, err := s.carts.MergeGuestCart(ctx, guest, shared.UserOwner(userID))
		if err != nil {
			s.logger.Warn("Guest cart merge failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
		merged = n
	}
	if s.favorites != nil {
		res, err := s.favorites.Sync(ctx, userID, guest)
		if err != nil {
			s.logger.Warn("Guest favorites sync failed", zap.String("user_id", userID.String()), zap.Error(err))
		} else if res != nil {
			synced = res.Added
		}
	}
	return merged, synced
}

// Refresh rotates a refresh token into a new pair
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, tokenError(auth.ErrInvalidClaims)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, tokenError(auth.ErrInvalidToken)
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "This account has been disabled")
	}

	pair, _, err := s.jwt.RefreshTokenPair(req.RefreshToken, user.Email)
	if err != nil {
		return nil, tokenError(err)
	}
	// single use: the old refresh token is revoked
	if claims.ID != "" {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			s.logger.Warn("Failed to revoke rotated refresh token", zap.Error(err))
		}
	}

	session, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: pair, Session: ToSessionResponse(session, s.urls)}, nil
}

// Logout revokes the access token, forgets the cached session and clears the cart
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	userID, err := claims.GetUserUUID()
	if err != nil {
		return tokenError(auth.ErrInvalidClaims)
	}
	if claims.ID != "" {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			return shared.WrapDomainError("LOGOUT_FAILED", "Failed to revoke token", err)
		}
	}
	s.resolver.Invalidate(ctx, userID)
	if s.carts != nil {
		if err := s.carts.Clear(ctx, shared.UserOwner(userID)); err != nil {
			s.logger.Warn("Failed to clear cart on logout", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	s.logger.Info("User logged out", zap.String("user_id", userID.String()))
	return nil
}

// Me returns the caller's resolved session
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*SessionResponse, error) {
	session, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToSessionResponse(session, s.urls), nil
}

// ChangePassword replaces the password and revokes every earlier token
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), s.jwt.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke tokens after password change", zap.String("user_id", userID.String()), zap.Error(err))
	}
	s.logger.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

// checkRevoked rejects tokens revoked individually or by a user-wide invalidation
func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if claims.ID != "" {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return err
		}
		if revoked {
			return tokenError(auth.ErrTokenBlacklisted)
		}
	}
	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		return err
	}
	if invalidated {
		return tokenError(auth.ErrTokenBlacklisted)
	}
	return nil
}

func (s *AuthService) recordLogin(ctx context.Context, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(ctx, outcome)
	}
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	}
}
