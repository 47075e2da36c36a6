package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserListResult is a page of the admin user listing
type UserListResult struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
}

// UserAdminService backs the back-office user management screens
type UserAdminService struct {
	users     identity.UserRepository
	profiles  identity.ProfileRepository
	directory identity.UserDirectory
	resolver  *SessionResolver
	policy    identity.RolePolicy
	blacklist auth.TokenBlacklist
	jwt       *auth.JWTService
	logger    *zap.Logger
}

// NewUserAdminService creates a new UserAdminService
func NewUserAdminService(
	users identity.UserRepository,
	profiles identity.ProfileRepository,
	directory identity.UserDirectory,
	resolver *SessionResolver,
	policy identity.RolePolicy,
	blacklist auth.TokenBlacklist,
	jwt *auth.JWTService,
	logger *zap.Logger,
) *UserAdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserAdminService{
		users:     users,
		profiles:  profiles,
		directory: directory,
		resolver:  resolver,
		policy:    policy,
		blacklist: blacklist,
		jwt:       jwt,
		logger:    logger,
	}
}

// List returns a page of users joined with their profiles
func (s *UserAdminService) List(ctx context.Context, f UserListFilter) (*UserListResult, error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = strings.TrimSpace(f.Search)
	filter.Filters = map[string]interface{}{}
	if f.Role != "" {
		filter.Filters["role"] = f.Role
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}

	rows, total, err := s.directory.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	users := make([]UserResponse, len(rows))
	for i, row := range rows {
		user := row.User
		users[i] = toUserResponse(row, s.policy.Derive(&user, row.Profile))
	}
	return &UserListResult{Users: users, Total: total}, nil
}

// SetRole stores a role on the target's profile. Admins cannot demote themselves.
func (s *UserAdminService) SetRole(ctx context.Context, actorID, targetID uuid.UUID, req SetRoleRequest) (*SessionResponse, error) {
	role, ok := identity.ParseRole(req.Role)
	if !ok {
		return nil, shared.NewInvalidInputError("Unknown role")
	}
	if actorID == targetID && role != identity.RoleAdmin {
		return nil, shared.NewDomainError(shared.CodeForbidden, "You cannot remove your own admin role")
	}

	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByUserID(ctx, targetID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		profile = s.policy.SynthesizeProfile(user)
		if err := profile.SetRole(role); err != nil {
			return nil, err
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := profile.SetRole(role); err != nil {
			return nil, err
		}
		if err := s.profiles.Update(ctx, profile); err != nil {
			return nil, err
		}
	}
	s.resolver.Invalidate(ctx, targetID)

	s.logger.Info("User role changed",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", targetID.String()),
		zap.String("role", string(role)),
	)
	return ToSessionResponse(identity.NewSession(user, profile, role), nil), nil
}

// SetStatus enables or disables an account. Disabling revokes the user's tokens.
func (s *UserAdminService) SetStatus(ctx context.Context, actorID, targetID uuid.UUID, req SetStatusRequest) error {
	status := identity.UserStatus(req.Status)
	if actorID == targetID && status != identity.UserStatusActive {
		return shared.NewDomainError(shared.CodeForbidden, "You cannot disable your own account")
	}

	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := user.SetStatus(status); err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.resolver.Invalidate(ctx, targetID)

	if status == identity.UserStatusDisabled {
		if err := s.blacklist.AddUserTokensToBlacklist(ctx, targetID.String(), s.jwt.GetRefreshTokenExpiration()); err != nil {
			s.logger.Error("Failed to revoke tokens of disabled user", zap.String("user_id", targetID.String()), zap.Error(err))
		}
	}

	s.logger.Info("User status changed",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", targetID.String()),
		zap.String("status", string(status)),
	)
	return nil
}
