package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/media"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AvatarPresigner issues avatar upload tickets and resolves stored keys
type AvatarPresigner interface {
	URLResolver
	Presign(ctx context.Context, prefix string, req media.UploadRequest) (*media.UploadTicket, error)
}

// ProfileService reads and edits the signed-in user's profile
type ProfileService struct {
	users     identity.UserRepository
	profiles  identity.ProfileRepository
	resolver  *SessionResolver
	presigner AvatarPresigner
	logger    *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	users identity.UserRepository,
	profiles identity.ProfileRepository,
	resolver *SessionResolver,
	presigner AvatarPresigner,
	logger *zap.Logger,
) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		users:     users,
		profiles:  profiles,
		resolver:  resolver,
		presigner: presigner,
		logger:    logger,
	}
}

// Get returns the profile, synthesising it through session resolution if missing
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	session, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(session.Email, profile, s.urls()), nil
}

// Update replaces the editable fields and drops the cached session
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileResponse, error) {
	session, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	avatar := req.AvatarURL
	if avatar != "" && avatar != profile.AvatarURL &&
		!media.IsAbsoluteURL(avatar) && !media.KeyWithin(avatar, media.AvatarDir(userID)) {
		return nil, shared.NewInvalidInputError("Avatar must be an uploaded avatar key or an absolute URL")
	}

	if err := profile.Update(req.FullName, req.Phone, avatar); err != nil {
		return nil, err
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	s.resolver.Invalidate(ctx, userID)

	s.logger.Info("Profile updated", zap.String("user_id", userID.String()))
	return toProfileResponse(session.Email, profile, s.urls()), nil
}

// RequestAvatarUpload returns an upload ticket under the user's avatar directory
func (s *ProfileService) RequestAvatarUpload(ctx context.Context, userID uuid.UUID, req media.UploadRequest) (*media.UploadTicket, error) {
	if s.presigner == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "File uploads are not configured")
	}
	return s.presigner.Presign(ctx, media.AvatarDir(userID), req)
}

func (s *ProfileService) urls() URLResolver {
	if s.presigner == nil {
		return nil
	}
	return s.presigner
}
