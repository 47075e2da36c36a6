package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SessionCache is the TTL cache holding resolved sessions
type SessionCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ResolverConfig tunes session resolution
type ResolverConfig struct {
	TTL        time.Duration // default 30s
	Retries    int           // extra user fetch attempts; default 2
	RetryDelay time.Duration // default 200ms
}

// DefaultResolverConfig returns the standard resolution settings
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{TTL: 30 * time.Second, Retries: 2, RetryDelay: 200 * time.Millisecond}
}

// SessionResolver turns a user id into a Session: cached user and profile
// data plus the derived role. Missing profile rows are synthesised and stored.
type SessionResolver struct {
	users    identity.UserRepository
	profiles identity.ProfileRepository
	cache    SessionCache
	policy   identity.RolePolicy
	cfg      ResolverConfig
	logger   *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewSessionResolver creates a resolver. Zero config fields take defaults;
// a negative Retries disables retrying.
func NewSessionResolver(
	users identity.UserRepository,
	profiles identity.ProfileRepository,
	cache SessionCache,
	policy identity.RolePolicy,
	cfg ResolverConfig,
	logger *zap.Logger,
) *SessionResolver {
	def := DefaultResolverConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.Retries == 0 {
		cfg.Retries = def.Retries
	} else if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionResolver{
		users:    users,
		profiles: profiles,
		cache:    cache,
		policy:   policy,
		cfg:      cfg,
		logger:   logger,
		sleep:    sleepCtx,
	}
}

func sessionKey(userID uuid.UUID) string {
	return "session:" + userID.String()
}

// Resolve returns the user's session, serving fresh cache entries directly
func (r *SessionResolver) Resolve(ctx context.Context, userID uuid.UUID) (*identity.Session, error) {
	var cached identity.Session
	hit, err := r.cache.Get(ctx, sessionKey(userID), &cached)
	if err != nil {
		r.logger.Warn("session cache read failed", zap.String("user_id", userID.String()), zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	user, err := r.fetchUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := r.loadOrCreateProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	session := identity.NewSession(user, profile, r.policy.Derive(user, profile))
	if err := r.cache.Set(ctx, sessionKey(userID), session, r.cfg.TTL); err != nil {
		r.logger.Warn("session cache write failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return session, nil
}

// Invalidate drops the cached session of the user
func (r *SessionResolver) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := r.cache.Delete(ctx, sessionKey(userID)); err != nil {
		r.logger.Warn("session cache invalidation failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// fetchUser retries transient failures a fixed number of times.
// NOT_FOUND is final.
func (r *SessionResolver) fetchUser(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.Retries; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, r.cfg.RetryDelay); err != nil {
				return nil, err
			}
		}
		user, err := r.users.FindByID(ctx, userID)
		if err == nil {
			return user, nil
		}
		if errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		lastErr = err
		r.logger.Warn("user fetch failed",
			zap.String("user_id", userID.String()),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, fmt.Errorf("fetch user %s: %w", userID, lastErr)
}

func (r *SessionResolver) loadOrCreateProfile(ctx context.Context, user *identity.User) (*identity.Profile, error) {
	profile, err := r.profiles.FindByUserID(ctx, user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	profile = r.policy.SynthesizeProfile(user)
	err = r.profiles.Create(ctx, profile)
	switch {
	case err == nil:
		r.logger.Info("synthesised missing profile",
			zap.String("user_id", user.ID.String()),
			zap.String("role", string(profile.Role)),
		)
		return profile, nil
	case errors.Is(err, shared.ErrAlreadyExists):
		// a concurrent resolve created it first
		return r.profiles.FindByUserID(ctx, user.ID)
	default:
		return nil, err
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
