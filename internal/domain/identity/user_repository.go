package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// UserRepository persists users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Count(ctx context.Context) (int64, error)
}

// ProfileRepository persists profiles
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// Create inserts the profile; an existing row for the user yields ErrAlreadyExists
	Create(ctx context.Context, profile *Profile) error
	Update(ctx context.Context, profile *Profile) error
	CountByRole(ctx context.Context, role Role) (int64, error)
}

// UserWithProfile is a row of the admin user listing
type UserWithProfile struct {
	User    User
	Profile *Profile
}

// UserDirectory lists users joined with profiles for the back-office
type UserDirectory interface {
	List(ctx context.Context, filter shared.Filter) ([]UserWithProfile, int64, error)
}
