package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// RegisterRequest creates an account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"max=200"`
	GuestID  string `json:"-"`
	IP       string `json:"-"`
}

// LoginRequest signs a user in. GuestID and IP come from the request context.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	GuestID  string `json:"-"`
	IP       string `json:"-"`
}

// RefreshRequest rotates a token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest changes the signed-in user's password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest replaces the editable profile fields
type UpdateProfileRequest struct {
	FullName  string `json:"full_name" binding:"max=200"`
	Phone     string `json:"phone" binding:"max=50"`
	AvatarURL string `json:"avatar_url" binding:"max=500"`
}

// SetRoleRequest changes a user's role
type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin customer"`
}

// SetStatusRequest enables or disables an account
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active disabled"`
}

// UserListFilter is the admin user listing query
type UserListFilter struct {
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=admin customer"`
	Status   string `form:"status" binding:"omitempty,oneof=active disabled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SessionResponse is the resolved session returned to clients
type SessionResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsAdmin   bool      `json:"is_admin"`
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	Token   *auth.TokenPair  `json:"token"`
	Session *SessionResponse `json:"session"`
	// MergedCartLines and SyncedFavorites report the guest data folded in at login
	MergedCartLines int   `json:"merged_cart_lines,omitempty"`
	SyncedFavorites int64 `json:"synced_favorites,omitempty"`
}

// ProfileResponse is the profile row of a user
type ProfileResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	AvatarURL string    `json:"avatar_url"`
	Role      string    `json:"role"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserResponse is a row of the admin user listing
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Status      string     `json:"status"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToSessionResponse converts a domain session; avatar references are resolved
func ToSessionResponse(s *identity.Session, urls URLResolver) *SessionResponse {
	return &SessionResponse{
		UserID:    s.UserID,
		Email:     s.Email,
		FullName:  s.FullName,
		AvatarURL: resolve(urls, s.AvatarURL),
		Phone:     s.Phone,
		Role:      string(s.Role),
		IsAdmin:   s.IsAdmin(),
	}
}

func toProfileResponse(email string, p *identity.Profile, urls URLResolver) *ProfileResponse {
	return &ProfileResponse{
		UserID:    p.UserID,
		Email:     email,
		FullName:  p.FullName,
		Phone:     p.Phone,
		AvatarURL: resolve(urls, p.AvatarURL),
		Role:      string(p.Role),
		UpdatedAt: p.UpdatedAt,
	}
}

func toUserResponse(row identity.UserWithProfile, role identity.Role) UserResponse {
	resp := UserResponse{
		ID:          row.User.ID,
		Email:       row.User.Email,
		Status:      string(row.User.Status),
		Role:        string(role),
		LastLoginAt: row.User.LastLoginAt,
		CreatedAt:   row.User.CreatedAt,
	}
	if row.Profile != nil {
		resp.FullName = row.Profile.FullName
	}
	return resp
}

func resolve(urls URLResolver, ref string) string {
	if urls == nil || ref == "" {
		return ref
	}
	return urls.ResolveURL(ref)
}
