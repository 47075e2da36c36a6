package identity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Role is the coarse authorization role stored on a profile
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// ParseRole returns the role for s, case-insensitively
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// Profile holds the display and authorization data joined to a user
type Profile struct {
	UserID    uuid.UUID
	FullName  string
	AvatarURL string
	Phone     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RolePolicy derives roles for users
type RolePolicy struct {
	adminEmails map[string]struct{}
}

// NewRolePolicy creates a policy granting admin to the given email allowlist
func NewRolePolicy(adminEmails []string) RolePolicy {
	set := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = NormalizeEmail(e); e != "" {
			set[e] = struct{}{}
		}
	}
	return RolePolicy{adminEmails: set}
}

// Derive resolves the effective role: a valid role stored on the profile wins,
// then the admin allowlist, then customer.
func (p RolePolicy) Derive(user *User, profile *Profile) Role {
	if profile != nil && profile.Role.IsValid() {
		return profile.Role
	}
	if user != nil {
		if _, ok := p.adminEmails[NormalizeEmail(user.Email)]; ok {
			return RoleAdmin
		}
	}
	return RoleCustomer
}

// SynthesizeProfile builds the default profile for a user who has none
func (p RolePolicy) SynthesizeProfile(user *User) *Profile {
	now := time.Now()
	return &Profile{
		UserID:    user.ID,
		FullName:  user.LocalPart(),
		Role:      p.Derive(user, nil),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewProfile creates a profile with an explicit full name
func NewProfile(user *User, fullName string, role Role) (*Profile, error) {
	profile := &Profile{
		UserID:    user.ID,
		Role:      role,
		CreatedAt: time.Now(),
	}
	if strings.TrimSpace(fullName) == "" {
		fullName = user.LocalPart()
	}
	if err := profile.Update(fullName, "", ""); err != nil {
		return nil, err
	}
	return profile, nil
}

// Update sets the editable profile fields
func (p *Profile) Update(fullName, phone, avatarURL string) error {
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)
	if utf8.RuneCountInString(fullName) > 200 {
		return shared.NewDomainError("INVALID_FULL_NAME", "Full name cannot exceed 200 characters")
	}
	if utf8.RuneCountInString(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if utf8.RuneCountInString(avatarURL) > 500 {
		return shared.NewDomainError("INVALID_AVATAR", "Avatar URL cannot exceed 500 characters")
	}

	p.FullName = fullName
	p.Phone = phone
	p.AvatarURL = avatarURL
	p.UpdatedAt = time.Now()
	return nil
}

// SetRole changes the stored role
func (p *Profile) SetRole(role Role) error {
	if !role.IsValid() {
		return shared.NewInvalidInputError("Unknown role")
	}
	p.Role = role
	p.UpdatedAt = time.Now()
	return nil
}

// Session is the resolved view of a signed-in user
type Session struct {
	UserID     uuid.UUID  `json:"user_id"`
	Email      string     `json:"email"`
	Status     UserStatus `json:"status"`
	FullName   string     `json:"full_name"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Role       Role       `json:"role"`
	ResolvedAt time.Time  `json:"resolved_at"`
}

// IsAdmin reports whether the session has the admin role
func (s *Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// NewSession combines a user and profile into a session
func NewSession(user *User, profile *Profile, role Role) *Session {
	s := &Session{
		UserID:     user.ID,
		Email:      user.Email,
		Status:     user.Status,
		Role:       role,
		ResolvedAt: time.Now(),
	}
	if profile != nil {
		s.FullName = profile.FullName
		s.AvatarURL = profile.AvatarURL
		s.Phone = profile.Phone
	}
	return s
}
