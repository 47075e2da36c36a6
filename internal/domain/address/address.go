package address

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Address is a saved shipping address of a user
type Address struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Label      string
	Recipient  string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	IsDefault  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Fields are the user-editable parts of an address
type Fields struct {
	Label      string
	Recipient  string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// New validates fields and creates an address for userID
func New(userID uuid.UUID, f Fields) (*Address, error) {
	a := &Address{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := a.Update(f); err != nil {
		return nil, err
	}
	return a, nil
}

// Update replaces the editable fields
func (a *Address) Update(f Fields) error {
	f = f.trimmed()
	if err := f.Validate(); err != nil {
		return err
	}
	a.Label = f.Label
	a.Recipient = f.Recipient
	a.Phone = f.Phone
	a.Line1 = f.Line1
	a.Line2 = f.Line2
	a.City = f.City
	a.State = f.State
	a.PostalCode = f.PostalCode
	a.Country = strings.ToUpper(f.Country)
	a.UpdatedAt = time.Now()
	return nil
}

// Fields returns the editable fields of the address
func (a *Address) Fields() Fields {
	return Fields{
		Label:      a.Label,
		Recipient:  a.Recipient,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// Validate checks required fields and lengths
func (f Fields) Validate() error {
	f = f.trimmed()
	required := []struct{ name, value string }{
		{"recipient", f.Recipient},
		{"line1", f.Line1},
		{"city", f.City},
		{"postal_code", f.PostalCode},
		{"country", f.Country},
	}
	for _, r := range required {
		if r.value == "" {
			return shared.NewInvalidInputError("Address " + r.name + " is required")
		}
	}
	if utf8.RuneCountInString(f.Line1) > 200 || utf8.RuneCountInString(f.Line2) > 200 {
		return shared.NewInvalidInputError("Address lines cannot exceed 200 characters")
	}
	if len(f.Country) != 2 {
		return shared.NewInvalidInputError("Country must be a two-letter ISO code")
	}
	if utf8.RuneCountInString(f.PostalCode) > 20 || utf8.RuneCountInString(f.Phone) > 50 || utf8.RuneCountInString(f.Label) > 50 {
		return shared.NewInvalidInputError("Address field too long")
	}
	return nil
}

func (f Fields) trimmed() Fields {
	return Fields{
		Label:      strings.TrimSpace(f.Label),
		Recipient:  strings.TrimSpace(f.Recipient),
		Phone:      strings.TrimSpace(f.Phone),
		Line1:      strings.TrimSpace(f.Line1),
		Line2:      strings.TrimSpace(f.Line2),
		City:       strings.TrimSpace(f.City),
		State:      strings.TrimSpace(f.State),
		PostalCode: strings.TrimSpace(f.PostalCode),
		Country:    strings.TrimSpace(f.Country),
	}
}

// Repository persists addresses
type Repository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Address, error)
	// FindForUser loads an address owned by userID; other users' addresses are NOT_FOUND
	FindForUser(ctx context.Context, userID, id uuid.UUID) (*Address, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// SetDefault marks id as the only default address of userID
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
	// PromoteLatest makes the most recently created address the default
	PromoteLatest(ctx context.Context, userID uuid.UUID) error
}
