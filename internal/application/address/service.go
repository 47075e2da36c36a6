package address

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/address"
	"go.uber.org/zap"
)

// AddressRequest is the body of create and update calls
type AddressRequest struct {
	Label      string `json:"label" binding:"max=50"`
	Recipient  string `json:"recipient" binding:"required,max=200"`
	Phone      string `json:"phone" binding:"max=50"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
	IsDefault  bool   `json:"is_default"`
}

func (r AddressRequest) fields() address.Fields {
	return address.Fields{
		Label:      r.Label,
		Recipient:  r.Recipient,
		Phone:      r.Phone,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

// AddressResponse is an address as returned to its owner
type AddressResponse struct {
	ID         uuid.UUID `json:"id"`
	Label      string    `json:"label,omitempty"`
	Recipient  string    `json:"recipient"`
	Phone      string    `json:"phone,omitempty"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state,omitempty"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToResponse converts a domain address
func ToResponse(a *address.Address) AddressResponse {
	return AddressResponse{
		ID:         a.ID,
		Label:      a.Label,
		Recipient:  a.Recipient,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt,
	}
}

// Service manages a user's address book
type Service struct {
	repo   address.Repository
	logger *zap.Logger
}

// NewService creates a new address service
func NewService(repo address.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// List returns the user's addresses, default first
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]AddressResponse, error) {
	rows, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AddressResponse, len(rows))
	for i := range rows {
		out[i] = ToResponse(&rows[i])
	}
	return out, nil
}

// Get returns one of the user's addresses
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*AddressResponse, error) {
	a, err := s.repo.FindForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(a)
	return &resp, nil
}

// Create adds an address. The first address of a user becomes the default.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	a, err := address.New(userID, req.fields())
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	first := count == 0
	a.IsDefault = first

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	if req.IsDefault && !first {
		if err := s.repo.SetDefault(ctx, userID, a.ID); err != nil {
			return nil, err
		}
		a.IsDefault = true
	}

	s.logger.Debug("Address created", zap.String("user_id", userID.String()), zap.String("address_id", a.ID.String()))
	resp := ToResponse(a)
	return &resp, nil
}

// Update replaces the fields of an address
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	a, err := s.repo.FindForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := a.Update(req.fields()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	if req.IsDefault && !a.IsDefault {
		if err := s.repo.SetDefault(ctx, userID, a.ID); err != nil {
			return nil, err
		}
		a.IsDefault = true
	}
	resp := ToResponse(a)
	return &resp, nil
}

// Delete removes an address. Deleting the default promotes the most recent remaining one.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	a, err := s.repo.FindForUser(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if a.IsDefault {
		if err := s.repo.PromoteLatest(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

// SetDefault makes id the user's only default address
func (s *Service) SetDefault(ctx context.Context, userID, id uuid.UUID) (*AddressResponse, error) {
	a, err := s.repo.FindForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !a.IsDefault {
		if err := s.repo.SetDefault(ctx, userID, id); err != nil {
			return nil, err
		}
		a.IsDefault = true
	}
	resp := ToResponse(a)
	return &resp, nil
}

// Resolve loads an address of the user for use as a shipping snapshot
func (s *Service) Resolve(ctx context.Context, userID, id uuid.UUID) (*address.Address, error) {
	return s.repo.FindForUser(ctx, userID, id)
}
