package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/address"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAddressRepository implements address.Repository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByUser lists a user's addresses, default first then newest
func (r *GormAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]address.Address, error) {
	var rows []models.AddressModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]address.Address, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindForUser loads an address owned by userID
func (r *GormAddressRepository) FindForUser(ctx context.Context, userID, id uuid.UUID) (*address.Address, error) {
	var row models.AddressModel
	if err := r.db.WithContext(ctx).First(&row, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Address")
		}
		return nil, err
	}
	a := row.ToDomain()
	return &a, nil
}

// CountByUser counts a user's addresses
func (r *GormAddressRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AddressModel{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Create inserts an address
func (r *GormAddressRepository) Create(ctx context.Context, a *address.Address) error {
	return r.db.WithContext(ctx).Create(models.AddressModelFromDomain(a)).Error
}

// Update writes the editable columns of an address
func (r *GormAddressRepository) Update(ctx context.Context, a *address.Address) error {
	result := r.db.WithContext(ctx).Model(&models.AddressModel{}).
		Where("id = ? AND user_id = ?", a.ID, a.UserID).
		Select("label", "recipient", "phone", "line1", "line2", "city", "state", "postal_code", "country", "updated_at").
		Updates(models.AddressModelFromDomain(a))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Address")
	}
	return nil
}

// Delete removes an address owned by userID
func (r *GormAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AddressModel{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Address")
	}
	return nil
}

// SetDefault clears every default of the user and marks id, in one transaction
func (r *GormAddressRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AddressModel{}).
			Where("user_id = ? AND is_default = ?", userID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		result := tx.Model(&models.AddressModel{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("Address")
		}
		return nil
	})
}

// PromoteLatest makes the most recently created address the default.
// It is a no-op when the user has no addresses left.
func (r *GormAddressRepository) PromoteLatest(ctx context.Context, userID uuid.UUID) error {
	var latest models.AddressModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.SetDefault(ctx, userID, latest.ID)
}

var _ address.Repository = (*GormAddressRepository)(nil)
