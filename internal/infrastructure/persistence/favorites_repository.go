package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/favorites"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFavoritesRepository implements favorites.Repository using GORM
type GormFavoritesRepository struct {
	db *gorm.DB
}

// NewGormFavoritesRepository creates a new GormFavoritesRepository
func NewGormFavoritesRepository(db *gorm.DB) *GormFavoritesRepository {
	return &GormFavoritesRepository{db: db}
}

// FindByUser returns the user's favorites, newest first
func (r *GormFavoritesRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]favorites.Favorite, error) {
	var rows []models.FavoriteModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]favorites.Favorite, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Exists reports whether the pair is stored
func (r *GormFavoritesRepository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FavoriteModel{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// Add inserts the row; an existing pair is left untouched
func (r *GormFavoritesRepository) Add(ctx context.Context, fav *favorites.Favorite) error {
	row := models.FavoriteModel{
		ID:        fav.ID,
		UserID:    fav.UserID,
		ProductID: fav.ProductID,
		CreatedAt: fav.CreatedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

// AddMany inserts a row per product, skipping pairs that already exist
func (r *GormFavoritesRepository) AddMany(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	now := time.Now()
	rows := make([]models.FavoriteModel, len(productIDs))
	for i, pid := range productIDs {
		// stagger timestamps so list order follows input order
		rows[i] = models.FavoriteModel{
			ID:        uuid.New(),
			UserID:    userID,
			ProductID: pid,
			CreatedAt: now.Add(-time.Duration(i) * time.Millisecond),
		}
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	return result.RowsAffected, result.Error
}

// Remove deletes the pair if present
func (r *GormFavoritesRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.FavoriteModel{}).Error
}

var _ favorites.Repository = (*GormFavoritesRepository)(nil)
