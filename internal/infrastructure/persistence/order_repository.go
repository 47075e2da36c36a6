package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID loads an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Where("id = ?", id))
}

// FindForUser loads an order owned by userID
func (r *GormOrderRepository) FindForUser(ctx context.Context, userID, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID))
}

func (r *GormOrderRepository) findOne(_ context.Context, query *gorm.DB) (*order.Order, error) {
	var model models.OrderModel
	if err := query.Preload("Items").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Order")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter).
		Order(orderClause(filter.OrderBy, filter.OrderDir, OrderSortFields, "created_at"))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.OrderModel
	if err := query.Preload("Items").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]order.Order, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter).Count(&count).Error
	return count, err
}

// Create inserts the order and its items
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	if err := r.db.WithContext(ctx).Create(models.OrderModelFromDomain(o)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Order number already in use")
		}
		return err
	}
	return nil
}

// UpdateStatus writes status, cancelled_at and version.
// The row must still be at the version the aggregate was loaded with.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]any{
			"status":       o.Status,
			"cancelled_at": o.CancelledAt,
			"version":      o.Version,
			"updated_at":   o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

type statusCount struct {
	Status order.Status
	Count  int64
	Amount decimal.Decimal
}

type periodTotals struct {
	Count  int64
	Amount decimal.Decimal
}

// Stats aggregates order counts and revenue. Cancelled orders never count as revenue.
func (r *GormOrderRepository) Stats(ctx context.Context, since time.Time) (*order.Stats, error) {
	var groups []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS amount").
		Group("status").
		Scan(&groups).Error; err != nil {
		return nil, err
	}

	stats := &order.Stats{
		ByStatus:     make(map[order.Status]int64, len(order.AllStatuses)),
		Revenue:      decimal.Zero,
		SinceRevenue: decimal.Zero,
	}
	for _, s := range order.AllStatuses {
		stats.ByStatus[s] = 0
	}
	for _, g := range groups {
		stats.ByStatus[g.Status] = g.Count
		stats.OrderCount += g.Count
		if g.Status != order.StatusCancelled {
			stats.Revenue = stats.Revenue.Add(g.Amount)
		}
	}

	var period periodTotals
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(CASE WHEN status <> ? THEN total ELSE 0 END), 0) AS amount", order.StatusCancelled).
		Where("created_at >= ?", since).
		Scan(&period).Error; err != nil {
		return nil, err
	}
	stats.SinceCount = period.Count
	stats.SinceRevenue = period.Amount
	return stats, nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("UPPER(order_number) LIKE ?", "%"+strings.ToUpper(search)+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "created_from":
			query = query.Where("created_at >= ?", value)
		case "created_to":
			query = query.Where("created_at < ?", value)
		}
	}
	return query
}

var _ order.Repository = (*GormOrderRepository)(nil)
