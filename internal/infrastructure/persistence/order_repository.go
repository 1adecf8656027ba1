// Package persistence implements the notification repositories on GORM.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements notification.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*notification.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find order %s: %w", id, err)
	}
	return model.ToDomain(), nil
}

// FindRecentByCustomerPhone returns the newest orders placed from phone
func (r *GormOrderRepository) FindRecentByCustomerPhone(ctx context.Context, phone string, limit int) ([]notification.Order, error) {
	if limit <= 0 {
		limit = 1
	}
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("customer_phone = ?", phone).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find orders by phone: %w", err)
	}

	orders := make([]notification.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// UpdateStatus writes the order's status guarded by its version
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, order *notification.Order) error {
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]any{
			"status":     string(order.Status),
			"version":    order.Version + 1,
			"updated_at": order.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update order %s status: %w", order.ID, result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("check order %s: %w", order.ID, err)
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}

	order.IncrementVersion()
	return nil
}

// Create inserts an order. The storefront owns order creation; this exists
// for local development seeding and tests.
func (r *GormOrderRepository) Create(ctx context.Context, order *notification.Order) error {
	if order.Version == 0 {
		order.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(models.OrderModelFromDomain(order)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("create order %s: %w", order.ID, err)
	}
	return nil
}

var _ notification.OrderRepository = (*GormOrderRepository)(nil)
