package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDeliveryRecordRepository stores outbound delivery records
type GormDeliveryRecordRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRecordRepository creates a new GormDeliveryRecordRepository
func NewGormDeliveryRecordRepository(db *gorm.DB) *GormDeliveryRecordRepository {
	return &GormDeliveryRecordRepository{db: db}
}

// FindByProviderMessageID finds the record for a provider message id
func (r *GormDeliveryRecordRepository) FindByProviderMessageID(ctx context.Context, id string) (*notification.DeliveryRecord, error) {
	var model models.DeliveryRecordModel
	if err := r.db.WithContext(ctx).Where("provider_message_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find delivery %s: %w", id, err)
	}
	return model.ToDomain(), nil
}

// Save upserts the record. The creation time of an existing row is kept.
func (r *GormDeliveryRecordRepository) Save(ctx context.Context, record *notification.DeliveryRecord) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "provider_message_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"order_id", "recipient", "status",
				"sent_at", "delivered_at", "read_at", "failed_at",
				"error_code", "error_title", "error_message",
				"requires_manual_intervention", "updated_at",
			}),
		}).
		Create(models.DeliveryRecordModelFromDomain(record)).Error
	if err != nil {
		return fmt.Errorf("save delivery %s: %w", record.ProviderMessageID, err)
	}
	return nil
}

// FindRequiringIntervention lists failed deliveries that need a person,
// newest first.
func (r *GormDeliveryRecordRepository) FindRequiringIntervention(ctx context.Context, limit int) ([]notification.DeliveryRecord, error) {
	var rows []models.DeliveryRecordModel
	if err := r.db.WithContext(ctx).
		Where("requires_manual_intervention = ?", true).
		Order("updated_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find deliveries requiring intervention: %w", err)
	}
	out := make([]notification.DeliveryRecord, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

var _ notification.DeliveryRecordRepository = (*GormDeliveryRecordRepository)(nil)
