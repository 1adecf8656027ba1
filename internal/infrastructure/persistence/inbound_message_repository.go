package persistence

import (
	"context"
	"fmt"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInboundMessageRepository stores inbound WhatsApp messages
type GormInboundMessageRepository struct {
	db *gorm.DB
}

// NewGormInboundMessageRepository creates a new GormInboundMessageRepository
func NewGormInboundMessageRepository(db *gorm.DB) *GormInboundMessageRepository {
	return &GormInboundMessageRepository{db: db}
}

// Save inserts the message unless one with the same provider id exists
func (r *GormInboundMessageRepository) Save(ctx context.Context, msg *notification.InboundMessage) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_message_id"}},
			DoNothing: true,
		}).
		Create(models.InboundMessageModelFromDomain(msg))
	if result.Error != nil {
		return false, fmt.Errorf("save inbound message %s: %w", msg.ProviderMessageID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

var _ notification.InboundMessageRepository = (*GormInboundMessageRepository)(nil)
