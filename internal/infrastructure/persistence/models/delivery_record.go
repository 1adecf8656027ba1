package models

import (
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
)

// DeliveryRecordModel tracks one outbound message, keyed by provider id
type DeliveryRecordModel struct {
	ProviderMessageID          string `gorm:"type:varchar(128);primaryKey"`
	OrderID                    string `gorm:"type:varchar(64);index"`
	Recipient                  string `gorm:"type:varchar(32)"`
	Status                     string `gorm:"type:varchar(16)"`
	SentAt                     *time.Time
	DeliveredAt                *time.Time
	ReadAt                     *time.Time
	FailedAt                   *time.Time
	ErrorCode                  int
	ErrorTitle                 string    `gorm:"type:varchar(255)"`
	ErrorMessage               string    `gorm:"type:text"`
	RequiresManualIntervention bool      `gorm:"not null;default:false;index"`
	CreatedAt                  time.Time `gorm:"not null"`
	UpdatedAt                  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeliveryRecordModel) TableName() string {
	return "message_deliveries"
}

// DeliveryRecordModelFromDomain converts a domain record to its model
func DeliveryRecordModelFromDomain(r *notification.DeliveryRecord) *DeliveryRecordModel {
	return &DeliveryRecordModel{
		ProviderMessageID:          r.ProviderMessageID,
		OrderID:                    r.OrderID,
		Recipient:                  r.Recipient,
		Status:                     string(r.Status),
		SentAt:                     r.SentAt,
		DeliveredAt:                r.DeliveredAt,
		ReadAt:                     r.ReadAt,
		FailedAt:                   r.FailedAt,
		ErrorCode:                  r.ErrorCode,
		ErrorTitle:                 r.ErrorTitle,
		ErrorMessage:               r.ErrorMessage,
		RequiresManualIntervention: r.RequiresManualIntervention,
		CreatedAt:                  r.CreatedAt,
		UpdatedAt:                  r.UpdatedAt,
	}
}

// ToDomain converts the model to a domain record
func (m *DeliveryRecordModel) ToDomain() *notification.DeliveryRecord {
	return &notification.DeliveryRecord{
		ProviderMessageID:          m.ProviderMessageID,
		OrderID:                    m.OrderID,
		Recipient:                  m.Recipient,
		Status:                     notification.DeliveryStatus(m.Status),
		SentAt:                     m.SentAt,
		DeliveredAt:                m.DeliveredAt,
		ReadAt:                     m.ReadAt,
		FailedAt:                   m.FailedAt,
		ErrorCode:                  m.ErrorCode,
		ErrorTitle:                 m.ErrorTitle,
		ErrorMessage:               m.ErrorMessage,
		RequiresManualIntervention: m.RequiresManualIntervention,
		CreatedAt:                  m.CreatedAt,
		UpdatedAt:                  m.UpdatedAt,
	}
}
