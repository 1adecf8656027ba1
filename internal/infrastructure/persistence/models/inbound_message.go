package models

import (
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/google/uuid"
)

// InboundMessageModel is a customer message received through the webhook
type InboundMessageModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProviderMessageID string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	FromPhone         string    `gorm:"type:varchar(32);not null;index"`
	ContactName       string    `gorm:"type:varchar(200)"`
	MessageType       string    `gorm:"type:varchar(32);not null"`
	Body              string    `gorm:"type:text"`
	Intent            string    `gorm:"type:varchar(32);not null"`
	ReceivedAt        time.Time `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InboundMessageModel) TableName() string {
	return "whatsapp_inbound_messages"
}

// InboundMessageModelFromDomain converts a domain message to its model
func InboundMessageModelFromDomain(m *notification.InboundMessage) *InboundMessageModel {
	return &InboundMessageModel{
		ID:                uuid.New(),
		ProviderMessageID: m.ProviderMessageID,
		FromPhone:         m.From,
		ContactName:       m.ContactName,
		MessageType:       m.Type,
		Body:              m.Body,
		Intent:            string(m.Intent),
		ReceivedAt:        m.ReceivedAt,
	}
}

// ToDomain converts the model to a domain message
func (m *InboundMessageModel) ToDomain() *notification.InboundMessage {
	return &notification.InboundMessage{
		ProviderMessageID: m.ProviderMessageID,
		From:              m.FromPhone,
		ContactName:       m.ContactName,
		Type:              m.MessageType,
		Body:              m.Body,
		Intent:            notification.Intent(m.Intent),
		ReceivedAt:        m.ReceivedAt,
	}
}
