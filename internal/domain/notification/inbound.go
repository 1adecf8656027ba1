package notification

import "time"

// InboundEventKind identifies the variant of an InboundEvent
type InboundEventKind string

const (
	InboundVerificationRequest InboundEventKind = "verification_request"
	InboundMessageReceived     InboundEventKind = "message_received"
	InboundStatusUpdate        InboundEventKind = "status_update"
)

// InboundEvent is one event decoded from a provider webhook call. The
// concrete type is one of *VerificationRequest, *ReceivedMessage or *StatusUpdate.
type InboundEvent interface {
	Kind() InboundEventKind
}

// VerificationRequest is the provider's subscription handshake
type VerificationRequest struct {
	Mode      string
	Token     string
	Challenge string
}

// Kind implements InboundEvent
func (*VerificationRequest) Kind() InboundEventKind { return InboundVerificationRequest }

// ReceivedMessage is a message a customer sent to the business number
type ReceivedMessage struct {
	ProviderMessageID string
	From              string
	ContactName       string
	Type              string
	Text              string
	Timestamp         time.Time
}

// Kind implements InboundEvent
func (*ReceivedMessage) Kind() InboundEventKind { return InboundMessageReceived }

// DeliveryStatus is the provider-reported state of an outbound message
type DeliveryStatus string

const (
	DeliveryStatusSent      DeliveryStatus = "sent"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusRead      DeliveryStatus = "read"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// IsValid checks if the status is one the provider sends
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusSent, DeliveryStatusDelivered, DeliveryStatusRead, DeliveryStatusFailed:
		return true
	}
	return false
}

// rank orders the non-failure statuses; unknown and empty rank lowest.
func (s DeliveryStatus) rank() int {
	switch s {
	case DeliveryStatusSent:
		return 1
	case DeliveryStatusDelivered:
		return 2
	case DeliveryStatusRead:
		return 3
	}
	return 0
}

// DeliveryError describes why the provider could not deliver a message
type DeliveryError struct {
	Code    int
	Title   string
	Message string
}

// StatusUpdate is a delivery receipt for a message previously sent
type StatusUpdate struct {
	ProviderMessageID string
	Status            DeliveryStatus
	Timestamp         time.Time
	RecipientPhone    string
	Error             *DeliveryError
}

// Kind implements InboundEvent
func (*StatusUpdate) Kind() InboundEventKind { return InboundStatusUpdate }
