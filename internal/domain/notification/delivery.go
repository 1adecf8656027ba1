package notification

import "time"

// transientErrorCodes are provider errors that clear on their own: rate
// limits and temporary unavailability. Anything else needs a person to look.
var transientErrorCodes = map[int]struct{}{
	1:      {},
	2:      {},
	4:      {},
	80007:  {},
	130429: {},
	131000: {},
	131016: {},
	131048: {},
	131056: {},
	133004: {},
}

// IsTransientErrorCode reports whether a provider error code is expected to
// resolve without intervention.
func IsTransientErrorCode(code int) bool {
	_, ok := transientErrorCodes[code]
	return ok
}

// DeliveryRecord tracks the delivery state of one outbound message
type DeliveryRecord struct {
	ProviderMessageID          string
	OrderID                    string
	Recipient                  string
	Status                     DeliveryStatus
	SentAt                     *time.Time
	DeliveredAt                *time.Time
	ReadAt                     *time.Time
	FailedAt                   *time.Time
	ErrorCode                  int
	ErrorTitle                 string
	ErrorMessage               string
	RequiresManualIntervention bool
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// NewDeliveryRecord creates a record with no observed status yet
func NewDeliveryRecord(providerMessageID, orderID, recipient string) *DeliveryRecord {
	now := time.Now()
	return &DeliveryRecord{
		ProviderMessageID: providerMessageID,
		OrderID:           orderID,
		Recipient:         recipient,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Apply folds a status update into the record and reports whether anything
// changed. Statuses only move forward (sent, delivered, read); failed is
// accepted only before delivery and is final. Replaying an update is a no-op.
func (r *DeliveryRecord) Apply(u StatusUpdate) bool {
	if !u.Status.IsValid() || r.Status == DeliveryStatusFailed {
		return false
	}

	at := u.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	if u.Status == DeliveryStatusFailed {
		if r.Status.rank() > DeliveryStatusSent.rank() {
			return false
		}
		r.Status = DeliveryStatusFailed
		r.FailedAt = &at
		r.RequiresManualIntervention = true
		if u.Error != nil {
			r.ErrorCode = u.Error.Code
			r.ErrorTitle = u.Error.Title
			r.ErrorMessage = u.Error.Message
			r.RequiresManualIntervention = !IsTransientErrorCode(u.Error.Code)
		}
		r.touch(u)
		return true
	}

	if u.Status.rank() <= r.Status.rank() {
		return false
	}
	r.Status = u.Status
	switch u.Status {
	case DeliveryStatusSent:
		r.SentAt = &at
	case DeliveryStatusDelivered:
		r.DeliveredAt = &at
	case DeliveryStatusRead:
		r.ReadAt = &at
	}
	r.touch(u)
	return true
}

func (r *DeliveryRecord) touch(u StatusUpdate) {
	if r.Recipient == "" {
		r.Recipient = u.RecipientPhone
	}
	r.UpdatedAt = time.Now()
}
