package whatsapp

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
)

// ErrMalformedPayload is returned when a webhook body is not JSON at all
var ErrMalformedPayload = errors.New("whatsapp: malformed webhook payload")

// WebhookPayload is the body of a Cloud API webhook callback. Nested
// collections stay raw so one drifted item cannot fail the whole batch.
type WebhookPayload struct {
	Object Scalar          `json:"object"`
	Entry  json.RawMessage `json:"entry"`
}

// WebhookEntry groups the changes for one business account
type WebhookEntry struct {
	ID      Scalar          `json:"id"`
	Changes json.RawMessage `json:"changes"`
}

// WebhookChange is one change notification
type WebhookChange struct {
	Field Scalar          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// WebhookValue carries inbound messages and delivery statuses
type WebhookValue struct {
	MessagingProduct Scalar          `json:"messaging_product"`
	Contacts         json.RawMessage `json:"contacts"`
	Messages         json.RawMessage `json:"messages"`
	Statuses         json.RawMessage `json:"statuses"`
}

// WebhookContact is the sender profile attached to inbound messages
type WebhookContact struct {
	WaID    Scalar `json:"wa_id"`
	Profile struct {
		Name Scalar `json:"name"`
	} `json:"profile"`
}

// WebhookMessage is an inbound customer message
type WebhookMessage struct {
	From      Scalar `json:"from"`
	ID        Scalar `json:"id"`
	Timestamp Scalar `json:"timestamp"`
	Type      Scalar `json:"type"`
	Text      *struct {
		Body Scalar `json:"body"`
	} `json:"text,omitempty"`
	Button *struct {
		Text Scalar `json:"text"`
	} `json:"button,omitempty"`
	Interactive *struct {
		Type        Scalar `json:"type"`
		ButtonReply *struct {
			Title Scalar `json:"title"`
		} `json:"button_reply,omitempty"`
		ListReply *struct {
			Title Scalar `json:"title"`
		} `json:"list_reply,omitempty"`
	} `json:"interactive,omitempty"`
}

// WebhookStatus is a delivery receipt for an outbound message
type WebhookStatus struct {
	ID          Scalar          `json:"id"`
	Status      Scalar          `json:"status"`
	Timestamp   Scalar          `json:"timestamp"`
	RecipientID Scalar          `json:"recipient_id"`
	Errors      json.RawMessage `json:"errors"`
}

// WebhookStatusError explains a failed delivery
type WebhookStatusError struct {
	Code    Scalar `json:"code"`
	Title   Scalar `json:"title"`
	Message Scalar `json:"message"`
}

// Scalar is a string field that also accepts a JSON number. Any other JSON
// value decodes to the empty string.
type Scalar string

// UnmarshalJSON implements json.Unmarshaler
func (s *Scalar) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = Scalar(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = Scalar(num.String())
		return nil
	}
	*s = ""
	return nil
}

func (s Scalar) String() string {
	return string(s)
}

// Decoded is the result of decoding one webhook body
type Decoded struct {
	Object string
	Events []notification.InboundEvent
	// Skipped counts messages and statuses dropped for missing ids, unknown
	// statuses or a shape that could not be read.
	Skipped int
}

// DecodeWebhook turns a webhook body into inbound events. For each change
// value, messages come first in payload order, then statuses in payload
// order. Only a body that is not JSON is an error; JSON of any other shape
// decodes to whatever events can be read from it.
func DecodeWebhook(body []byte) (*Decoded, error) {
	if !json.Valid(body) {
		return nil, ErrMalformedPayload
	}

	out := &Decoded{}
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return out, nil
	}
	out.Object = payload.Object.String()

	for _, rawEntry := range rawItems(payload.Entry) {
		var entry WebhookEntry
		if json.Unmarshal(rawEntry, &entry) != nil {
			continue
		}
		for _, rawChange := range rawItems(entry.Changes) {
			var change WebhookChange
			if json.Unmarshal(rawChange, &change) != nil {
				continue
			}
			var value WebhookValue
			if json.Unmarshal(change.Value, &value) != nil {
				continue
			}
			out.decodeValue(value)
		}
	}
	return out, nil
}

func (d *Decoded) decodeValue(value WebhookValue) {
	var contacts []WebhookContact
	for _, raw := range rawItems(value.Contacts) {
		var c WebhookContact
		if json.Unmarshal(raw, &c) == nil {
			contacts = append(contacts, c)
		}
	}

	for _, raw := range rawItems(value.Messages) {
		var m WebhookMessage
		if err := json.Unmarshal(raw, &m); err != nil || m.ID == "" || m.From == "" {
			d.Skipped++
			continue
		}
		d.Events = append(d.Events, &notification.ReceivedMessage{
			ProviderMessageID: m.ID.String(),
			From:              m.From.String(),
			ContactName:       contactName(contacts, m.From.String()),
			Type:              m.Type.String(),
			Text:              messageText(m),
			Timestamp:         parseUnix(m.Timestamp.String()),
		})
	}

	for _, raw := range rawItems(value.Statuses) {
		var s WebhookStatus
		if err := json.Unmarshal(raw, &s); err != nil {
			d.Skipped++
			continue
		}
		status := notification.DeliveryStatus(s.Status)
		if s.ID == "" || !status.IsValid() {
			d.Skipped++
			continue
		}
		update := &notification.StatusUpdate{
			ProviderMessageID: s.ID.String(),
			Status:            status,
			Timestamp:         parseUnix(s.Timestamp.String()),
			RecipientPhone:    s.RecipientID.String(),
		}
		if errs := rawItems(s.Errors); len(errs) > 0 {
			var first WebhookStatusError
			_ = json.Unmarshal(errs[0], &first)
			code, _ := strconv.Atoi(first.Code.String())
			update.Error = &notification.DeliveryError{
				Code:    code,
				Title:   first.Title.String(),
				Message: first.Message.String(),
			}
		}
		d.Events = append(d.Events, update)
	}
}

// rawItems splits a JSON array into its elements. Anything that is not an
// array yields nothing.
func rawItems(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func messageText(m WebhookMessage) string {
	switch {
	case m.Text != nil:
		return m.Text.Body.String()
	case m.Button != nil:
		return m.Button.Text.String()
	case m.Interactive != nil && m.Interactive.ButtonReply != nil:
		return m.Interactive.ButtonReply.Title.String()
	case m.Interactive != nil && m.Interactive.ListReply != nil:
		return m.Interactive.ListReply.Title.String()
	}
	return ""
}

func contactName(contacts []WebhookContact, from string) string {
	for _, c := range contacts {
		if c.WaID.String() == from {
			return c.Profile.Name.String()
		}
	}
	if len(contacts) == 1 {
		return contacts[0].Profile.Name.String()
	}
	return ""
}

func parseUnix(ts string) time.Time {
	secs, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
