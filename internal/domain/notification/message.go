package notification

import (
	"errors"
	"time"
	"unicode/utf8"
)

// MaxMessageLength is the provider's limit for a text message body, in characters.
const MaxMessageLength = 4096

// ErrEmptyMessage is returned when a message body has no content
var ErrEmptyMessage = errors.New("notification: message body is empty")

// ErrMessageTooLong is returned when a body exceeds MaxMessageLength
var ErrMessageTooLong = errors.New("notification: message body exceeds provider limit")

// RenderedMessage is a composed message ready to send. It is immutable once built.
type RenderedMessage struct {
	to        string
	body      string
	locale    Locale
	truncated bool
}

// NewRenderedMessage validates and builds a RenderedMessage
func NewRenderedMessage(to, body string, locale Locale, truncated bool) (RenderedMessage, error) {
	if body == "" {
		return RenderedMessage{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > MaxMessageLength {
		return RenderedMessage{}, ErrMessageTooLong
	}
	return RenderedMessage{to: to, body: body, locale: locale, truncated: truncated}, nil
}

// To returns the normalized destination phone
func (m RenderedMessage) To() string { return m.to }

// Body returns the message text
func (m RenderedMessage) Body() string { return m.body }

// Locale returns the dictionary the body was rendered with
func (m RenderedMessage) Locale() Locale { return m.locale }

// Truncated reports whether line items were dropped to fit the length limit
func (m RenderedMessage) Truncated() bool { return m.truncated }

// DispatchResult is the outcome of one send attempt
type DispatchResult struct {
	Success           bool
	ProviderMessageID string
	SyntheticID       string
	Err               error
	SentAt            time.Time
}

// NewProviderResult is a successful live send
func NewProviderResult(messageID string) DispatchResult {
	return DispatchResult{Success: true, ProviderMessageID: messageID, SentAt: time.Now()}
}

// NewSyntheticResult is a successful send in test mode, where nothing left the process
func NewSyntheticResult(id string) DispatchResult {
	return DispatchResult{Success: true, SyntheticID: id, SentAt: time.Now()}
}

// NewFailedResult is a send that did not go through
func NewFailedResult(err error) DispatchResult {
	return DispatchResult{Success: false, Err: err, SentAt: time.Now()}
}

// MessageID returns whichever id the result carries
func (r DispatchResult) MessageID() string {
	if r.ProviderMessageID != "" {
		return r.ProviderMessageID
	}
	return r.SyntheticID
}

// IsTestMode reports whether the result came from the test-mode sender
func (r DispatchResult) IsTestMode() bool {
	return r.SyntheticID != ""
}

// ErrorMessage returns the failure cause as text, or empty on success
func (r DispatchResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
