package notification

import (
	"crypto/subtle"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
)

const subscribeMode = "subscribe"

// ErrVerificationFailed is returned for any rejected handshake
var ErrVerificationFailed = shared.NewDomainError(shared.CodeForbidden, "Webhook verification failed")

// WebhookVerifier answers the provider's subscription handshake
type WebhookVerifier struct {
	token string
}

// NewWebhookVerifier creates a verifier for the configured token. An empty
// token rejects every handshake.
func NewWebhookVerifier(token string) *WebhookVerifier {
	return &WebhookVerifier{token: token}
}

// Verify returns the challenge to echo when mode is "subscribe" and the token
// matches the configured one.
func (v *WebhookVerifier) Verify(mode, token, challenge string) (string, error) {
	if v.token == "" || mode != subscribeMode {
		return "", ErrVerificationFailed
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(v.token)) != 1 {
		return "", ErrVerificationFailed
	}
	return challenge, nil
}
