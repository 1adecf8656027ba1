package whatsapp

import (
	"errors"
	"strings"
	"time"
)

const (
	// DefaultAPIBaseURL is the versioned Graph API endpoint
	DefaultAPIBaseURL = "https://graph.facebook.com/v18.0"
	// DefaultTimeout bounds a single send call
	DefaultTimeout = 10 * time.Second

	maxResponseSize = 1 << 20
)

// Errors for WhatsApp configuration
var (
	ErrMissingAccessToken   = errors.New("whatsapp: access token is required")
	ErrMissingPhoneNumberID = errors.New("whatsapp: phone number ID is required")
)

// Config holds configuration for the WhatsApp Cloud API
type Config struct {
	// AccessToken is the bearer token of the business app
	AccessToken string
	// PhoneNumberID identifies the sending business number
	PhoneNumberID string
	// APIBaseURL is the versioned Graph API base URL
	APIBaseURL string
	// Timeout bounds each outbound request
	Timeout time.Duration
	// TestMode disables network I/O; sends return synthetic ids
	TestMode bool
}

// HasCredentials reports whether both the token and the phone number ID are set
func (c *Config) HasCredentials() bool {
	return strings.TrimSpace(c.AccessToken) != "" && strings.TrimSpace(c.PhoneNumberID) != ""
}

// Validate checks the configuration for live sending and fills defaults
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AccessToken) == "" {
		return ErrMissingAccessToken
	}
	if strings.TrimSpace(c.PhoneNumberID) == "" {
		return ErrMissingPhoneNumberID
	}
	c.applyDefaults()
	return nil
}

func (c *Config) applyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// MessagesURL returns the endpoint that accepts outbound messages
func (c *Config) MessagesURL() string {
	return c.APIBaseURL + "/" + c.PhoneNumberID + "/messages"
}
