package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		AccessToken:   "test-token",
		PhoneNumberID: "1234567890",
		APIBaseURL:    serverURL,
		Timeout:       time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestClient_SendText_Success(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/1234567890/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messaging_product":"whatsapp","contacts":[{"input":"525512345678","wa_id":"525512345678"}],"messages":[{"id":"wamid.HBgLNTI1"}]}`))
	}))
	defer server.Close()

	result := newTestClient(t, server.URL).SendText(context.Background(), "525512345678", "Hola")

	assert.True(t, result.Success)
	assert.Equal(t, "wamid.HBgLNTI1", result.ProviderMessageID)
	assert.Empty(t, result.SyntheticID)
	assert.NoError(t, result.Err)

	assert.Equal(t, "whatsapp", captured["messaging_product"])
	assert.Equal(t, "525512345678", captured["to"])
	assert.Equal(t, "text", captured["type"])
	assert.Equal(t, map[string]any{"body": "Hola"}, captured["text"])
}

func TestClient_SendText_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"(#131030) Recipient phone number not in allowed list","type":"OAuthException","code":131030,"fbtrace_id":"AbC"}}`))
	}))
	defer server.Close()

	result := newTestClient(t, server.URL).SendText(context.Background(), "525512345678", "Hola")

	assert.False(t, result.Success)
	var apiErr *APIError
	require.True(t, errors.As(result.Err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, 131030, apiErr.Code)
	assert.Equal(t, "AbC", apiErr.TraceID)
	assert.Contains(t, result.ErrorMessage(), "Recipient phone number not in allowed list")
}

func TestClient_SendText_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	result := newTestClient(t, server.URL).SendText(context.Background(), "525512345678", "Hola")

	assert.False(t, result.Success)
	var apiErr *APIError
	require.True(t, errors.As(result.Err, &apiErr))
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClient_SendText_MalformedSuccessBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "ok"},
		{"no messages", `{"messaging_product":"whatsapp","messages":[]}`},
		{"empty id", `{"messages":[{"id":""}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			result := newTestClient(t, server.URL).SendText(context.Background(), "525512345678", "Hola")

			assert.False(t, result.Success)
			assert.ErrorIs(t, result.Err, ErrMalformedResponse)
		})
	}
}

func TestClient_SendText_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(Config{
		AccessToken:   "t",
		PhoneNumberID: "1",
		APIBaseURL:    server.URL,
		Timeout:       50 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	result := client.SendText(context.Background(), "525512345678", "Hola")

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, ErrProviderUnavailable)
}

func TestClient_SendText_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	newTestClient(t, server.URL).SendText(context.Background(), "525512345678", "Hola")

	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_DoesNotLogBody(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{AccessToken: "t", PhoneNumberID: "1", APIBaseURL: server.URL}, zap.New(core))
	require.NoError(t, err)

	client.SendText(context.Background(), "525512345678", "secret order contents")

	for _, entry := range logs.All() {
		for _, f := range entry.Context {
			assert.NotContains(t, f.String, "secret order contents")
		}
		assert.NotContains(t, entry.Message, "secret order contents")
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{PhoneNumberID: "1"}, nil)
	assert.ErrorIs(t, err, ErrMissingAccessToken)

	_, err = NewClient(Config{AccessToken: "t"}, nil)
	assert.ErrorIs(t, err, ErrMissingPhoneNumberID)

	c, err := NewClient(Config{AccessToken: "t", PhoneNumberID: "99"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIBaseURL+"/99/messages", c.config.MessagesURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestNewSender_ModeSelection(t *testing.T) {
	s, err := NewSender(Config{TestMode: true}, nil)
	require.NoError(t, err)
	assert.True(t, s.IsTestMode())

	s, err = NewSender(Config{AccessToken: "t", PhoneNumberID: "1"}, nil)
	require.NoError(t, err)
	assert.False(t, s.IsTestMode())

	_, err = NewSender(Config{}, nil)
	assert.Error(t, err)
}

func TestTestSender_SendText(t *testing.T) {
	sender := NewTestSender(nil)
	sender.now = func() time.Time { return time.Unix(0, 1700000000123456789) }

	result := sender.SendText(context.Background(), "525512345678", "Hola")

	assert.True(t, result.Success)
	assert.True(t, result.IsTestMode())
	assert.Equal(t, "test_1700000000123456789", result.SyntheticID)
	assert.Empty(t, result.ProviderMessageID)
	assert.True(t, strings.HasPrefix(result.MessageID(), "test_"))
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "********5678", MaskPhone("525512345678"))
	assert.Equal(t, "123", MaskPhone("123"))
	assert.Equal(t, "", MaskPhone(""))
}
