package whatsapp

import (
	"testing"
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "WABA_ID",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "metadata": {"display_phone_number": "15550001111", "phone_number_id": "1234567890"},
        "contacts": [{"profile": {"name": "Ana"}, "wa_id": "525512345678"}],
        "messages": [
          {"from": "525512345678", "id": "wamid.IN1", "timestamp": "1714564800", "type": "text", "text": {"body": "status"}},
          {"from": "525512345678", "id": "wamid.IN2", "timestamp": "1714564801", "type": "button", "button": {"text": "Ayuda"}}
        ],
        "statuses": [
          {"id": "wamid.OUT1", "status": "delivered", "timestamp": "1714564802", "recipient_id": "525512345678"},
          {"id": "wamid.OUT2", "status": "failed", "timestamp": "1714564803", "recipient_id": "525512345678",
           "errors": [{"code": 131026, "title": "Message undeliverable", "message": "Receiver is incapable of receiving this message"}]}
        ]
      }
    }]
  }]
}`

func TestDecodeWebhook(t *testing.T) {
	decoded, err := DecodeWebhook([]byte(samplePayload))
	require.NoError(t, err)

	assert.Equal(t, "whatsapp_business_account", decoded.Object)
	assert.Zero(t, decoded.Skipped)
	require.Len(t, decoded.Events, 4)

	first, ok := decoded.Events[0].(*notification.ReceivedMessage)
	require.True(t, ok)
	assert.Equal(t, "wamid.IN1", first.ProviderMessageID)
	assert.Equal(t, "525512345678", first.From)
	assert.Equal(t, "Ana", first.ContactName)
	assert.Equal(t, "status", first.Text)
	assert.Equal(t, time.Unix(1714564800, 0).UTC(), first.Timestamp)

	second, ok := decoded.Events[1].(*notification.ReceivedMessage)
	require.True(t, ok)
	assert.Equal(t, "Ayuda", second.Text)

	delivered, ok := decoded.Events[2].(*notification.StatusUpdate)
	require.True(t, ok)
	assert.Equal(t, notification.DeliveryStatusDelivered, delivered.Status)
	assert.Nil(t, delivered.Error)

	failed, ok := decoded.Events[3].(*notification.StatusUpdate)
	require.True(t, ok)
	assert.Equal(t, notification.DeliveryStatusFailed, failed.Status)
	require.NotNil(t, failed.Error)
	assert.Equal(t, 131026, failed.Error.Code)
}

func TestDecodeWebhook_EdgeCases(t *testing.T) {
	t.Run("missing entry is empty", func(t *testing.T) {
		decoded, err := DecodeWebhook([]byte(`{"object":"whatsapp_business_account"}`))
		require.NoError(t, err)
		assert.Empty(t, decoded.Events)
	})

	t.Run("unrelated json is empty", func(t *testing.T) {
		decoded, err := DecodeWebhook([]byte(`{"hello":"world"}`))
		require.NoError(t, err)
		assert.Empty(t, decoded.Events)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := DecodeWebhook([]byte(`not json`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("json of other shapes is empty", func(t *testing.T) {
		for _, body := range []string{`[1,2,3]`, `"text"`, `42`, `null`, `{"entry":"x"}`, `{"entry":[{"changes":{"value":1}}]}`} {
			decoded, err := DecodeWebhook([]byte(body))
			require.NoError(t, err, body)
			assert.Empty(t, decoded.Events, body)
		}
	})

	t.Run("numeric scalars are accepted", func(t *testing.T) {
		decoded, err := DecodeWebhook([]byte(`{"entry":[{"changes":[{"value":{
			"messages":[{"from":5213312345678,"id":"wamid.N1","timestamp":1714564800,"type":"text","text":{"body":"hola"}}],
			"statuses":[{"id":"wamid.N2","status":"failed","timestamp":1714564801,"recipient_id":5213312345678,
				"errors":[{"code":"131026","title":"Message undeliverable"}]}]
		}}]}]}`))
		require.NoError(t, err)
		assert.Zero(t, decoded.Skipped)
		require.Len(t, decoded.Events, 2)

		msg := decoded.Events[0].(*notification.ReceivedMessage)
		assert.Equal(t, "5213312345678", msg.From)
		assert.Equal(t, time.Unix(1714564800, 0).UTC(), msg.Timestamp)

		failed := decoded.Events[1].(*notification.StatusUpdate)
		assert.Equal(t, "5213312345678", failed.RecipientPhone)
		require.NotNil(t, failed.Error)
		assert.Equal(t, 131026, failed.Error.Code)
	})

	t.Run("drifted item does not drop the batch", func(t *testing.T) {
		decoded, err := DecodeWebhook([]byte(`{"entry":[{"changes":[{"value":{
			"messages":[{"from":"52","id":"wamid.A","text":"flat"},{"from":"52","id":"wamid.B","type":"text","text":{"body":"ok"}}],
			"statuses":["oops",{"id":"wamid.C","status":"read","errors":{"code":1}}]
		}}]},{"changes":"x"}]}`))
		require.NoError(t, err)
		assert.Equal(t, 2, decoded.Skipped)
		require.Len(t, decoded.Events, 2)
		assert.Equal(t, "wamid.B", decoded.Events[0].(*notification.ReceivedMessage).ProviderMessageID)
		read := decoded.Events[1].(*notification.StatusUpdate)
		assert.Equal(t, notification.DeliveryStatusRead, read.Status)
		assert.Nil(t, read.Error)
	})

	t.Run("invalid items skipped", func(t *testing.T) {
		decoded, err := DecodeWebhook([]byte(`{"entry":[{"changes":[{"value":{
			"messages":[{"from":"52","type":"text","text":{"body":"hi"}}],
			"statuses":[{"id":"wamid.X","status":"deleted"},{"id":"wamid.Y","status":"read"}]
		}}]}]}`))
		require.NoError(t, err)
		assert.Equal(t, 2, decoded.Skipped)
		require.Len(t, decoded.Events, 1)
		assert.Equal(t, notification.InboundStatusUpdate, decoded.Events[0].Kind())
	})

	t.Run("bad timestamp is zero", func(t *testing.T) {
		decoded, err := DecodeWebhook([]byte(`{"entry":[{"changes":[{"value":{
			"messages":[{"from":"52","id":"wamid.Z","timestamp":"soon","type":"image"}]
		}}]}]}`))
		require.NoError(t, err)
		require.Len(t, decoded.Events, 1)
		msg := decoded.Events[0].(*notification.ReceivedMessage)
		assert.True(t, msg.Timestamp.IsZero())
		assert.Equal(t, "", msg.Text)
		assert.Equal(t, "image", msg.Type)
	})
}
