package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/templates"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/whatsapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type routerFixture struct {
	messages   *MockInboundMessageRepository
	orders     *MockOrderRepository
	deliveries *MockDeliveryRecordRepository
	sender     *MockSender
	store      *memoryStore
	router     *InboundRouter
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	f := &routerFixture{
		messages:   new(MockInboundMessageRepository),
		orders:     new(MockOrderRepository),
		deliveries: new(MockDeliveryRecordRepository),
		sender:     new(MockSender),
		store:      newMemoryStore(),
	}
	f.router = NewInboundRouter(InboundRouterDeps{
		Messages:      f.messages,
		Orders:        f.orders,
		Tracker:       NewDeliveryTracker(f.deliveries, zap.NewNop()),
		Dispatcher:    newTestDispatcher(t, f.sender),
		Engine:        templates.NewEngine(),
		Phones:        notification.NewPhoneNormalizer("52", 10),
		Store:         f.store,
		Idempotency:   shared.DefaultIdempotencyConfig(),
		DefaultLocale: notification.LocaleEnglish,
	}, zap.NewNop())
	return f
}

func messagePayload(id, text string) []byte {
	return []byte(`{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{
		"messaging_product":"whatsapp",
		"contacts":[{"wa_id":"5213312345678","profile":{"name":"Ana"}}],
		"messages":[{"from":"5213312345678","id":"` + id + `","timestamp":"1714564800","type":"text","text":{"body":"` + text + `"}}]
	}}]}]}`)
}

func TestInboundRouter_Handle_Messages(t *testing.T) {
	ctx := context.Background()

	t.Run("status query replies with the latest order in its language", func(t *testing.T) {
		f := newRouterFixture(t)
		order := testOrder(notification.OrderStatusPreparing)
		f.messages.On("Save", mock.Anything, mock.MatchedBy(func(m *notification.InboundMessage) bool {
			return m.ProviderMessageID == "wamid.in1" && m.Intent == notification.IntentStatusQuery && m.ContactName == "Ana"
		})).Return(true, nil).Once()
		f.orders.On("FindRecentByCustomerPhone", mock.Anything, "5213312345678", 1).
			Return([]notification.Order{*order}, nil)
		f.sender.On("SendText", mock.Anything, "5213312345678", mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "📋 Estado de tu pedido") &&
				strings.Contains(body, "Estamos preparando tu pedido")
		})).Return(notification.NewSyntheticResult("test_1")).Once()

		summary, err := f.router.Handle(ctx, messagePayload("wamid.in1", "what is my order status?"))

		require.NoError(t, err)
		assert.Equal(t, Summary{Messages: 1, Replies: 1}, summary)
		f.sender.AssertExpectations(t)
	})

	t.Run("status query without orders gets the no-order reply", func(t *testing.T) {
		f := newRouterFixture(t)
		f.messages.On("Save", mock.Anything, mock.Anything).Return(true, nil)
		f.orders.On("FindRecentByCustomerPhone", mock.Anything, "5213312345678", 1).Return([]notification.Order{}, nil).Once()
		f.orders.On("FindRecentByCustomerPhone", mock.Anything, "523312345678", 1).Return([]notification.Order{}, nil).Once()
		f.sender.On("SendText", mock.Anything, "5213312345678", templates.NewEngine().RenderNoRecentOrder(notification.LocaleSpanish)).
			Return(notification.NewSyntheticResult("test_1")).Once()

		summary, err := f.router.Handle(ctx, messagePayload("wamid.in2", "¿Dónde está mi PEDIDO?"))

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Replies)
		f.sender.AssertExpectations(t)
	})

	t.Run("status query finds an order stored without the mobile prefix", func(t *testing.T) {
		f := newRouterFixture(t)
		order := testOrder(notification.OrderStatusReady)
		order.CustomerPhone = notification.NormalizePhone("33 1234 5678")
		f.messages.On("Save", mock.Anything, mock.Anything).Return(true, nil)
		f.orders.On("FindRecentByCustomerPhone", mock.Anything, "5213312345678", 1).Return([]notification.Order{}, nil).Once()
		f.orders.On("FindRecentByCustomerPhone", mock.Anything, "523312345678", 1).
			Return([]notification.Order{*order}, nil).Once()
		f.sender.On("SendText", mock.Anything, "5213312345678", mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "📋 Estado de tu pedido") && strings.Contains(body, "ORD-1001")
		})).Return(notification.NewSyntheticResult("test_1")).Once()

		summary, err := f.router.Handle(ctx, messagePayload("wamid.in9", "status"))

		require.NoError(t, err)
		assert.Equal(t, Summary{Messages: 1, Replies: 1}, summary)
		f.orders.AssertExpectations(t)
		f.sender.AssertExpectations(t)
	})

	t.Run("help request uses the default locale without Spanish keywords", func(t *testing.T) {
		f := newRouterFixture(t)
		f.messages.On("Save", mock.Anything, mock.Anything).Return(true, nil)
		f.sender.On("SendText", mock.Anything, "5213312345678", templates.NewEngine().RenderHelp(notification.LocaleEnglish)).
			Return(notification.NewSyntheticResult("test_1")).Once()

		summary, err := f.router.Handle(ctx, messagePayload("wamid.in3", "HELP please"))

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Replies)
		f.orders.AssertNotCalled(t, "FindRecentByCustomerPhone", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unmatched text is stored without reply", func(t *testing.T) {
		f := newRouterFixture(t)
		f.messages.On("Save", mock.Anything, mock.MatchedBy(func(m *notification.InboundMessage) bool {
			return m.Intent == notification.IntentNone
		})).Return(true, nil).Once()

		summary, err := f.router.Handle(ctx, messagePayload("wamid.in4", "gracias"))

		require.NoError(t, err)
		assert.Equal(t, Summary{Messages: 1}, summary)
		f.sender.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("redelivered message is answered once", func(t *testing.T) {
		f := newRouterFixture(t)
		f.messages.On("Save", mock.Anything, mock.Anything).Return(true, nil).Once()
		f.sender.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return(notification.NewSyntheticResult("test_1")).Once()

		payload := messagePayload("wamid.in5", "ayuda")
		_, err := f.router.Handle(ctx, payload)
		require.NoError(t, err)
		summary, err := f.router.Handle(ctx, payload)
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Duplicates)
		f.sender.AssertNumberOfCalls(t, "SendText", 1)
		f.messages.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("message already stored is not answered again", func(t *testing.T) {
		f := newRouterFixture(t)
		f.messages.On("Save", mock.Anything, mock.Anything).Return(false, nil).Once()

		summary, err := f.router.Handle(ctx, messagePayload("wamid.in6", "ayuda"))

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Duplicates)
		f.sender.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failure is counted and acknowledged", func(t *testing.T) {
		f := newRouterFixture(t)
		f.messages.On("Save", mock.Anything, mock.Anything).Return(false, errors.New("db down"))

		summary, err := f.router.Handle(ctx, messagePayload("wamid.in7", "help"))

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failures)
		f.sender.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed reply is counted", func(t *testing.T) {
		f := newRouterFixture(t)
		f.messages.On("Save", mock.Anything, mock.Anything).Return(true, nil)
		f.sender.On("SendText", mock.Anything, mock.Anything, mock.Anything).
			Return(notification.NewFailedResult(whatsapp.ErrProviderUnavailable))

		summary, err := f.router.Handle(ctx, messagePayload("wamid.in8", "help"))

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failures)
		assert.Equal(t, 0, summary.Replies)
	})
}

func TestInboundRouter_Handle_Statuses(t *testing.T) {
	payload := []byte(`{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"statuses":[
		{"id":"wamid.out1","status":"sent","timestamp":"1714564800","recipient_id":"5213312345678"},
		{"id":"wamid.out1","status":"delivered","timestamp":"1714564805","recipient_id":"5213312345678"},
		{"id":"wamid.out2","status":"bogus"}
	]}}]}]}`)

	f := newRouterFixture(t)
	record := notification.NewDeliveryRecord("wamid.out1", "ORD-1001", "5213312345678")
	f.deliveries.On("FindByProviderMessageID", mock.Anything, "wamid.out1").Return(record, nil)
	f.deliveries.On("Save", mock.Anything, record).Return(nil).Twice()

	summary, err := f.router.Handle(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, Summary{Statuses: 2, Skipped: 1}, summary)
	assert.Equal(t, notification.DeliveryStatusDelivered, record.Status)
	f.deliveries.AssertExpectations(t)
}

func TestInboundRouter_Handle_Payloads(t *testing.T) {
	f := newRouterFixture(t)

	t.Run("not JSON", func(t *testing.T) {
		_, err := f.router.Handle(context.Background(), []byte("not json"))
		assert.ErrorIs(t, err, whatsapp.ErrMalformedPayload)
	})

	t.Run("no entries", func(t *testing.T) {
		summary, err := f.router.Handle(context.Background(), []byte(`{"object":"whatsapp_business_account"}`))
		require.NoError(t, err)
		assert.Equal(t, Summary{}, summary)
	})

	t.Run("unknown shape", func(t *testing.T) {
		summary, err := f.router.Handle(context.Background(), []byte(`{"hello":"world"}`))
		require.NoError(t, err)
		assert.Equal(t, Summary{}, summary)
	})

	t.Run("mistyped json is acknowledged", func(t *testing.T) {
		for _, body := range []string{`[{"entry":[]}]`, `{"entry":"x"}`, `{"object":1,"entry":[{"changes":[{"value":[]}]}]}`} {
			summary, err := f.router.Handle(context.Background(), []byte(body))
			require.NoError(t, err, body)
			assert.Equal(t, Summary{}, summary, body)
		}
	})

	t.Run("drifted status is skipped, valid one applied", func(t *testing.T) {
		record := notification.NewDeliveryRecord("wamid.drift", "ORD-1001", "5213312345678")
		f.deliveries.On("FindByProviderMessageID", mock.Anything, "wamid.drift").Return(record, nil).Once()
		f.deliveries.On("Save", mock.Anything, record).Return(nil).Once()

		summary, err := f.router.Handle(context.Background(), []byte(`{"entry":[{"changes":[{"value":{"statuses":[
			{"id":["wamid.bad"],"status":"delivered"},
			{"id":"wamid.drift","status":"delivered","timestamp":1714564805,"recipient_id":5213312345678}
		]}}]}]}`))

		require.NoError(t, err)
		assert.Equal(t, Summary{Statuses: 1, Skipped: 1}, summary)
		assert.Equal(t, notification.DeliveryStatusDelivered, record.Status)
		f.deliveries.AssertExpectations(t)
	})
}
