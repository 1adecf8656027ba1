package notification

import (
	"context"
	"testing"
	"time"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/templates"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockSender is a mock implementation of whatsapp.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendText(ctx context.Context, to, body string) notification.DispatchResult {
	args := m.Called(ctx, to, body)
	return args.Get(0).(notification.DispatchResult)
}

func (m *MockSender) IsTestMode() bool {
	return m.Called().Bool(0)
}

// MockOrderRepository is a mock implementation of notification.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*notification.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Order), args.Error(1)
}

func (m *MockOrderRepository) FindRecentByCustomerPhone(ctx context.Context, phone string, limit int) ([]notification.Order, error) {
	args := m.Called(ctx, phone, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, order *notification.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockInboundMessageRepository is a mock implementation of notification.InboundMessageRepository
type MockInboundMessageRepository struct {
	mock.Mock
}

func (m *MockInboundMessageRepository) Save(ctx context.Context, msg *notification.InboundMessage) (bool, error) {
	args := m.Called(ctx, msg)
	return args.Bool(0), args.Error(1)
}

// MockDeliveryRecordRepository is a mock implementation of notification.DeliveryRecordRepository
type MockDeliveryRecordRepository struct {
	mock.Mock
}

func (m *MockDeliveryRecordRepository) FindByProviderMessageID(ctx context.Context, id string) (*notification.DeliveryRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.DeliveryRecord), args.Error(1)
}

func (m *MockDeliveryRecordRepository) Save(ctx context.Context, record *notification.DeliveryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDeliveryRecordRepository) FindRequiringIntervention(ctx context.Context, limit int) ([]notification.DeliveryRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.DeliveryRecord), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// memoryStore is a map-backed shared.IdempotencyStore
type memoryStore struct {
	keys map[string]bool
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: map[string]bool{}}
}

func (s *memoryStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryStore) IsProcessed(_ context.Context, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.keys[key], nil
}

func (s *memoryStore) Close() error { return nil }

func newTestDispatcher(t *testing.T, sender *MockSender) *Dispatcher {
	t.Helper()
	return NewDispatcher(sender, templates.NewEngine(), notification.NewPhoneNormalizer("52", 10), zap.NewNop())
}

func testOrder(status notification.OrderStatus) *notification.Order {
	return &notification.Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ID:                "ORD-1001",
		Status:            status,
		Language:          notification.LocaleSpanish,
		CustomerName:      "Ana López",
		CustomerPhone:     "5213312345678",
		StoreName:         "Tacos El Güero",
		StorePhone:        "3398765432",
		Total:             decimal.RequireFromString("245.50"),
		Currency:          "MXN",
		PaymentMethod:     "cash",
		Items: []notification.LineItem{
			{Name: "Tacos al pastor", Quantity: 3, UnitPrice: decimal.RequireFromString("45.00")},
			{Name: "Agua de horchata", Quantity: 2, UnitPrice: decimal.RequireFromString("55.25")},
		},
		CreatedAt: time.Now().Add(-time.Hour),
	}
}

func providerResult(id string) notification.DispatchResult {
	return notification.NewProviderResult(id)
}
