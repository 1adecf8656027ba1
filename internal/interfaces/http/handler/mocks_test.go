package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appnotification "github.com/RCushmaniii/order-now-mvp-sub001/internal/application/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/dto"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type MockVerifier struct{ mock.Mock }

func (m *MockVerifier) Verify(mode, token, challenge string) (string, error) {
	args := m.Called(mode, token, challenge)
	return args.String(0), args.Error(1)
}

type MockProcessor struct{ mock.Mock }

func (m *MockProcessor) Handle(ctx context.Context, raw []byte) (appnotification.Summary, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(appnotification.Summary), args.Error(1)
}

type MockDispatcher struct{ mock.Mock }

func (m *MockDispatcher) Dispatch(ctx context.Context, req notification.OrderNotificationRequest) notification.DispatchResult {
	return m.Called(ctx, req).Get(0).(notification.DispatchResult)
}

type MockOrderLifecycle struct{ mock.Mock }

func (m *MockOrderLifecycle) UpdateStatus(ctx context.Context, orderID, rawStatus string) (*appnotification.StatusChangeResult, error) {
	args := m.Called(ctx, orderID, rawStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appnotification.StatusChangeResult), args.Error(1)
}

func (m *MockOrderLifecycle) NotifyOrderCreated(ctx context.Context, orderID string) (*appnotification.OrderCreatedResult, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appnotification.OrderCreatedResult), args.Error(1)
}

type MockDeliveryReader struct{ mock.Mock }

func (m *MockDeliveryReader) Get(ctx context.Context, id string) (*notification.DeliveryRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.DeliveryRecord), args.Error(1)
}

func (m *MockDeliveryReader) ListRequiringIntervention(ctx context.Context, limit int) ([]notification.DeliveryRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.DeliveryRecord), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping() error { return p.err }

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	return r
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
