package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID    uint   `gorm:"primaryKey"`
	Phone string `gorm:"size:20"`
}

func TestRegisterDBTracing(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	require.NoError(t, RegisterDBTracing(db, "ordernow", provider))

	require.NoError(t, db.WithContext(context.Background()).Create(&tracedRow{Phone: "5213312345678"}).Error)

	spans := recorder.Ended()
	require.NotEmpty(t, spans)

	var statement string
	for _, span := range spans {
		for _, kv := range span.Attributes() {
			if v := kv.Value.AsString(); strings.Contains(v, "INSERT") {
				statement = v
			}
		}
	}
	assert.NotEmpty(t, statement)
	assert.NotContains(t, statement, "5213312345678")
}
