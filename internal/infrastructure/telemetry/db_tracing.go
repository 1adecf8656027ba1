package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// RegisterDBTracing installs the otelgorm plugin so every query becomes a
// child span of the request that issued it. Bound query variables are never
// recorded because they carry customer phone numbers.
func RegisterDBTracing(db *gorm.DB, dbName string, provider trace.TracerProvider) error {
	opts := []otelgorm.Option{
		otelgorm.WithoutQueryVariables(),
		otelgorm.WithoutMetrics(),
	}
	if dbName != "" {
		opts = append(opts, otelgorm.WithDBName(dbName))
	}
	if provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(provider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm plugin: %w", err)
	}
	return nil
}
