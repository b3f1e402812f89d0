package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/amansoomro062/codesign/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var (
	meterProvider *sdkmetric.MeterProvider
)

// SetupMetrics installs the global meter provider, exporting every 10s. It
// returns nil when telemetry is disabled; instruments then record into the
// no-op global provider.
func SetupMetrics(cfg *config.Config) (*sdkmetric.MeterProvider, error) {
	if !Enabled(cfg) {
		return nil, nil
	}

	res, err := serviceResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metricExporter, err := otlpmetricgrpc.New(
		ctx,
		otlpmetricgrpc.WithEndpoint(otlpEndpoint(cfg.Telemetry.OtlpEndpoint)),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(10*time.Second)),
		),
	)
	otel.SetMeterProvider(meterProvider)

	return meterProvider, nil
}

// ShutdownMetrics flushes and stops the meter provider.
func ShutdownMetrics(ctx context.Context) error {
	if meterProvider != nil {
		return meterProvider.Shutdown(ctx)
	}
	return nil
}
