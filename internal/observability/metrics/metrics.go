package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"github.com/funildigital/checkout/internal/config"
)

// Metrics exposes the application counters. When OTLP export is disabled
// the counters are backed by a noop meter, so call sites never branch.
type Metrics struct {
	paymentsCreated metric.Int64Counter
	webhookEvents   metric.Int64Counter
	relayDeliveries metric.Int64Counter
}

// NewProvider builds the meter provider. Nil means export is disabled and
// the caller should fall back to a noop meter.
func NewProvider(cfg config.Config, log *zap.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.MetricsEnabled {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.AppName),
			semconv.ServiceVersion(cfg.AppVersion),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(30*time.Second))),
	)

	log.Info("otlp metric export enabled", zap.String("endpoint", cfg.OTLPEndpoint))
	return provider, nil
}

func New(provider *sdkmetric.MeterProvider) (*Metrics, error) {
	var meter metric.Meter
	if provider != nil {
		meter = provider.Meter("checkout")
	} else {
		meter = noop.NewMeterProvider().Meter("checkout")
	}

	paymentsCreated, err := meter.Int64Counter("checkout_payments_created_total",
		metric.WithDescription("Payment creation attempts by method and outcome."))
	if err != nil {
		return nil, err
	}
	webhookEvents, err := meter.Int64Counter("checkout_webhook_events_total",
		metric.WithDescription("Gateway webhook events by resolved status and effect."))
	if err != nil {
		return nil, err
	}
	relayDeliveries, err := meter.Int64Counter("checkout_relay_deliveries_total",
		metric.WithDescription("Attribution relay deliveries by trigger and outcome."))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		paymentsCreated: paymentsCreated,
		webhookEvents:   webhookEvents,
		relayDeliveries: relayDeliveries,
	}, nil
}

func (m *Metrics) PaymentCreated(ctx context.Context, method, outcome string) {
	m.paymentsCreated.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("outcome", outcome),
		))
}

func (m *Metrics) WebhookEvent(ctx context.Context, status, effect string) {
	m.webhookEvents.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("status", status),
			attribute.String("effect", effect),
		))
}

func (m *Metrics) RelayDelivery(ctx context.Context, trigger, outcome string) {
	m.relayDeliveries.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("trigger", trigger),
			attribute.String("outcome", outcome),
		))
}
