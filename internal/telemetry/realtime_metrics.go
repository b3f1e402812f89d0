package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RealtimeMetrics instruments the websocket layer. A nil *RealtimeMetrics
// records nothing.
type RealtimeMetrics struct {
	connected metric.Int64UpDownCounter
	joins     metric.Int64Counter
	relayed   metric.Int64Counter
	dropped   metric.Int64Counter
}

// NewRealtimeMetrics creates the instruments on mp, or on the global meter
// provider when mp is nil.
func NewRealtimeMetrics(mp metric.MeterProvider) (*RealtimeMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter("codesign.realtime")

	var (
		m   RealtimeMetrics
		err error
	)
	m.connected, err = meter.Int64UpDownCounter(
		"realtime.clients.connected",
		metric.WithDescription("Number of open websocket connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	m.joins, err = meter.Int64Counter(
		"realtime.room.joins",
		metric.WithDescription("Number of accepted and rejected room joins"),
		metric.WithUnit("{join}"),
	)
	if err != nil {
		return nil, err
	}

	m.relayed, err = meter.Int64Counter(
		"realtime.events.relayed",
		metric.WithDescription("Number of events delivered to room members"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	m.dropped, err = meter.Int64Counter(
		"realtime.events.dropped",
		metric.WithDescription("Number of deliveries dropped on a full send queue"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *RealtimeMetrics) ClientConnected(ctx context.Context) {
	if m != nil {
		m.connected.Add(ctx, 1)
	}
}

func (m *RealtimeMetrics) ClientDisconnected(ctx context.Context) {
	if m != nil {
		m.connected.Add(ctx, -1)
	}
}

func (m *RealtimeMetrics) RoomJoin(ctx context.Context, accepted bool) {
	if m == nil {
		return
	}
	status := "accepted"
	if !accepted {
		status = "rejected"
	}
	m.joins.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// Relayed records one broadcast: delivered recipients and dropped ones.
func (m *RealtimeMetrics) Relayed(ctx context.Context, event string, delivered, dropped int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("event", event))
	if delivered > 0 {
		m.relayed.Add(ctx, int64(delivered), attrs)
	}
	if dropped > 0 {
		m.dropped.Add(ctx, int64(dropped), attrs)
	}
}
