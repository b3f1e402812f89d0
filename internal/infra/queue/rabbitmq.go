package mq

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/amansoomro062/codesign/internal/config"
	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Publisher emits JSON messages to a topic exchange.
type Publisher interface {
	PublishJSON(ctx context.Context, exchangeName, routingKey string, body any) error
	Close() error
}

// tableCarrier adapts amqp.Table to a TextMapCarrier so trace context
// travels in message headers.
type tableCarrier struct {
	table amqp.Table
}

func (c tableCarrier) Get(key string) string {
	if val, ok := c.table[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
		return fmt.Sprintf("%v", val)
	}
	return ""
}

func (c tableCarrier) Set(key, value string) { c.table[key] = value }

func (c tableCarrier) Keys() []string {
	keys := make([]string, 0, len(c.table))
	for k := range c.table {
		keys = append(keys, k)
	}
	return keys
}

// Dial opens a connection, upgrading to TLS when configured or when the URL
// already uses amqps://.
func Dial(cfg *config.Config) (*amqp.Connection, error) {
	url := cfg.RabbitMQ.URL
	if cfg.RabbitMQ.EnableTLS || strings.HasPrefix(url, "amqps://") {
		if strings.HasPrefix(url, "amqp://") {
			url = strings.Replace(url, "amqp://", "amqps://", 1)
		}
		return amqp.DialTLS(url, &tls.Config{MinVersion: tls.VersionTLS12})
	}
	return amqp.Dial(url)
}

type AMQPPublisher struct {
	conn *amqp.Connection
	mu   sync.Mutex // amqp channels are not safe for concurrent publish
	ch   *amqp.Channel
	log  *zap.Logger
	name string
}

// NewPublisher opens a channel and declares the given durable topic exchanges.
func NewPublisher(conn *amqp.Connection, log *zap.Logger, serviceName string, exchanges ...string) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	for _, ex := range exchanges {
		if err := ch.ExchangeDeclare(ex, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("declare exchange %s: %w", ex, err)
		}
	}
	return &AMQPPublisher{conn: conn, ch: ch, log: log, name: serviceName}, nil
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.log.Warn("close amqp channel", zap.Error(err))
	}
	return p.conn.Close()
}

func (p *AMQPPublisher) PublishJSON(ctx context.Context, exchangeName, routingKey string, body any) error {
	b, err := sonic.Marshal(body)
	if err != nil {
		return err
	}

	ctx, span := otel.Tracer(p.name).Start(ctx, "rabbitmq.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination", exchangeName),
			attribute.String("messaging.rabbitmq.routing_key", routingKey),
		))
	defer span.End()

	headers := make(amqp.Table)
	otel.GetTextMapPropagator().Inject(ctx, tableCarrier{table: headers})

	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         b,
		Headers:      headers,
	})
	p.mu.Unlock()
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int("messaging.message.body.size", len(b)))
	return nil
}

// NopPublisher is used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishJSON(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                          { return nil }
