// Package messaging hands staged orders to the order-creation pipeline over
// Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"lamahang-storefront/internal/domain"
)

const StatusQueued = "queued"

var publisherTracer = otel.Tracer("messaging/orders")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPublisher submits orders by publishing them to a topic keyed by the
// order reference. A successful write is the acceptance point.
type OrderPublisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
	now    func() time.Time
}

func NewOrderPublisher(brokers []string, topic string, logger *zap.Logger) (*OrderPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers required")
	}
	if topic == "" {
		return nil, errors.New("order topic required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           100 * time.Millisecond,
	}
	return newOrderPublisher(w, topic, logger), nil
}

func newOrderPublisher(w messageWriter, topic string, logger *zap.Logger) *OrderPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderPublisher{writer: w, topic: topic, logger: logger, now: time.Now}
}

func (p *OrderPublisher) SubmitOrder(ctx context.Context, order domain.OrderPayload) (domain.OrderReceipt, error) {
	data, err := json.Marshal(order)
	if err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("encode order: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.Reference),
		Value: data,
	}

	ctx, span := publisherTracer.Start(ctx, "send "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingKafkaMessageKey(order.Reference),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, NewMessageCarrier(&msg))

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.OrderReceipt{}, fmt.Errorf("publish order: %w", err)
	}

	p.logger.Info("order published",
		zap.String("reference", order.Reference),
		zap.Int64("total", order.Breakdown.Total),
		zap.Int("items", len(order.Items)),
	)
	return domain.OrderReceipt{
		Reference:  order.Reference,
		Status:     StatusQueued,
		AcceptedAt: p.now(),
	}, nil
}

func (p *OrderPublisher) Close() error {
	return p.writer.Close()
}
