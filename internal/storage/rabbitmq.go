package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/tracing"
)

var mqTracer = otel.Tracer("resume-match-go/storage/rabbitmq")

// EventPublisher 发布领域事件
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

var _ EventPublisher = (*RabbitMQ)(nil)

// RabbitMQ 把事件以 JSON 发布到 topic exchange，通道复用 sync.Pool
type RabbitMQ struct {
	conn         *amqp.Connection
	channelPool  sync.Pool
	exchange     string
	publishMutex sync.Mutex
	logger       zerolog.Logger
}

// NewRabbitMQ 连接并声明事件 exchange
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器: %w", err)
	}

	mq := &RabbitMQ{
		conn:     conn,
		exchange: cfg.EventsExchange,
		logger:   logger.Component("rabbitmq"),
	}
	if mq.exchange == "" {
		mq.exchange = constants.EventsExchange
	}
	mq.channelPool = sync.Pool{
		New: func() interface{} {
			ch, errPool := conn.Channel()
			if errPool != nil {
				mq.logger.Warn().Err(errPool).Msg("创建RabbitMQ通道失败")
				return nil
			}
			return ch
		},
	}

	if err := mq.EnsureExchange(mq.exchange, "topic", true); err != nil {
		conn.Close()
		return nil, err
	}
	mq.logger.Info().Str("exchange", mq.exchange).Msg("成功连接到RabbitMQ服务器")
	return mq, nil
}

func (r *RabbitMQ) getChannel() *amqp.Channel {
	if ch, ok := r.channelPool.Get().(*amqp.Channel); ok && ch != nil && !ch.IsClosed() {
		return ch
	}
	ch, err := r.conn.Channel()
	if err != nil {
		r.logger.Warn().Err(err).Msg("创建新RabbitMQ通道失败")
		return nil
	}
	return ch
}

func (r *RabbitMQ) putChannel(ch *amqp.Channel) {
	if ch != nil && !ch.IsClosed() {
		r.channelPool.Put(ch)
	}
}

func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}

// EnsureExchange 声明 exchange
func (r *RabbitMQ) EnsureExchange(name, kind string, durable bool) error {
	if name == "" {
		return fmt.Errorf("exchange名称不能为空")
	}
	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)
	if err := ch.ExchangeDeclare(name, kind, durable, false, false, false, nil); err != nil {
		return fmt.Errorf("声明exchange失败: %w", err)
	}
	return nil
}

// Publish 以持久化消息发布 JSON 事件
func (r *RabbitMQ) Publish(ctx context.Context, routingKey string, payload interface{}) (err error) {
	ctx, span := mqTracer.Start(ctx, "RabbitMQ.Publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination", r.exchange),
			attribute.String("messaging.routing_key", routingKey),
		))
	defer func() {
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		span.End()
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("JSON序列化失败: %w", err)
	}

	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	err = ch.PublishWithContext(ctx, r.exchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("发布事件 %s 失败: %w", routingKey, err)
	}
	r.logger.Debug().Str("routing_key", routingKey).Int("bytes", len(body)).Msg("事件已发布")
	return nil
}
