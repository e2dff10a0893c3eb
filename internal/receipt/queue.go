package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/metinatakli/cinex-booking/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultQueue      = "booking.receipts"
	DefaultMaxRetries = 3

	retryCountHeader = "x-retry-count"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type consumerChannel interface {
	publisher
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

func declareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return nil
}

// QueuePublisher hands receipts to a durable RabbitMQ queue, leaving delivery
// to a Consumer that may run in another process.
type QueuePublisher struct {
	mu    sync.Mutex
	ch    publisher
	queue string
}

func NewQueuePublisher(conn *amqp.Connection, queue string) (*QueuePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareQueue(ch, queue); err != nil {
		ch.Close()
		return nil, err
	}

	return &QueuePublisher{ch: ch, queue: queue}, nil
}

func (p *QueuePublisher) Dispatch(ctx context.Context, req domain.ReceiptRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	return p.publish(ctx, req, 0)
}

func (p *QueuePublisher) publish(ctx context.Context, req domain.ReceiptRequest, retries int32) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode receipt request: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    req.ID,
		Timestamp:    time.Now().UTC(),
		Headers:      amqp.Table{retryCountHeader: retries},
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish receipt %s: %w", req.ID, err)
	}

	return nil
}

// Consumer sends the receipts found on the queue. A failed send is published
// again with an incremented retry count until maxRetries is reached, after
// which the message is dropped.
type Consumer struct {
	ch         consumerChannel
	requeue    *QueuePublisher
	queue      string
	sender     Sender
	maxRetries int32
	logger     *slog.Logger
}

func NewConsumer(ch consumerChannel, queue string, sender Sender, maxRetries int, logger *slog.Logger) *Consumer {
	return &Consumer{
		ch:         ch,
		requeue:    &QueuePublisher{ch: ch, queue: queue},
		queue:      queue,
		sender:     sender,
		maxRetries: int32(maxRetries),
		logger:     logger,
	}
}

// Run handles deliveries until ctx is done or the channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}

			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var req domain.ReceiptRequest
	if err := json.Unmarshal(d.Body, &req); err != nil {
		c.logger.Error("discarding malformed receipt message", "message_id", d.MessageId, "error", err)
		_ = d.Nack(false, false)
		return
	}

	logger := c.logger.With("receipt_id", req.ID, "booking_reference", req.BookingReference)

	err := c.sender.Send(ctx, req)
	if err == nil {
		logger.Info("receipt sent successfully")
		_ = d.Ack(false)
		return
	}

	retries := retryCount(d.Headers)
	if retries >= c.maxRetries {
		logger.Error("giving up on receipt", "retries", retries, "error", err)
		_ = d.Nack(false, false)
		return
	}

	logger.Warn("failed to send receipt, requeueing", "retries", retries, "error", err)

	if err := c.requeue.publish(ctx, req, retries+1); err != nil {
		logger.Error("failed to requeue receipt", "error", err)
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
}

func retryCount(headers amqp.Table) int32 {
	switch v := headers[retryCountHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	default:
		return 0
	}
}

// Consume keeps a Consumer attached to the broker at url, reconnecting with
// exponential backoff whenever the connection drops. It returns when ctx is
// done.
func Consume(ctx context.Context, url, queue string, sender Sender, maxRetries int, logger *slog.Logger) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 30 * time.Second

	for {
		err := consumeOnce(ctx, url, queue, sender, maxRetries, logger, bo)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := bo.NextBackOff()
		logger.Error("receipt consumer stopped, reconnecting", "error", err, "retry_in", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func consumeOnce(
	ctx context.Context,
	url, queue string,
	sender Sender,
	maxRetries int,
	logger *slog.Logger,
	bo *backoff.ExponentialBackOff) error {

	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	if err := declareQueue(ch, queue); err != nil {
		return err
	}

	bo.Reset()
	logger.Info("receipt consumer connected", "queue", queue)

	return NewConsumer(ch, queue, sender, maxRetries, logger).Run(ctx)
}
