package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// ErrDeliveriesClosed is returned by Consume when the broker closes the
// delivery channel (connection or channel loss).
var ErrDeliveriesClosed = errors.New("broker closed the delivery channel")

// MessageHandler processes one message body. Returning nil acks the message,
// a requeue error (see Requeue) nacks it back onto the queue and any other
// error nacks it without requeue.
type MessageHandler func(ctx context.Context, body []byte) error

type Publisher interface {
	Publish(ctx context.Context, queue string, payload interface{}) error
}

type Broker interface {
	Publisher
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}

type requeueError struct {
	err error
}

func (e *requeueError) Error() string { return e.err.Error() }
func (e *requeueError) Unwrap() error { return e.err }

// Requeue marks err so the delivery is returned to the queue instead of
// being dropped.
func Requeue(err error) error {
	if err == nil {
		return nil
	}
	return &requeueError{err: err}
}

func IsRequeue(err error) bool {
	var re *requeueError
	return errors.As(err, &re)
}

type rabbitBroker struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	mu     sync.Mutex
	logger logrus.FieldLogger
}

// NewRabbitBroker dials the broker, opens one channel and declares every
// queue in queues as durable.
func NewRabbitBroker(url string, logger logrus.FieldLogger, queues ...string) (Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, queue := range queues {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
		}
	}

	return &rabbitBroker{
		conn:   conn,
		ch:     ch,
		logger: logger,
	}, nil
}

// Publish implements Publisher.
func (b *rabbitBroker) Publish(ctx context.Context, queue string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	err = b.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}

	b.logger.WithFields(logrus.Fields{"queue": queue, "bytes": len(body)}).Debug("📤 Message published")
	return nil
}

// Consume implements Broker. Deliveries are handled strictly one at a time.
func (b *rabbitBroker) Consume(ctx context.Context, queue string, handler MessageHandler) error {
	b.mu.Lock()
	if err := b.ch.Qos(1, 0, false); err != nil {
		b.mu.Unlock()
		return fmt.Errorf("failed to set prefetch: %w", err)
	}
	deliveries, err := b.ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	b.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", queue, err)
	}

	b.logger.WithField("queue", queue).Info("👂 Listening for messages")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrDeliveriesClosed
			}
			handleDelivery(ctx, d, handler, b.logger.WithField("queue", queue))
		}
	}
}

// Close implements Broker.
func (b *rabbitBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		b.conn.Close()
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if err := b.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// handleDelivery runs handler and settles d according to its result. A
// failure after ctx is cancelled always requeues.
func handleDelivery(ctx context.Context, d amqp.Delivery, handler MessageHandler, logger logrus.FieldLogger) {
	log := logger.WithFields(logrus.Fields{
		"message_id":   d.MessageId,
		"delivery_tag": d.DeliveryTag,
		"redelivered":  d.Redelivered,
	})

	err := handler(ctx, d.Body)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			log.WithError(ackErr).Error("❌ Failed to ack message")
		}
	case IsRequeue(err) || ctx.Err() != nil:
		// Shutdown interrupted the handler; hand the message back.
		log.WithError(err).Warn("⚠️  Message returned to queue")
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.WithError(nackErr).Error("❌ Failed to nack message")
		}
	default:
		log.WithError(err).Error("❌ Message dropped")
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.WithError(nackErr).Error("❌ Failed to nack message")
		}
	}
}
