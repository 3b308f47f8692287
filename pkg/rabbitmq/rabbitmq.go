package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	amqp "github.com/streadway/amqp"
)

// DefaultQueue carries stock events when no queue name is configured.
const DefaultQueue = "inventory_events"

// DefaultPrefetch caps unacknowledged deliveries held by one consumer.
const DefaultPrefetch = 10

// ErrReject tells Consume to drop a message instead of requeueing it.
var ErrReject = errors.New("reject message")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	mu      sync.Mutex // serializes publishes on the shared channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable queue.
func NewClient(cfg Config) (*Client, error) {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declare(ch, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", queue, err)
	}

	log.Info().Str("queue", queue).Msg("rabbitmq connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

func declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

// Queue returns the queue name the client publishes to and consumes from.
func (c *Client) Queue() string {
	return c.queue
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishJSON marshals v and publishes it as a persistent message on the client's queue.
func (c *Client) PublishJSON(v interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key is the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Str("queue", c.queue).RawJSON("body", body).Msg("message published")
	return nil
}

// Handler processes one message body. A nil return acks the message. Errors wrapping
// ErrReject drop it. Any other error requeues it once; a redelivered message that
// fails again is dropped.
type Handler func(ctx context.Context, body []byte) error

// Consume delivers messages from the client's queue to handle until ctx is done
// or the channel closes.
func (c *Client) Consume(ctx context.Context, consumer string, handle Handler) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	if err := c.channel.Qos(DefaultPrefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue,
		consumer,
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Info().Str("queue", c.queue).Str("consumer", consumer).Msg("waiting for messages")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consumer %s: delivery channel closed", consumer)
			}
			settle(msg, msg.Redelivered, handle(ctx, msg.Body))
		}
	}
}

// acknowledger is the part of amqp.Delivery settle needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(msg acknowledger, redelivered bool, err error) {
	if err == nil {
		if ackErr := msg.Ack(false); ackErr != nil {
			log.Error().Err(ackErr).Msg("failed to ack message")
		}
		return
	}

	requeue := !errors.Is(err, ErrReject) && !redelivered
	if requeue {
		log.Warn().Err(err).Msg("message handling failed, requeueing")
	} else {
		log.Error().Err(err).Bool("redelivered", redelivered).Msg("message handling failed, dropping")
	}
	if nackErr := msg.Nack(false, requeue); nackErr != nil {
		log.Error().Err(nackErr).Msg("failed to nack message")
	}
}
