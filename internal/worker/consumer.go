package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/logging"
)

// Config holds broker settings
type Config struct {
	URL         string `mapstructure:"url"`
	Queue       string `mapstructure:"queue"`
	Exchange    string `mapstructure:"exchange"`
	Concurrency int    `mapstructure:"concurrency"`
}

// Defaults
const (
	DefaultQueue       = "resume_screening"
	DefaultExchange    = "screening_updates"
	DefaultConcurrency = 3
)

func (c *Config) normalize() {
	if c.Queue == "" {
		c.Queue = DefaultQueue
	}
	if c.Exchange == "" {
		c.Exchange = DefaultExchange
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
}

// RoutingKey returns the routing key updates for requestID are published with
func RoutingKey(requestID string) string {
	return "match." + requestID
}

type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Consumer runs a pool of queue consumers, one channel each.
type Consumer struct {
	cfg       Config
	processor *Processor
	logger    *zap.Logger
}

// NewConsumer creates a Consumer
func NewConsumer(cfg Config, processor *Processor, logger *zap.Logger) *Consumer {
	cfg.normalize()
	return &Consumer{cfg: cfg, processor: processor, logger: logging.OrNop(logger).Named("consumer")}
}

// Run consumes until ctx is cancelled or the broker connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	if c.cfg.URL == "" {
		return errors.New("amqp url is required")
	}
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}
	defer conn.Close()

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	var wg sync.WaitGroup
	errs := make(chan error, c.cfg.Concurrency)
	for i := 0; i < c.cfg.Concurrency; i++ {
		ch, err := c.openChannel(conn)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func(id int, ch *amqp.Channel) {
			defer wg.Done()
			defer ch.Close()
			if err := c.consume(ctx, id, ch); err != nil {
				errs <- err
			}
		}(i+1, ch)
	}
	c.logger.Info("consumer pool started",
		zap.Int("workers", c.cfg.Concurrency),
		zap.String("queue", c.cfg.Queue))

	var runErr error
	select {
	case <-ctx.Done():
	case amqpErr := <-closed:
		if amqpErr != nil {
			runErr = fmt.Errorf("rabbitmq connection closed: %w", amqpErr)
		}
	case runErr = <-errs:
	}
	conn.Close()
	wg.Wait()
	return runErr
}

func (c *Consumer) openChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		c.cfg.Queue, // queue name
		true,        // durable
		false,       // auto-delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.ExchangeDeclare(c.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}
	return ch, nil
}

func (c *Consumer) consume(ctx context.Context, id int, ch *amqp.Channel) error {
	msgs, err := ch.Consume(
		c.cfg.Queue, // queue name
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("error consuming rabbitmq messages: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, id, ch, msg)
		}
	}
}

// handle processes one delivery. Malformed messages are dropped without requeue.
func (c *Consumer) handle(ctx context.Context, id int, pub publisher, msg amqp.Delivery) {
	req := &Request{}
	err := json.Unmarshal(msg.Body, req)
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		c.reject(pub, msg, req.RequestID, err)
		return
	}

	c.logger.Info("processing request", zap.Int("worker", id), zap.String("request_id", req.RequestID))
	c.publish(pub, stamp(&Update{RequestID: req.RequestID, Status: StatusProcessing}))

	update := c.processor.Process(ctx, req)
	if update.Status == StatusFailed {
		c.logger.Warn("request failed", zap.String("request_id", req.RequestID), zap.String("error", update.Error))
	}
	c.publish(pub, update)

	if err := msg.Ack(false); err != nil {
		c.logger.Error("failed to ack message", zap.String("request_id", req.RequestID), zap.Error(err))
	}
}

func (c *Consumer) reject(pub publisher, msg amqp.Delivery, requestID string, cause error) {
	c.logger.Warn("malformed message", zap.String("request_id", requestID), zap.Error(cause))
	if requestID != "" {
		c.publish(pub, stamp(&Update{
			RequestID: requestID,
			Status:    StatusFailed,
			Error:     fmt.Sprintf("invalid request: %v", cause),
		}))
	}
	if err := msg.Nack(false, false); err != nil {
		c.logger.Error("failed to nack message", zap.Error(err))
	}
}

func (c *Consumer) publish(pub publisher, update *Update) {
	body, err := json.Marshal(update)
	if err != nil {
		c.logger.Error("failed to marshal update", zap.Error(err))
		return
	}
	err = pub.Publish(c.cfg.Exchange, RoutingKey(update.RequestID), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		c.logger.Error("failed to publish update",
			zap.String("request_id", update.RequestID),
			zap.String("status", string(update.Status)),
			zap.Error(err))
	}
}
