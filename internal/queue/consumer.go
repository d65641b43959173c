package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator"
	"github.com/rabbitmq/amqp091-go"

	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
	"github.com/TomasH60/semantic-blockchain/pkg/ingest"
	"github.com/TomasH60/semantic-blockchain/pkg/loader"
	ioloader "github.com/TomasH60/semantic-blockchain/pkg/loader/io"
	"github.com/TomasH60/semantic-blockchain/pkg/logger"
)

const retriesHeader = "x-retries"

// ErrPermanent marks failures that retrying cannot fix.
var ErrPermanent = errors.New("permanent failure")

// Publisher sends an event body on a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, body []byte) error
}

// ChannelPublisher publishes events on a topic exchange.
type ChannelPublisher struct {
	Channel  *amqp091.Channel
	Exchange string
}

func (p ChannelPublisher) Publish(ctx context.Context, topic string, body []byte) error {
	return PublishTopic(ctx, p.Channel, p.Exchange, topic, body)
}

// Consumer applies load messages to a session.
type Consumer struct {
	session   *explorer.Session
	loaders   map[string]loader.SourceLoader
	publisher Publisher
	validate  *validator.Validate
}

// NewConsumer creates a consumer. loaders maps a message source ("fs", "s3")
// to the loader that reads it; publisher may be nil.
func NewConsumer(session *explorer.Session, loaders map[string]loader.SourceLoader, publisher Publisher) *Consumer {
	return &Consumer{
		session:   session,
		loaders:   loaders,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// Handle processes one message body. Errors wrapping ErrPermanent should not
// be retried.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var msg LoadMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: invalid message: %v", ErrPermanent, err)
	}
	if err := c.validate.Struct(msg); err != nil {
		return fmt.Errorf("%w: invalid message: %v", ErrPermanent, err)
	}

	event := LoadEvent{
		CorrelationID: msg.CorrelationID,
		Operation:     msg.Operation,
		Source:        msg.Source,
		Path:          msg.Path,
	}

	res, err := c.load(ctx, msg)
	event.RequestID = res.ID
	if err != nil {
		event.Error = err.Error()
		c.publish(ctx, TopicFailed, event)
		if errors.Is(err, explorer.ErrSuperseded) {
			logger.Info("[Queue] Load superseded by a newer request", "path", msg.Path)
			return nil
		}
		if isPermanent(err) {
			return fmt.Errorf("%w: %v", ErrPermanent, err)
		}
		return err
	}

	event.Report = &res.Report
	event.Stats = &res.Stats
	c.publish(ctx, TopicLoaded, event)
	return nil
}

func (c *Consumer) load(ctx context.Context, msg LoadMessage) (explorer.Result, error) {
	l, ok := c.loaders[msg.Source]
	if !ok {
		return explorer.Result{}, fmt.Errorf("%w: source %q is not configured", ErrPermanent, msg.Source)
	}

	file, err := loader.NewSourceFile(loader.NewSourceFileParams{
		Path:   msg.Path,
		Format: msg.Format,
		Loader: l,
	})
	if err != nil {
		return explorer.Result{}, err
	}

	req, err := file.Request(ctx, explorer.Operation(msg.Operation), msg.PreserveView)
	if err != nil {
		return explorer.Result{}, err
	}

	return c.session.Load(ctx, req)
}

func (c *Consumer) publish(ctx context.Context, topic string, event LoadEvent) {
	if c.publisher == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("[Queue] Failed to marshal event", "topic", topic, "err", err)
		return
	}
	if err := c.publisher.Publish(ctx, topic, body); err != nil {
		logger.Error("[Queue] Failed to publish event", "topic", topic, "err", err)
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, ErrPermanent) ||
		errors.Is(err, ingest.ErrParse) ||
		errors.Is(err, ingest.ErrMissingSchema) ||
		errors.Is(err, ingest.ErrUnsupportedFormat) ||
		errors.Is(err, explorer.ErrUnknownOperation) ||
		errors.Is(err, ioloader.ErrOutsideRoot)
}

// Run consumes queueName until ctx is done. Failed messages go through the
// retry queue up to maxRetries times and then to the dead-letter queue;
// permanent failures skip the retries.
func (c *Consumer) Run(ctx context.Context, ch *amqp091.Channel, queueName string, maxRetries int) error {
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		queueName,
		queueName+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming %s: %w", queueName, err)
	}

	logger.Info("[Queue] Listening for messages", "queue", queueName)
	for {
		select {
		case <-ctx.Done():
			logger.Info("[Queue] Stopping consumer", "queue", queueName)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("[Queue] Message channel closed", "queue", queueName)
				return nil
			}
			if err := c.Handle(ctx, msg.Body); err != nil {
				logger.Error("[Queue] Error processing message", "queue", queueName, "err", err)
				c.reject(ctx, ch, msg, queueName, maxRetries, errors.Is(err, ErrPermanent))
				continue
			}
			if err := msg.Ack(false); err != nil {
				logger.Error("[Queue] Failed to ack message", "err", err)
			}
		}
	}
}

func (c *Consumer) reject(ctx context.Context, ch *amqp091.Channel, msg amqp091.Delivery, queueName string, maxRetries int, permanent bool) {
	retries := RetryCount(msg.Headers)

	target := RetryName(queueName)
	if permanent || retries >= maxRetries {
		target = DeadLetterName(queueName)
	}

	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[retriesHeader] = int32(retries + 1)

	if err := PublishFIFO(ctx, ch, target, msg.Body, headers); err != nil {
		logger.Error("[Queue] Failed to republish message", "queue", target, "err", err)
		_ = msg.Nack(false, true)
		return
	}
	logger.Info("[Queue] Message rerouted", "queue", target, "retries", retries)
	_ = msg.Ack(false)
}

// RetryCount reads the retry counter from message headers.
func RetryCount(headers amqp091.Table) int {
	switch v := headers[retriesHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
