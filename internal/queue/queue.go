package queue

import (
	"context"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/TomasH60/semantic-blockchain/internal/config"
	"github.com/TomasH60/semantic-blockchain/internal/util"
	"github.com/TomasH60/semantic-blockchain/pkg/logger"
)

const dialAttempts = 5

// Init connects to RabbitMQ, retrying with backoff while the broker comes up.
func Init(ctx context.Context, cfg config.RabbitMQConfig) (*amqp091.Connection, error) {
	return util.RetryWithBackoff(ctx, dialAttempts, time.Second, func(context.Context) (*amqp091.Connection, error) {
		conn, err := amqp091.Dial(cfg.URL())
		if err != nil {
			logger.Warn("[Queue] Failed to connect to RabbitMQ", "host", cfg.Host, "err", err)
		}
		return conn, err
	})
}

// SetupQueues declares the event exchange and, for every queue, the queue
// itself plus its dead-letter and delayed retry companions.
func SetupQueues(ch *amqp091.Channel, exchange string, retryDelay time.Duration, queueNames []string) error {
	err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		return err
	}

	for _, name := range queueNames {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return err
		}

		_, err = ch.QueueDeclare(DeadLetterName(name), true, false, false, false, nil)
		if err != nil {
			return err
		}

		_, err = ch.QueueDeclare(
			RetryName(name),
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(retryDelay / time.Millisecond),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// DeadLetterName is the queue that messages end up in once retries are exhausted.
func DeadLetterName(queueName string) string {
	return queueName + "_dlq"
}

// RetryName is the delay queue that feeds messages back into queueName.
func RetryName(queueName string) string {
	return queueName + "_retry"
}

// PublishFIFO publishes data to the named queue through the default exchange.
func PublishFIFO(ctx context.Context, ch *amqp091.Channel, queueName string, data []byte, headers amqp091.Table) error {
	return ch.PublishWithContext(
		ctx,
		"",
		queueName,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         data,
			Headers:      headers,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

// PublishTopic publishes data on exchange under topic.
func PublishTopic(ctx context.Context, ch *amqp091.Channel, exchange, topic string, data []byte) error {
	return ch.PublishWithContext(
		ctx,
		exchange,
		topic,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         data,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
}
