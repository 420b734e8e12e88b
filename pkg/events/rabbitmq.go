package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"

	"github.com/unique-collection/catalog/internal/models"
)

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
}

// ProductEvent is the message body published for every catalog write.
type ProductEvent struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	ProductID  string          `json:"product_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Product    *models.Product `json:"product,omitempty"`
}

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends product lifecycle events to a topic exchange, routed by
// event type (product.created, product.updated, product.deleted).
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	logger   *logrus.Logger
	mu       sync.Mutex
}

// NewPublisher connects to RabbitMQ and declares the exchange.
func NewPublisher(cfg Config, logger *logrus.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	logger.WithField("exchange", cfg.Exchange).Info("RabbitMQ publisher connected")

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		logger:   logger,
	}, nil
}

func newPublisherWithChannel(ch channel, exchange string, logger *logrus.Logger) *Publisher {
	return &Publisher{channel: ch, exchange: exchange, logger: logger}
}

// PublishProductEvent publishes one event. product may be nil for deletions.
func (p *Publisher) PublishProductEvent(ctx context.Context, eventType string, productID uuid.UUID, product *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event := ProductEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		ProductID:  productID.String(),
		OccurredAt: time.Now().UTC(),
		Product:    product,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	err = p.channel.Publish(
		p.exchange, // exchange
		eventType,  // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			MessageId:    event.ID,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	p.logger.WithFields(logrus.Fields{
		"event":      eventType,
		"product_id": event.ProductID,
	}).Debug("Published product event")
	return nil
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		p.conn = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ publisher: %v", errs)
	}
	return nil
}
