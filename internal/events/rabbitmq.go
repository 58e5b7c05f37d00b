package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// RabbitMQPublisher publishes intake events to a durable topic exchange.
type RabbitMQPublisher struct {
	mu           sync.RWMutex
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
	url          string
	closed       chan struct{}
}

func NewRabbitMQPublisher(url, exchangeName string) (*RabbitMQPublisher, error) {
	conn, channel, err := dial(url, exchangeName)
	if err != nil {
		return nil, err
	}
	p := &RabbitMQPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		url:          url,
		closed:       make(chan struct{}),
	}
	go p.handleReconnect(conn)

	log.Info().Str("exchange", exchangeName).Msg("RabbitMQ publisher initialized")
	return p, nil
}

func dial(url, exchangeName string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return conn, channel, nil
}

func (p *RabbitMQPublisher) PublishItemSubmitted(ctx context.Context, event ItemSubmitted) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return p.publish(ctx, RoutingKeyItemSubmitted, event.EventID, event)
}

func (p *RabbitMQPublisher) publish(ctx context.Context, routingKey, messageID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.RLock()
	ch := p.channel
	p.mu.RUnlock()

	err = ch.PublishWithContext(ctx,
		p.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			MessageId:    messageID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().
		Str("routing_key", routingKey).
		Str("exchange", p.exchangeName).
		Int("body_size", len(body)).
		Msg("message published")
	return nil
}

func (p *RabbitMQPublisher) handleReconnect(conn *amqp.Connection) {
	for {
		closeErr, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if !ok || closeErr == nil {
			return
		}
		log.Error().Err(closeErr).Msg("RabbitMQ connection closed, attempting to reconnect")

		for {
			select {
			case <-p.closed:
				return
			case <-time.After(5 * time.Second):
			}
			newConn, newCh, err := dial(p.url, p.exchangeName)
			if err != nil {
				log.Error().Err(err).Msg("failed to reconnect to RabbitMQ")
				continue
			}
			p.mu.Lock()
			p.conn, p.channel = newConn, newCh
			p.mu.Unlock()
			conn = newConn
			log.Info().Msg("reconnected to RabbitMQ")
			break
		}
	}
}

func (p *RabbitMQPublisher) Close() error {
	close(p.closed)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close RabbitMQ channel")
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
