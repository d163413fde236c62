// Package events publishes trip lifecycle events to RabbitMQ so that
// out-of-process consumers (notifications, chat rooms) can react to new
// and removed trips.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// Routing keys used on the trips exchange.
const (
	RoutingTripCreated = "trip.created"
	RoutingTripDeleted = "trip.deleted"
)

// TripEvent is the JSON body of every message on the trips exchange.
type TripEvent struct {
	Type       string     `json:"type"`
	TripID     uuid.UUID  `json:"trip_id"`
	CreatedBy  string     `json:"created_by"`
	Name       string     `json:"name,omitempty"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends TripEvents to a topic exchange.
type Publisher struct {
	ch       channel
	conn     *amqp.Connection
	exchange string
	now      func() time.Time
}

// NewPublisher wraps an already-open channel. The exchange must exist.
func NewPublisher(ch channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, now: time.Now}
}

// Dial connects to url, opens a channel and declares exchange as a durable
// topic exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events.Dial: connect: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events.Dial: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("events.Dial: declare exchange %q: %w", exchange, err)
	}

	p := NewPublisher(ch, exchange)
	p.conn = conn
	return p, nil
}

// TripCreated announces a newly posted trip.
func (p *Publisher) TripCreated(ctx context.Context, trip domain.Trip) error {
	start := trip.StartTime
	return p.publish(ctx, RoutingTripCreated, TripEvent{
		Type:      RoutingTripCreated,
		TripID:    trip.ID,
		CreatedBy: trip.CreatedBy,
		Name:      trip.Name,
		StartTime: &start,
	})
}

// TripDeleted announces that a trip was removed by its poster.
func (p *Publisher) TripDeleted(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return p.publish(ctx, RoutingTripDeleted, TripEvent{
		Type:      RoutingTripDeleted,
		TripID:    id,
		CreatedBy: deletedBy,
	})
}

// Close closes the channel and, when Dial opened it, the connection.
func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (p *Publisher) publish(ctx context.Context, key string, ev TripEvent) error {
	ev.OccurredAt = p.now().UTC()
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events.Publisher: encode %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Timestamp:    ev.OccurredAt,
		Type:         key,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("events.Publisher: publish %s: %w", key, err)
	}
	return nil
}

// Nop discards every event. It stands in when AMQP_URL is not configured.
type Nop struct{}

// TripCreated implements the trip event sink.
func (Nop) TripCreated(context.Context, domain.Trip) error { return nil }

// TripDeleted implements the trip event sink.
func (Nop) TripDeleted(context.Context, uuid.UUID, string) error { return nil }
