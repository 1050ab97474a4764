package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// RecommendationsUpdatedPayload is consumed by the web tier to refresh a
// user's recommendation rail without polling.
type RecommendationsUpdatedPayload struct {
	RunID  string `json:"run_id"`
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

type DomainEventEnvelope struct {
	MessageID  string          `json:"message_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

const routingKeyUpdated = "recommendation.updated"

// amqpConn is the slice of amqp.Connection the publisher touches.
type amqpConn interface {
	Channel() (*amqp.Channel, error)
	IsClosed() bool
	Close() error
}

// Publisher publishes recommendation.updated events. The channel is lazily
// dialed and re-dialed after failures; publish errors are returned to the
// caller, which treats them as non-fatal.
type Publisher struct {
	url      string
	exchange string
	log      zerolog.Logger

	mu   sync.Mutex
	conn amqpConn
	ch   *amqp.Channel

	dial func(url string) (amqpConn, error)
}

func NewPublisher(url, exchange string, log zerolog.Logger) *Publisher {
	return &Publisher{
		url:      url,
		exchange: exchange,
		log:      log.With().Str("component", "mq_publisher").Logger(),
		dial: func(url string) (amqpConn, error) {
			return amqp.Dial(url)
		},
	}
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	// a stale connection from a failed publish must not leak
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn, p.ch = nil, nil
	}

	conn, err := p.dial(p.url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) RecommendationsUpdated(ctx context.Context, runID, userID uuid.UUID, count int) error {
	payload, err := json.Marshal(RecommendationsUpdatedPayload{
		RunID:  runID.String(),
		UserID: userID.String(),
		Count:  count,
	})
	if err != nil {
		return err
	}
	body, err := json.Marshal(DomainEventEnvelope{
		MessageID:  uuid.NewString(),
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	ch, err := p.channel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, p.exchange, routingKeyUpdated, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		// drop the channel so the next publish re-dials
		p.mu.Lock()
		p.ch = nil
		p.mu.Unlock()
		p.log.Warn().Err(err).Str("user_id", userID.String()).Msg("publish failed")
	}
	return err
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
