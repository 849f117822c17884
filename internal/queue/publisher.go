package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/fantasy-auction/internal/auction"
)

const (
	dialTimeout    = 2 * time.Second
	redialCooldown = 5 * time.Second
)

// ErrBrokerUnavailable is returned without dialing while the publisher
// waits out the cooldown after a failed connect.
var ErrBrokerUnavailable = errors.New("broker unavailable")

// Publisher sends auction events to a durable queue on the default
// exchange.  The connection is opened lazily and re-opened after a
// failure, so a broker outage only costs the events published during it.
// After a failed connect no new dial is made for redialCooldown.
type Publisher struct {
	url   string
	queue string
	log   zerolog.Logger

	dial     func(url string) (*amqp.Connection, error)
	now      func() time.Time
	cooldown time.Duration

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

func NewPublisher(url, queue string, log zerolog.Logger) *Publisher {
	return &Publisher{
		url:      url,
		queue:    queue,
		log:      log.With().Str("component", "publisher").Logger(),
		dial:     dialBroker,
		now:      time.Now,
		cooldown: redialCooldown,
	}
}

func dialBroker(url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
}

// Publish implements auction.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, ev auction.Event) error {
	msg := NewAuctionEvent(ev)
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Type:         msg.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}
	return nil
}

// channel returns the open channel, dialing when there is none.  p.mu
// must be held.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	if now := p.now(); now.Before(p.retryAt) {
		return nil, fmt.Errorf("%w: retry in %s", ErrBrokerUnavailable, p.retryAt.Sub(now).Round(time.Millisecond))
	}
	conn, err := p.dial(p.url)
	if err != nil {
		p.retryAt = p.now().Add(p.cooldown)
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.log.Info().Str("queue", p.queue).Msg("connected to broker")
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close drops the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
