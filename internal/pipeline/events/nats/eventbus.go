package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/cinelake/cinelake/pkg/events"
	"github.com/cinelake/cinelake/pkg/interfaces"
)

// EventBus publishes pipeline events to NATS so external monitors can
// follow stage completions without polling the control log.
type EventBus struct {
	conn    *nats.Conn
	prefix  string
	logger  interfaces.Logger
	subs    []*nats.Subscription
	mu      sync.Mutex
	wg      sync.WaitGroup
	timeout time.Duration
}

// Connect creates an event bus backed by a NATS connection.
func Connect(url, subjectPrefix string, logger interfaces.Logger) (*EventBus, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &EventBus{
		conn:    conn,
		prefix:  subjectPrefix,
		logger:  logger,
		timeout: 5 * time.Second,
	}, nil
}

// Publish publishes an event to its subject.
func (b *EventBus) Publish(ctx context.Context, event interfaces.Event) error {
	data, err := json.Marshal(envelope{
		Type:        event.EventType(),
		Timestamp:   event.Timestamp(),
		AggregateID: event.AggregateID(),
		Data:        eventData(event),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := b.subject(event.EventType())
	if err := b.conn.Publish(subject, data); err != nil {
		b.logger.Error("Failed to publish event",
			interfaces.String("subject", subject),
			interfaces.Error(err))
		return err
	}
	return nil
}

// PublishAsync publishes an event asynchronously.
func (b *EventBus) PublishAsync(ctx context.Context, event interfaces.Event) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.Publish(ctx, event); err != nil {
			b.logger.Error("Async event publish failed",
				interfaces.String("event_type", event.EventType()),
				interfaces.Error(err))
		}
	}()
}

// Subscribe registers a handler for a specific event type.
func (b *EventBus) Subscribe(eventType string, handler interfaces.EventHandler) error {
	sub, err := b.conn.Subscribe(b.subject(eventType), func(msg *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			b.logger.Error("Failed to decode event",
				interfaces.String("subject", msg.Subject),
				interfaces.Error(err))
			return
		}
		event := &events.BaseEvent{
			Type:  env.Type,
			Time:  env.Timestamp,
			AggID: env.AggregateID,
			Data:  env.Data,
		}
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.Error("Event handler failed",
				interfaces.String("event_type", env.Type),
				interfaces.Error(err))
		}
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return nil
}

// Stop waits for in-flight publishes and drains the connection.
func (b *EventBus) Stop() error {
	b.wg.Wait()

	b.mu.Lock()
	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil
	b.mu.Unlock()

	return b.conn.Drain()
}

func (b *EventBus) subject(eventType string) string {
	if b.prefix == "" {
		return eventType
	}
	return b.prefix + "." + eventType
}

type envelope struct {
	Type        string                 `json:"type"`
	Timestamp   int64                  `json:"timestamp"`
	AggregateID string                 `json:"aggregate_id"`
	Data        map[string]interface{} `json:"data"`
}

func eventData(event interfaces.Event) map[string]interface{} {
	if base, ok := event.(*events.BaseEvent); ok {
		return base.Data
	}
	return nil
}
