package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/dasiro/saferoute/internal/core/domain"
)

// Subscriber implements ports.RouteLogSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS for durable consumption.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStreams(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeRouteLogs delivers each audit entry to handler. Entries that fail
// to decode, or that handler rejects with a ValidationError, are terminated;
// other handler errors are redelivered up to 3 times.
func (s *Subscriber) SubscribeRouteLogs(ctx context.Context, handler func(ctx context.Context, entry *domain.RouteLogEntry) error) error {
	sub, err := s.js.Subscribe(SubjectRouteAudit, func(msg *nats.Msg) {
		var entry domain.RouteLogEntry
		if err := json.Unmarshal(msg.Data, &entry); err != nil {
			slog.Warn("drop malformed audit entry", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &entry); err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				slog.Warn("drop invalid audit entry", "id", entry.ID, "error", err)
				_ = msg.Term()
				return
			}
			slog.Warn("audit entry not stored", "id", entry.ID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("route-auditor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
