package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dasiro/saferoute/internal/core/domain"
)

// Subjects and streams.
const (
	SubjectRouteAudit = "saferoute.audit.route"
	// SubjectHazardAll carries hazard zone events published by the ingestor;
	// the WebSocket relay forwards them to clients.
	SubjectHazardAll = "saferoute.hazard.>"
	// SubjectHazardPrefix is followed by the lower-cased hazard status.
	SubjectHazardPrefix = "saferoute.hazard."

	streamAudit = "ROUTE_AUDIT"
)

// Publisher implements ports.RouteLogWriter using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
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

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	streams := []nats.StreamConfig{
		{
			Name:       streamAudit,
			Subjects:   []string{SubjectRouteAudit},
			Retention:  nats.WorkQueuePolicy,
			MaxAge:     7 * 24 * time.Hour,
			Storage:    nats.FileStorage,
			Duplicates: 2 * time.Minute,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// stream may already exist
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

// Append publishes a route audit entry and waits for the JetStream ack.
func (p *Publisher) Append(ctx context.Context, entry *domain.RouteLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	// Msg ID makes redelivered publishes idempotent within the dedupe window.
	_, err = p.js.Publish(SubjectRouteAudit, data, nats.Context(ctx), nats.MsgId(entry.ID))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// HazardSubject returns the subject events for zones of status s are published on.
func HazardSubject(s domain.HazardStatus) string {
	return SubjectHazardPrefix + strings.ToLower(string(s))
}

// HazardEvents publishes hazard zone events on plain NATS subjects. Events are
// live notifications only and are not persisted in a stream.
type HazardEvents struct {
	conn *nats.Conn
}

// NewHazardEvents wraps an existing connection.
func NewHazardEvents(conn *nats.Conn) *HazardEvents {
	return &HazardEvents{conn: conn}
}

// Publish announces each zone on its status subject and flushes once.
func (h *HazardEvents) Publish(ctx context.Context, zones []domain.HazardZone) error {
	for i := range zones {
		data, err := json.Marshal(&zones[i])
		if err != nil {
			return err
		}
		if err := h.conn.Publish(HazardSubject(zones[i].Status), data); err != nil {
			return fmt.Errorf("publish hazard %d: %w", i, err)
		}
	}
	return h.conn.FlushWithContext(ctx)
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return connect(url)
}

func connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("saferoute"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}
