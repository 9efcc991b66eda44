package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the NATS subject publish events travel on.
const DefaultSubject = "contentsite.publish"

// NATS is a Bus backed by core NATS publish/subscribe, so every site instance
// sees edits made through any other.
type NATS struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// NewNATS connects to url and uses subject (DefaultSubject when empty).
func NewNATS(url, subject string, logger *slog.Logger) (*NATS, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name("contentsite"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("events: connect to NATS: %w", err)
	}
	logger.Info("NATS event bus connected", "url", url, "subject", subject)
	return &NATS{conn: conn, subject: subject, logger: logger}, nil
}

// Publish sends ev as JSON and flushes so the event leaves before returning.
func (n *NATS) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: marshal event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("events: publish: %w", err)
	}
	// FlushWithContext refuses contexts without a deadline.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("events: flush: %w", err)
	}
	return nil
}

// Subscribe decodes every message on the subject and passes it to h.
// Undecodable messages are logged and dropped.
func (n *NATS) Subscribe(h Handler) (func(), error) {
	sub, err := n.conn.Subscribe(n.subject, func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			n.logger.Warn("Dropping malformed publish event", "error", err)
			return
		}
		h(ev)
	})
	if err != nil {
		return func() {}, fmt.Errorf("events: subscribe: %w", err)
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil {
			n.logger.Debug("NATS unsubscribe failed", "error", err)
		}
	}, nil
}

// Close drains pending messages and closes the connection.
func (n *NATS) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
