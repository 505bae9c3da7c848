package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Publisher announces local cache invalidations to the other instances.
type Publisher struct {
	conn    *nats.Conn
	subject string
	origin  string
}

// NewPublisher tags every message with origin so the sending instance can
// skip its own echo.
func NewPublisher(conn *nats.Conn, subject, origin string) *Publisher {
	return &Publisher{
		conn:    conn,
		subject: subject,
		origin:  origin,
	}
}

func (p *Publisher) PublishInvalidation(ctx context.Context, conversationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Invalidation{ConversationID: conversationID, Origin: p.origin}.encode()
	if err != nil {
		return fmt.Errorf("failed to encode invalidation: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}
