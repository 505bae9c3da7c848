package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var ErrAlreadySubscribed = errors.New("already subscribed")

const handleTimeout = 5 * time.Second

// Invalidator drops cached provider data. An empty id clears everything.
type Invalidator interface {
	Invalidate(ctx context.Context, conversationID string) error
}

// Subscriber applies invalidations published by other instances and by the
// webhook ingestion process to the local cache.
type Subscriber struct {
	conn        *nats.Conn
	subject     string
	origin      string
	invalidator Invalidator
	logger      *zap.Logger

	mu  sync.Mutex
	sub *nats.Subscription
}

func NewSubscriber(conn *nats.Conn, subject, origin string, invalidator Invalidator, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		conn:        conn,
		subject:     subject,
		origin:      origin,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (s *Subscriber) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		return ErrAlreadySubscribed
	}

	sub, err := s.conn.Subscribe(s.subject, s.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.subject, err)
	}
	s.sub = sub

	s.logger.Info("Listening for cache invalidations", zap.String("subject", s.subject))
	return nil
}

// Stop drains pending messages before unsubscribing.
func (s *Subscriber) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub == nil {
		return nil
	}
	err := s.sub.Drain()
	s.sub = nil
	return err
}

func (s *Subscriber) handle(msg *nats.Msg) {
	inv, err := decode(msg.Data)
	if err != nil {
		s.logger.Warn("Ignoring malformed invalidation", zap.ByteString("payload", msg.Data), zap.Error(err))
		return
	}

	if inv.Origin != "" && inv.Origin == s.origin {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := s.invalidator.Invalidate(ctx, inv.ConversationID); err != nil {
		s.logger.Error("Failed to apply remote invalidation",
			zap.String("conversation_id", inv.ConversationID),
			zap.Error(err))
		return
	}

	s.logger.Debug("Applied remote invalidation",
		zap.String("conversation_id", inv.ConversationID),
		zap.String("origin", inv.Origin))
}
