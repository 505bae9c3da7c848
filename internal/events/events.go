// Package events fans cache invalidations out to every server instance over NATS.
// The webhook ingestion process publishes on the same subject when provider
// data changes.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Invalidation is the payload on the invalidate subject. An empty
// ConversationID clears every cached entry.
type Invalidation struct {
	ConversationID string `json:"conversation_id"`
	Origin         string `json:"origin,omitempty"`
}

func (i Invalidation) encode() ([]byte, error) {
	return json.Marshal(i)
}

func decode(data []byte) (Invalidation, error) {
	var inv Invalidation
	if err := json.Unmarshal(data, &inv); err != nil {
		return Invalidation{}, fmt.Errorf("invalid invalidation payload: %w", err)
	}
	return inv, nil
}

// Connect dials NATS and keeps reconnecting for the life of the process.
func Connect(url string, logger *zap.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("wa-inbox"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			logger.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}
