package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/config"
	"github.com/popeskul/wa-inbox/internal/models"
)

const (
	TableConversations = "conversations"
	TableParticipants  = "participants"
	TableMessages      = "messages"

	keySeparator = "|"
)

// Service owns the three provider caches. One instance is built per process
// and handed to every component that reads from the provider.
type Service struct {
	store     Store
	retention time.Duration
	logger    *zap.Logger

	Conversations *Table[*models.ConversationPage]
	Participants  *Table[[]models.Participant]
	Messages      *Table[[]models.ProviderMessage]
}

func NewService(store Store, cfg config.CacheConfig, logger *zap.Logger) *Service {
	return &Service{
		store:         store,
		retention:     cfg.StaleRetention,
		logger:        logger,
		Conversations: NewTable[*models.ConversationPage](TableConversations, store, cfg.ConversationsTTL, logger),
		Participants:  NewTable[[]models.Participant](TableParticipants, store, cfg.ParticipantsTTL, logger),
		Messages:      NewTable[[]models.ProviderMessage](TableMessages, store, cfg.MessagesTTL, logger),
	}
}

// ConversationsKey identifies one cached conversation-list page.
func ConversationsKey(agentID string, limit int, conversationID string, messageLimit int, cursor string) string {
	return strings.Join([]string{
		agentID,
		strconv.Itoa(limit),
		conversationID,
		strconv.Itoa(messageLimit),
		cursor,
	}, keySeparator)
}

// MessagesKey identifies one cached message page.
func MessagesKey(conversationID string, messageLimit int) string {
	return conversationID + keySeparator + strconv.Itoa(messageLimit)
}

// Invalidate removes every entry whose key mentions the conversation, plus all
// conversation-list pages, since any page may hold the changed conversation.
// An empty id clears everything.
func (s *Service) Invalidate(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return s.Clear(ctx)
	}

	var errs []error
	if err := s.store.DeleteMatching(ctx, conversationID); err != nil {
		errs = append(errs, err)
	}
	if err := s.Conversations.Purge(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to invalidate cache for %s: %w", conversationID, err)
	}

	s.logger.Debug("Cache invalidated", zap.String("conversation_id", conversationID))
	return nil
}

// Clear drops every cached entry.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	s.logger.Debug("Cache cleared")
	return nil
}

// Prune removes entries older than the stale retention window. Stale entries
// inside the window are kept so they can be served when the provider is down.
func (s *Service) Prune(ctx context.Context) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	return s.store.Prune(ctx, time.Now().Add(-s.retention))
}
