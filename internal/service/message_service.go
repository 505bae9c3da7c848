package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/cache"
	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/provider"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 200

	SourceLocal    = "local"
	SourceProvider = "provider"
)

type messageService struct {
	Deps
}

func NewMessageService(deps Deps) MessageService {
	return &messageService{Deps: deps}
}

// List returns messages oldest first. Stored messages are authoritative; the
// provider is only asked when nothing is stored for the conversation.
func (s *messageService) List(ctx context.Context, conversationID string, limit int, cursor *models.MessageCursor) (*models.MessagePage, error) {
	limit = clampLimit(limit, defaultMessageLimit, maxMessageLimit)

	rows, err := s.Repo.Message().RecentMessages(ctx, conversationID, limit, cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	if len(rows) > 0 || cursor != nil {
		page := &models.MessagePage{
			Messages: make([]models.MessageView, 0, len(rows)),
			Source:   SourceLocal,
		}
		for _, row := range lo.Reverse(rows) {
			page.Messages = append(page.Messages, localView(row))
		}
		if len(rows) == limit {
			oldest := page.Messages[0]
			page.NextBefore = &oldest.CreatedAt
			page.NextBeforeID = &oldest.ID
		}
		return page, nil
	}

	return s.listFromProvider(ctx, conversationID, limit)
}

func (s *messageService) listFromProvider(ctx context.Context, conversationID string, limit int) (*models.MessagePage, error) {
	msgs, err := s.Cache.Messages.GetOrFetch(ctx, cache.MessagesKey(conversationID, limit), func(ctx context.Context) ([]models.ProviderMessage, error) {
		return s.Client.ListMessages(ctx, conversationID, limit)
	})
	if errors.Is(err, provider.ErrNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider messages: %w", err)
	}

	participants, err := s.participants(ctx, conversationID)
	if err != nil {
		s.Logger.Warn("Failed to fetch participants, classifying authors by identity only",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
	}

	page := &models.MessagePage{
		Messages: make([]models.MessageView, 0, len(msgs)),
		Source:   SourceProvider,
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		page.Messages = append(page.Messages, s.providerView(conversationID, &msgs[i], participants))
	}

	s.Logger.Debug("Served messages from provider fallback",
		zap.String("conversation_id", conversationID),
		zap.Int("count", len(page.Messages)))
	return page, nil
}

func (s *messageService) providerView(conversationID string, msg *models.ProviderMessage, participants []models.Participant) models.MessageView {
	media := providerMedia(s.Config.Media.ProxyURLTemplate, conversationID, msg)

	content := strings.TrimSpace(msg.Body)
	if content == "" && len(media) == 0 {
		content = placeholder(providerMediaKind(msg))
	}

	sender := models.SenderCustomer
	if s.authorRole(msg.Author, participants) == models.RoleAgent {
		sender = models.SenderAgent
	}

	sid := msg.SID
	view := models.MessageView{
		ID:                 msg.SID,
		ConversationID:     conversationID,
		SenderType:         sender,
		SenderID:           msg.Author,
		Content:            content,
		CreatedAt:          msg.CreatedAt,
		ProviderMessageSID: &sid,
		Media:              media,
	}
	if sender == models.SenderAgent {
		status := msg.Delivery.Status()
		view.DeliveryStatus = &status
	}
	return view
}

// Send stores the message as "sending", hands it to the provider and records
// the outcome. Free-form text is refused outside the customer window.
func (s *messageService) Send(ctx context.Context, conversationID string, input SendMessageInput) (*models.MessageView, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" && input.TemplateSID == "" {
		return nil, ErrEmptyMessage
	}
	if strings.TrimSpace(input.AgentID) == "" {
		return nil, fmt.Errorf("%w: agent id is required", ErrInvalidInput)
	}

	if input.TemplateSID == "" {
		mode, err := s.MessagingMode(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		if mode.TemplateRequired {
			return nil, ErrTemplateRequired
		}
	}

	content := body
	if content == "" {
		content = placeholderTemplate
	}

	msg := &models.Message{
		ID:             "msg_" + ulid.Make().String(),
		ConversationID: conversationID,
		SenderType:     models.SenderAgent,
		SenderID:       input.AgentID,
		Content:        content,
		DeliveryStatus: sql.NullString{String: string(models.DeliveryStatusSending), Valid: true},
		CreatedAt:      s.now(),
	}
	if err := s.Repo.Message().CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store outgoing message: %w", err)
	}

	sent, err := s.Client.CreateMessage(ctx, conversationID, provider.CreateMessageParams{
		Author:           input.AgentID,
		Body:             body,
		ContentSID:       input.TemplateSID,
		ContentVariables: input.TemplateVariables,
	})
	if err != nil {
		if updErr := s.Repo.Message().UpdateMessageDelivery(ctx, msg.ID, models.DeliveryStatusFailed, nil); updErr != nil {
			s.Logger.Error("Failed to mark message as failed",
				zap.String("message_id", msg.ID),
				zap.Error(updErr))
		}
		s.Logger.Error("Failed to send message",
			zap.String("conversation_id", conversationID),
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to send message %s: %w", msg.ID, err)
	}

	if err := s.Repo.Message().UpdateMessageDelivery(ctx, msg.ID, models.DeliveryStatusSent, &sent.SID); err != nil {
		s.Logger.Error("Failed to record sent message",
			zap.String("message_id", msg.ID),
			zap.String("provider_sid", sent.SID),
			zap.Error(err))
	}

	if err := s.invalidate(ctx, conversationID); err != nil {
		s.Logger.Warn("Failed to invalidate cache", zap.String("conversation_id", conversationID), zap.Error(err))
	}

	s.Logger.Info("Message sent",
		zap.String("conversation_id", conversationID),
		zap.String("message_id", msg.ID),
		zap.String("provider_sid", sent.SID),
		zap.Bool("template", input.TemplateSID != ""))

	msg.DeliveryStatus = sql.NullString{String: string(models.DeliveryStatusSent), Valid: true}
	msg.ProviderMessageSID = sql.NullString{String: sent.SID, Valid: true}
	view := msg.View()
	return &view, nil
}

// MessagingMode is computed from the store on every call.
func (s *messageService) MessagingMode(ctx context.Context, conversationID string) (*MessagingMode, error) {
	last, err := s.Repo.Message().LastCustomerMessageAt(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read last customer message: %w", err)
	}
	return messagingMode(last, s.now(), s.Config.Session.Window), nil
}
