package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/cache"
	"github.com/popeskul/wa-inbox/internal/identity"
	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/provider"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	previewLimit     = 1
)

type conversationService struct {
	Deps
}

func NewConversationService(deps Deps) ConversationService {
	return &conversationService{Deps: deps}
}

// List returns one provider page of conversations, resolved in parallel and
// sorted for the dashboard. A conversation that fails to resolve is returned
// as a degraded minimal item instead of failing the page.
func (s *conversationService) List(ctx context.Context, params ListParams) (*models.ConversationList, error) {
	limit := clampLimit(params.Limit, defaultListLimit, maxListLimit)
	if params.Status != "" && !params.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, params.Status)
	}

	key := cache.ConversationsKey(params.AgentID, limit, "", previewLimit, params.Cursor)
	page, err := s.Cache.Conversations.GetOrFetch(ctx, key, func(ctx context.Context) (*models.ConversationPage, error) {
		return s.Client.ListConversations(ctx, limit, params.Cursor)
	})
	if err != nil {
		s.Logger.Error("Failed to fetch conversation page", zap.Error(err))
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	items := s.summarizeAll(ctx, page.Conversations)
	items = filterSummaries(items, params)
	SortSummaries(items)

	return &models.ConversationList{
		Items:      items,
		NextCursor: page.NextPageToken,
	}, nil
}

// Get resolves a single conversation with its customer, agent, number and messaging mode.
func (s *conversationService) Get(ctx context.Context, id string) (*ConversationDetail, error) {
	conv, err := s.fetchConversation(ctx, id)
	if err != nil {
		return nil, err
	}

	participants, err := s.participants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participants: %w", err)
	}

	res, err := s.resolve(ctx, *conv, participants)
	if err != nil {
		return nil, err
	}

	lastCustomer, err := s.Repo.Message().LastCustomerMessageAt(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read last customer message: %w", err)
	}

	detail := &ConversationDetail{
		Summary:      res.summary,
		Customer:     res.customer,
		Number:       res.number,
		Participants: participants,
		Mode:         messagingMode(lastCustomer, s.now(), s.Config.Session.Window),
	}
	if res.facts.Assignment != nil {
		agent := s.Identities.ResolveAgent(res.facts.Assignment.AgentID)
		agent.Name = res.facts.Assignment.AgentName
		detail.Agent = &agent
	}

	return detail, nil
}

// Create opens a provider conversation with the customer bound to the chosen number.
func (s *conversationService) Create(ctx context.Context, input CreateConversationInput) (*ConversationDetail, error) {
	phone := identity.NormalizePhone(input.CustomerPhone)
	if phone == "" {
		return nil, fmt.Errorf("%w: customer phone %q is not a phone number", ErrInvalidInput, input.CustomerPhone)
	}
	number := s.Deps.Numbers.Find(input.NumberID)
	if number == nil {
		return nil, fmt.Errorf("%w: number %q is not configured", ErrInvalidInput, input.NumberID)
	}

	name := strings.TrimSpace(input.CustomerName)
	attrs := models.DisplayAttributes{DisplayName: name, Phone: phone}

	friendlyName := name
	if friendlyName == "" {
		friendlyName = phone
	}

	conv, err := s.Client.CreateConversation(ctx, provider.CreateConversationParams{
		FriendlyName: friendlyName,
		Attributes:   attrs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	_, err = s.Client.CreateParticipant(ctx, conv.SID, provider.CreateParticipantParams{
		Address:      s.Config.Provider.ChannelPrefix + phone,
		ProxyAddress: number.RoutingAddress,
		Attributes:   models.DisplayAttributes{DisplayName: name, Role: string(models.RoleCustomer)},
	})
	if err != nil && !errors.Is(err, provider.ErrParticipantExists) {
		if delErr := s.Client.DeleteConversation(ctx, conv.SID); delErr != nil {
			s.Logger.Error("Failed to remove half-created conversation",
				zap.String("conversation_id", conv.SID),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to add customer participant: %w", err)
	}

	status := models.ConversationStatusOpen
	isNew := true
	update := models.ConversationUpdate{
		Status:        &status,
		IsNew:         &isNew,
		CustomerPhone: &phone,
		NumberID:      &number.ID,
	}
	if input.AgentID != "" {
		update.AgentID = &input.AgentID
	}
	if err := s.Repo.Conversation().UpdateConversation(ctx, conv.SID, update); err != nil {
		return nil, fmt.Errorf("failed to store conversation: %w", err)
	}

	if input.AgentID != "" {
		s.addAgentParticipant(ctx, conv.SID, input.AgentID)
	}

	if err := s.invalidate(ctx, conv.SID); err != nil {
		s.Logger.Warn("Failed to invalidate cache", zap.String("conversation_id", conv.SID), zap.Error(err))
	}

	s.Logger.Info("Conversation created",
		zap.String("conversation_id", conv.SID),
		zap.String("number_id", number.ID))

	return s.Get(ctx, conv.SID)
}

// Delete removes the conversation at the provider and its local state.
func (s *conversationService) Delete(ctx context.Context, id string) error {
	err := s.Client.DeleteConversation(ctx, id)
	if err != nil && !errors.Is(err, provider.ErrNotFound) {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	if err := s.Repo.Conversation().DeleteConversation(ctx, id); err != nil {
		return fmt.Errorf("failed to delete local conversation state: %w", err)
	}

	if err := s.invalidate(ctx, id); err != nil {
		s.Logger.Warn("Failed to invalidate cache", zap.String("conversation_id", id), zap.Error(err))
	}

	s.Logger.Info("Conversation deleted", zap.String("conversation_id", id))
	return nil
}

// Assign stores the assignment, then adds the agent as a provider participant.
// The provider step is best effort: the local store is the source of truth.
func (s *conversationService) Assign(ctx context.Context, id, agentID string) (*models.Assignment, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return nil, fmt.Errorf("%w: agent id is required", ErrInvalidInput)
	}

	if err := s.Repo.Conversation().UpdateConversation(ctx, id, models.ConversationUpdate{AgentID: &agentID}); err != nil {
		return nil, fmt.Errorf("failed to assign conversation: %w", err)
	}

	s.addAgentParticipant(ctx, id, agentID)

	if err := s.invalidate(ctx, id); err != nil {
		s.Logger.Warn("Failed to invalidate cache", zap.String("conversation_id", id), zap.Error(err))
	}

	assigned, err := s.Facts.ResolveAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	return assigned, nil
}

func (s *conversationService) Unassign(ctx context.Context, id string) error {
	return s.update(ctx, id, models.ConversationUpdate{ClearAgent: true})
}

func (s *conversationService) UpdateStatus(ctx context.Context, id string, status models.ConversationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.update(ctx, id, models.ConversationUpdate{Status: &status})
}

func (s *conversationService) SetPriority(ctx context.Context, id string, priority models.ConversationPriority) error {
	if !priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}
	return s.update(ctx, id, models.ConversationUpdate{Priority: &priority})
}

func (s *conversationService) SetPinned(ctx context.Context, id string, pinned bool) error {
	return s.update(ctx, id, models.ConversationUpdate{IsPinned: &pinned})
}

func (s *conversationService) MarkRead(ctx context.Context, id string) error {
	zero := 0
	return s.update(ctx, id, models.ConversationUpdate{UnreadCount: &zero})
}

func (s *conversationService) InvalidateCache(ctx context.Context, id string) error {
	return s.invalidate(ctx, id)
}

func (s *conversationService) Numbers() []models.ConfiguredNumber {
	return s.Deps.Numbers.All()
}

func (s *conversationService) update(ctx context.Context, id string, update models.ConversationUpdate) error {
	if err := s.Repo.Conversation().UpdateConversation(ctx, id, update); err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	if err := s.invalidate(ctx, id); err != nil {
		s.Logger.Warn("Failed to invalidate cache", zap.String("conversation_id", id), zap.Error(err))
	}
	return nil
}

func (s *conversationService) addAgentParticipant(ctx context.Context, id, agentID string) {
	_, err := s.Client.CreateParticipant(ctx, id, provider.CreateParticipantParams{
		Identity:   agentID,
		Attributes: models.DisplayAttributes{Role: string(models.RoleAgent)},
	})
	switch {
	case err == nil, errors.Is(err, provider.ErrParticipantExists):
		return
	default:
		s.Logger.Warn("Failed to add agent participant",
			zap.String("conversation_id", id),
			zap.String("agent_id", agentID),
			zap.Error(err))
	}
}

// fetchConversation reads one conversation through the conversation-list cache.
func (s *conversationService) fetchConversation(ctx context.Context, id string) (*models.ProviderConversation, error) {
	key := cache.ConversationsKey("", 1, id, previewLimit, "")
	page, err := s.Cache.Conversations.GetOrFetch(ctx, key, func(ctx context.Context) (*models.ConversationPage, error) {
		conv, err := s.Client.FetchConversation(ctx, id)
		if err != nil {
			return nil, err
		}
		return &models.ConversationPage{Conversations: []models.ProviderConversation{*conv}}, nil
	})
	if errors.Is(err, provider.ErrNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	if len(page.Conversations) == 0 {
		return nil, ErrConversationNotFound
	}
	return &page.Conversations[0], nil
}

func filterSummaries(items []models.ConversationSummary, params ListParams) []models.ConversationSummary {
	return lo.Filter(items, func(item models.ConversationSummary, _ int) bool {
		if params.Unassigned && item.AgentID != nil {
			return false
		}
		if params.AgentID != "" && (item.AgentID == nil || *item.AgentID != params.AgentID) {
			return false
		}
		if params.Status != "" && item.Status != params.Status {
			return false
		}
		if params.NumberID != "" && (item.NumberID == nil || *item.NumberID != params.NumberID) {
			return false
		}
		return true
	})
}

func clampLimit(limit, def, max int) int {
	switch {
	case limit <= 0:
		return def
	case limit > max:
		return max
	default:
		return limit
	}
}
