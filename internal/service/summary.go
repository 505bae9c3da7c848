package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/assignment"
	"github.com/popeskul/wa-inbox/internal/cache"
	"github.com/popeskul/wa-inbox/internal/identity"
	"github.com/popeskul/wa-inbox/internal/metrics"
	"github.com/popeskul/wa-inbox/internal/models"
)

type resolved struct {
	summary  models.ConversationSummary
	customer models.Customer
	number   *models.ConfiguredNumber
	facts    *assignment.Facts
}

type lastMessage struct {
	text         string
	at           time.Time
	fromCustomer bool
}

// summarizeAll resolves every conversation of a page concurrently, one
// goroutine per conversation. Output order matches input order.
func (s *conversationService) summarizeAll(ctx context.Context, convs []models.ProviderConversation) []models.ConversationSummary {
	if len(convs) == 0 {
		return []models.ConversationSummary{}
	}

	mapper := iter.Mapper[models.ProviderConversation, models.ConversationSummary]{
		MaxGoroutines: len(convs),
	}
	return mapper.Map(convs, func(conv *models.ProviderConversation) models.ConversationSummary {
		return s.summarize(ctx, *conv)
	})
}

func (s *conversationService) summarize(ctx context.Context, conv models.ProviderConversation) (summary models.ConversationSummary) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ResolveFailures.WithLabelValues("panic").Inc()
			s.Logger.Error("Panic while resolving conversation",
				zap.String("conversation_id", conv.SID),
				zap.Any("panic", r))
			summary = s.minimalSummary(ctx, conv)
		}
	}()

	participants, err := s.participants(ctx, conv.SID)
	if err != nil {
		metrics.ResolveFailures.WithLabelValues("participants").Inc()
		s.Logger.Warn("Failed to fetch participants, using minimal summary",
			zap.String("conversation_id", conv.SID),
			zap.Error(err))
		return s.minimalSummary(ctx, conv)
	}

	res, err := s.resolve(ctx, conv, participants)
	if err != nil {
		metrics.ResolveFailures.WithLabelValues("local_state").Inc()
		s.Logger.Warn("Failed to resolve conversation state, using minimal summary",
			zap.String("conversation_id", conv.SID),
			zap.Error(err))
		return s.minimalSummary(ctx, conv)
	}
	return res.summary
}

// resolve builds the full summary once participants are known.
func (s *conversationService) resolve(ctx context.Context, conv models.ProviderConversation, participants []models.Participant) (*resolved, error) {
	customer := s.Identities.ResolveCustomer(ctx, identity.FindCustomer(participants))
	number, routingAddress := s.Deps.Numbers.ResolveParticipants(participants)

	facts, err := s.Facts.Resolve(ctx, conv.SID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve local state: %w", err)
	}

	summary := baseSummary(conv)
	summary.Title = conversationTitle(conv, customer)
	summary.CustomerID = customer.ID
	summary.CustomerPhone = customer.Phone
	summary.CustomerEmail = customer.Email
	summary.ProxyAddress = routingAddress
	if number != nil {
		summary.NumberID = &number.ID
		summary.NumberName = number.DisplayName
	}
	applyFacts(&summary, facts)

	last, err := s.lastMessage(ctx, conv.SID, participants)
	if err != nil {
		metrics.ResolveFailures.WithLabelValues("preview").Inc()
		s.Logger.Warn("Failed to resolve last message preview",
			zap.String("conversation_id", conv.SID),
			zap.Error(err))
	}
	if last != nil {
		summary.LastMessagePreview = last.text
		if last.at.After(summary.UpdatedAt) {
			summary.UpdatedAt = last.at
		}
		// Both inputs are final here: the author and the stored status.
		summary.IsUnreplied = last.fromCustomer && summary.Status == models.ConversationStatusOpen
	}

	return &resolved{
		summary:  summary,
		customer: customer,
		number:   number,
		facts:    facts,
	}, nil
}

// minimalSummary is the degraded row shown when resolution failed. It still
// carries local state when the store is reachable.
func (s *conversationService) minimalSummary(ctx context.Context, conv models.ProviderConversation) models.ConversationSummary {
	summary := baseSummary(conv)
	summary.Title = conversationTitle(conv, models.Customer{Source: models.CustomerSourceUnknown})
	summary.Degraded = true

	facts, err := s.Facts.Resolve(ctx, conv.SID)
	if err != nil {
		s.Logger.Debug("Local state unavailable for minimal summary",
			zap.String("conversation_id", conv.SID),
			zap.Error(err))
		return summary
	}
	applyFacts(&summary, facts)
	return summary
}

// lastMessage prefers the local store and falls back to a one-message provider fetch.
func (s *conversationService) lastMessage(ctx context.Context, id string, participants []models.Participant) (*lastMessage, error) {
	local, err := s.Repo.Message().LastMessage(ctx, id)
	if err != nil {
		s.Logger.Warn("Failed to read last local message, asking provider",
			zap.String("conversation_id", id),
			zap.Error(err))
	}
	if local != nil {
		text := previewText(local.Content, local.Media)
		if text == "" {
			text = placeholder("")
		}
		return &lastMessage{
			text:         text,
			at:           local.CreatedAt,
			fromCustomer: local.SenderType == models.SenderCustomer,
		}, nil
	}

	msgs, err := s.Cache.Messages.GetOrFetch(ctx, cache.MessagesKey(id, previewLimit), func(ctx context.Context) ([]models.ProviderMessage, error) {
		return s.Client.ListMessages(ctx, id, previewLimit)
	})
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	msg := msgs[0]
	text := previewText(msg.Body, providerMedia(s.Config.Media.ProxyURLTemplate, id, &msg))
	if text == "" {
		text = placeholder(providerMediaKind(&msg))
	}

	return &lastMessage{
		text:         text,
		at:           msg.CreatedAt,
		fromCustomer: s.authorRole(msg.Author, participants) == models.RoleCustomer,
	}, nil
}

func baseSummary(conv models.ProviderConversation) models.ConversationSummary {
	return models.ConversationSummary{
		ID:        conv.SID,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		Status:    models.ConversationStatusOpen,
		Priority:  models.ConversationPriorityNormal,
	}
}

func applyFacts(summary *models.ConversationSummary, facts *assignment.Facts) {
	summary.Status = facts.Status
	summary.Priority = facts.Priority
	summary.IsPinned = facts.Pinned
	summary.IsNew = facts.New
	summary.UnreadCount = facts.UnreadCount
	if facts.Assignment != nil {
		agentID := facts.Assignment.AgentID
		agentName := facts.Assignment.AgentName
		summary.AgentID = &agentID
		summary.AgentName = &agentName
	}
}

func conversationTitle(conv models.ProviderConversation, customer models.Customer) string {
	if customer.Source != models.CustomerSourceUnknown && customer.Name != "" {
		return customer.Name
	}
	if conv.Attributes.DisplayName != "" {
		return conv.Attributes.DisplayName
	}
	if conv.FriendlyName != "" {
		return conv.FriendlyName
	}
	return identity.UnknownCustomer
}

func statusRank(status models.ConversationStatus) int {
	switch status {
	case models.ConversationStatusOpen:
		return 0
	case models.ConversationStatusPending:
		return 1
	default:
		return 2
	}
}

// SortSummaries orders pinned first; unpinned by status, then new before
// not-new; then most recently updated, then id.
func SortSummaries(items []models.ConversationSummary) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]

		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if !a.IsPinned {
			if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
				return ra < rb
			}
			if a.IsNew != b.IsNew {
				return a.IsNew
			}
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}
