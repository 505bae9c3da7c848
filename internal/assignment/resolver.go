// Package assignment reads the dashboard-owned facts about a conversation:
// who it is assigned to, its status, pin and new flags. The local store is the
// only source; the provider has no notion of an unassigned conversation.
package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/repository"
)

// Facts is the resolved local state of one conversation.
type Facts struct {
	Assignment  *models.Assignment
	Status      models.ConversationStatus
	Priority    models.ConversationPriority
	Pinned      bool
	New         bool
	UnreadCount int
}

type Resolver struct {
	repo   repository.Repository
	logger *zap.Logger
}

func NewResolver(repo repository.Repository, logger *zap.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: logger,
	}
}

// conversation returns the stored row, or the defaults a missing row stands for.
func (r *Resolver) conversation(ctx context.Context, id string) (*models.Conversation, error) {
	conv, err := r.repo.Conversation().GetConversation(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.Conversation{
			ID:       id,
			Status:   models.ConversationStatusOpen,
			Priority: models.ConversationPriorityNormal,
			IsNew:    true,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation state: %w", err)
	}
	return conv, nil
}

// Resolve loads every fact with a single row read.
func (r *Resolver) Resolve(ctx context.Context, id string) (*Facts, error) {
	conv, err := r.conversation(ctx, id)
	if err != nil {
		return nil, err
	}

	assignment, err := r.assignmentFor(ctx, conv)
	if err != nil {
		return nil, err
	}

	isNew, err := r.newFor(ctx, conv)
	if err != nil {
		return nil, err
	}

	return &Facts{
		Assignment:  assignment,
		Status:      conv.Status,
		Priority:    lo.Ternary(conv.Priority == "", models.ConversationPriorityNormal, conv.Priority),
		Pinned:      conv.IsPinned,
		New:         isNew,
		UnreadCount: conv.UnreadCount,
	}, nil
}

// ResolveAssignment returns nil for an unassigned conversation.
func (r *Resolver) ResolveAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	conv, err := r.conversation(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.assignmentFor(ctx, conv)
}

func (r *Resolver) ResolveStatus(ctx context.Context, id string) (models.ConversationStatus, error) {
	conv, err := r.conversation(ctx, id)
	if err != nil {
		return "", err
	}
	return conv.Status, nil
}

func (r *Resolver) ResolvePinned(ctx context.Context, id string) (bool, error) {
	conv, err := r.conversation(ctx, id)
	if err != nil {
		return false, err
	}
	return conv.IsPinned, nil
}

// ResolveNew is true only for a conversation flagged new, still open, and
// never answered by an agent.
func (r *Resolver) ResolveNew(ctx context.Context, id string) (bool, error) {
	conv, err := r.conversation(ctx, id)
	if err != nil {
		return false, err
	}
	return r.newFor(ctx, conv)
}

func (r *Resolver) assignmentFor(ctx context.Context, conv *models.Conversation) (*models.Assignment, error) {
	if !conv.AgentID.Valid || conv.AgentID.String == "" {
		return nil, nil
	}

	agentID := conv.AgentID.String
	agent, err := r.repo.Agent().GetAgent(ctx, agentID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return &models.Assignment{AgentID: agentID, AgentName: agentID}, nil
	case err != nil:
		r.logger.Warn("Agent lookup failed, using id as name",
			zap.String("agent_id", agentID),
			zap.Error(err))
		return &models.Assignment{AgentID: agentID, AgentName: agentID}, nil
	}

	name := agent.Name
	if name == "" {
		name = agentID
	}
	return &models.Assignment{AgentID: agentID, AgentName: name}, nil
}

func (r *Resolver) newFor(ctx context.Context, conv *models.Conversation) (bool, error) {
	if !conv.IsNew || conv.Status != models.ConversationStatusOpen {
		return false, nil
	}

	replied, err := r.repo.Message().HasAgentReplies(ctx, conv.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check agent replies: %w", err)
	}
	return !replied, nil
}
