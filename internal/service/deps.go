package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/assignment"
	"github.com/popeskul/wa-inbox/internal/cache"
	"github.com/popeskul/wa-inbox/internal/config"
	"github.com/popeskul/wa-inbox/internal/identity"
	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/numbers"
	"github.com/popeskul/wa-inbox/internal/provider"
	"github.com/popeskul/wa-inbox/internal/repository"
)

// Deps are the collaborators shared by the conversation and message services.
// Client must already be wrapped by the resilient remote client.
type Deps struct {
	Config     *config.Config
	Repo       repository.Repository
	Client     provider.Client
	Cache      *cache.Service
	Classifier *identity.Classifier
	Identities *identity.Resolver
	Numbers    *numbers.Resolver
	Facts      *assignment.Resolver
	Publisher  InvalidationPublisher
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewDeps builds the resolvers from configuration.
func NewDeps(
	cfg *config.Config,
	repo repository.Repository,
	client provider.Client,
	caches *cache.Service,
	publisher InvalidationPublisher,
	logger *zap.Logger,
) Deps {
	return Deps{
		Config:     cfg,
		Repo:       repo,
		Client:     client,
		Cache:      caches,
		Classifier: identity.NewClassifier(cfg.Provider.AgentPrefixes),
		Identities: identity.NewResolver(repo.Contact(), cfg.Agents, logger),
		Numbers:    numbers.NewResolver(cfg.Numbers),
		Facts:      assignment.NewResolver(repo, logger),
		Publisher:  publisher,
		Logger:     logger,
		Now:        time.Now,
	}
}

func (d *Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// participants returns the cached, classified participant list.
func (d *Deps) participants(ctx context.Context, conversationID string) ([]models.Participant, error) {
	return d.Cache.Participants.GetOrFetch(ctx, conversationID, func(ctx context.Context) ([]models.Participant, error) {
		participants, err := d.Client.ListParticipants(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		return d.Classifier.ClassifyAll(participants), nil
	})
}

// authorRole classifies a provider message author against the conversation's participants.
func (d *Deps) authorRole(author string, participants []models.Participant) models.ParticipantRole {
	if author != "" {
		for i := range participants {
			if participants[i].Identity == author || participants[i].Address() == author {
				return participants[i].Role
			}
		}
	}

	switch {
	case d.Classifier.IsAgentIdentity(author):
		return models.RoleAgent
	case author == "" || author == "system":
		return models.RoleSystem
	default:
		return models.RoleCustomer
	}
}

// invalidate drops local cache entries and tells peers to do the same.
func (d *Deps) invalidate(ctx context.Context, conversationID string) error {
	if err := d.Cache.Invalidate(ctx, conversationID); err != nil {
		return err
	}

	if d.Publisher != nil {
		if err := d.Publisher.PublishInvalidation(ctx, conversationID); err != nil {
			d.Logger.Warn("Failed to publish cache invalidation",
				zap.String("conversation_id", conversationID),
				zap.Error(err))
		}
	}
	return nil
}
