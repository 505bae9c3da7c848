package service

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/cache"
	"github.com/popeskul/wa-inbox/internal/config"
	"github.com/popeskul/wa-inbox/internal/provider"
	"github.com/popeskul/wa-inbox/internal/remote"
	"github.com/popeskul/wa-inbox/internal/repository"
)

type Service struct {
	Conversation ConversationService
	Message      MessageService
	Scheduler    SchedulerService
	Health       HealthService
}

// NewService wires the services. client must already be wrapped by caller; redisClient
// and publisher may be nil.
func NewService(
	cfg *config.Config,
	repo repository.Repository,
	client provider.Client,
	caller *remote.Caller,
	caches *cache.Service,
	redisClient *redis.Client,
	publisher InvalidationPublisher,
	logger *zap.Logger,
) *Service {
	deps := NewDeps(cfg, repo, client, caches, publisher, logger)

	schedulerService := NewSchedulerService(cfg, caches, logger)

	var breaker *remote.CircuitBreaker
	if caller != nil {
		breaker = caller.Breaker()
	}

	return &Service{
		Conversation: NewConversationService(deps),
		Message:      NewMessageService(deps),
		Scheduler:    schedulerService,
		Health:       NewHealthService(repo, redisClient, schedulerService, breaker),
	}
}
