package service_test

import (
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/cache"
	"github.com/popeskul/wa-inbox/internal/config"
	"github.com/popeskul/wa-inbox/internal/models"
	providermocks "github.com/popeskul/wa-inbox/internal/provider/mocks"
	repomocks "github.com/popeskul/wa-inbox/internal/repository/mocks"
	"github.com/popeskul/wa-inbox/internal/service"
	servicemocks "github.com/popeskul/wa-inbox/internal/service/mocks"
)

const (
	routingAddress = "whatsapp:+15551230000"
	customerAddr   = "whatsapp:+15550001111"
)

var testNow = time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

type harness struct {
	repo      *repomocks.MockRepository
	convs     *repomocks.MockConversationRepository
	messages  *repomocks.MockMessageRepository
	agents    *repomocks.MockAgentRepository
	contacts  *repomocks.MockContactRepository
	client    *providermocks.MockClient
	publisher *servicemocks.MockInvalidationPublisher
	store     *cache.MemoryStore
	caches    *cache.Service
	deps      service.Deps
}

func testConfig() *config.Config {
	return &config.Config{
		Provider: config.ProviderConfig{
			AgentPrefixes: []string{"agent-", "admin"},
			ChannelPrefix: "whatsapp:",
		},
		Cache: config.CacheConfig{
			Backend:          "memory",
			ConversationsTTL: time.Minute,
			ParticipantsTTL:  time.Minute,
			MessagesTTL:      time.Minute,
			StaleRetention:   time.Hour,
			PruneInterval:    time.Minute,
		},
		Numbers: []models.ConfiguredNumber{
			{ID: "main", RoutingAddress: routingAddress, DisplayName: "Main Line", Department: "sales"},
		},
		Agents: config.AgentsConfig{
			DefaultDepartment: "support",
			DefaultSkills:     []string{"whatsapp"},
		},
		Media:   config.MediaConfig{ProxyURLTemplate: "/api/media/{conversation_id}/{media_id}"},
		Session: config.SessionConfig{Window: 24 * time.Hour},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		repo:      repomocks.NewMockRepository(ctrl),
		convs:     repomocks.NewMockConversationRepository(ctrl),
		messages:  repomocks.NewMockMessageRepository(ctrl),
		agents:    repomocks.NewMockAgentRepository(ctrl),
		contacts:  repomocks.NewMockContactRepository(ctrl),
		client:    providermocks.NewMockClient(ctrl),
		publisher: servicemocks.NewMockInvalidationPublisher(ctrl),
		store:     cache.NewMemoryStore(),
	}

	h.repo.EXPECT().Conversation().Return(h.convs).AnyTimes()
	h.repo.EXPECT().Message().Return(h.messages).AnyTimes()
	h.repo.EXPECT().Agent().Return(h.agents).AnyTimes()
	h.repo.EXPECT().Contact().Return(h.contacts).AnyTimes()
	h.publisher.EXPECT().PublishInvalidation(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := testConfig()
	logger := zap.NewNop()
	h.caches = cache.NewService(h.store, cfg.Cache, logger)
	h.deps = service.NewDeps(cfg, h.repo, h.client, h.caches, h.publisher, logger)
	h.deps.Now = func() time.Time { return testNow }
	return h
}

func customerParticipant(name string) models.Participant {
	return models.Participant{
		SID:        "MB-customer",
		Binding:    &models.MessagingBinding{Address: customerAddr, ProxyAddress: routingAddress},
		Attributes: models.DisplayAttributes{DisplayName: name},
	}
}

func agentParticipant(identity string) models.Participant {
	return models.Participant{SID: "MB-" + identity, Identity: identity}
}

func providerConversation(sid string, updated time.Time) models.ProviderConversation {
	return models.ProviderConversation{
		SID:          sid,
		FriendlyName: sid,
		State:        "active",
		CreatedAt:    updated.Add(-time.Hour),
		UpdatedAt:    updated,
	}
}

func ptr[T any](v T) *T {
	return &v
}
