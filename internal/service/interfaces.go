package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"time"

	"github.com/popeskul/wa-inbox/internal/models"
)

type ConversationService interface {
	List(ctx context.Context, params ListParams) (*models.ConversationList, error)
	Get(ctx context.Context, id string) (*ConversationDetail, error)
	Create(ctx context.Context, input CreateConversationInput) (*ConversationDetail, error)
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, id, agentID string) (*models.Assignment, error)
	Unassign(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status models.ConversationStatus) error
	SetPriority(ctx context.Context, id string, priority models.ConversationPriority) error
	SetPinned(ctx context.Context, id string, pinned bool) error
	MarkRead(ctx context.Context, id string) error
	// InvalidateCache drops cached provider data for one conversation, or all of it when id is empty.
	InvalidateCache(ctx context.Context, id string) error
	Numbers() []models.ConfiguredNumber
}

type MessageService interface {
	List(ctx context.Context, conversationID string, limit int, cursor *models.MessageCursor) (*models.MessagePage, error)
	Send(ctx context.Context, conversationID string, input SendMessageInput) (*models.MessageView, error)
	MessagingMode(ctx context.Context, conversationID string) (*MessagingMode, error)
}

type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool
	// LastRun reports when the prune task last finished and with which error.
	LastRun() (time.Time, error)
}

type HealthService interface {
	GetHealth(ctx context.Context) *HealthStatus
}

// InvalidationPublisher tells other server instances to drop cached data.
type InvalidationPublisher interface {
	PublishInvalidation(ctx context.Context, conversationID string) error
}
