package repository

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"
	"time"

	"github.com/popeskul/wa-inbox/internal/models"
)

// Repository interface defines all repository operations.
type Repository interface {
	// Ping checks database connectivity
	Ping() error

	Conversation() ConversationRepository
	Message() MessageRepository
	Agent() AgentRepository
	Contact() ContactRepository
}

// ConversationRepository holds the dashboard-owned conversation state.
type ConversationRepository interface {
	// GetConversation returns ErrNotFound when the conversation has no local row yet.
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	// UpdateConversation creates the row if it does not exist.
	UpdateConversation(ctx context.Context, id string, update models.ConversationUpdate) error
	DeleteConversation(ctx context.Context, id string) error
}

// MessageRepository defines message operations.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	UpdateMessageDelivery(ctx context.Context, id string, status models.DeliveryStatus, providerSID *string) error
	// RecentMessages returns up to limit messages created before the cursor, newest first.
	RecentMessages(ctx context.Context, conversationID string, limit int, cursor *models.MessageCursor) ([]*models.Message, error)
	// LastMessage returns nil when the conversation has no stored messages.
	LastMessage(ctx context.Context, conversationID string) (*models.Message, error)
	// LastCustomerMessageAt returns nil when the customer never wrote.
	LastCustomerMessageAt(ctx context.Context, conversationID string) (*time.Time, error)
	HasAgentReplies(ctx context.Context, conversationID string) (bool, error)
}

// AgentRepository reads the local agent directory.
type AgentRepository interface {
	GetAgent(ctx context.Context, id string) (*models.Agent, error)
}

// ContactRepository reads the local contacts store.
type ContactRepository interface {
	// FindContactByPhone returns nil when no contact matches the normalised phone.
	FindContactByPhone(ctx context.Context, phone string) (*models.Contact, error)
}
