// Package provider talks to the messaging provider's Conversations REST API.
package provider

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

import (
	"context"

	"github.com/popeskul/wa-inbox/internal/models"
)

// Client is the set of provider operations the sync engine consumes.
type Client interface {
	ListConversations(ctx context.Context, pageSize int, pageToken string) (*models.ConversationPage, error)
	FetchConversation(ctx context.Context, sid string) (*models.ProviderConversation, error)
	CreateConversation(ctx context.Context, params CreateConversationParams) (*models.ProviderConversation, error)
	DeleteConversation(ctx context.Context, sid string) error
	ListParticipants(ctx context.Context, conversationSID string) ([]models.Participant, error)
	CreateParticipant(ctx context.Context, conversationSID string, params CreateParticipantParams) (*models.Participant, error)
	// ListMessages returns up to pageSize messages, newest first.
	ListMessages(ctx context.Context, conversationSID string, pageSize int) ([]models.ProviderMessage, error)
	CreateMessage(ctx context.Context, conversationSID string, params CreateMessageParams) (*models.ProviderMessage, error)
}

type CreateConversationParams struct {
	FriendlyName string
	Attributes   models.DisplayAttributes
}

// CreateParticipantParams adds either a chat identity or a messaging binding.
type CreateParticipantParams struct {
	Identity     string
	Address      string
	ProxyAddress string
	Attributes   models.DisplayAttributes
}

// CreateMessageParams sends free-form text (Body) or a pre-approved template (ContentSID).
type CreateMessageParams struct {
	Author           string
	Body             string
	ContentSID       string
	ContentVariables map[string]string
	Attributes       models.DisplayAttributes
}
