package remote

import (
	"context"

	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/provider"
)

// Client decorates a provider.Client so that every call goes through a Caller.
type Client struct {
	next   provider.Client
	caller *Caller
}

var _ provider.Client = (*Client)(nil)

func NewClient(next provider.Client, caller *Caller) *Client {
	return &Client{next: next, caller: caller}
}

func (c *Client) ListConversations(ctx context.Context, pageSize int, pageToken string) (*models.ConversationPage, error) {
	return Do(ctx, c.caller, "list_conversations", func(ctx context.Context) (*models.ConversationPage, error) {
		return c.next.ListConversations(ctx, pageSize, pageToken)
	})
}

func (c *Client) FetchConversation(ctx context.Context, sid string) (*models.ProviderConversation, error) {
	return Do(ctx, c.caller, "fetch_conversation", func(ctx context.Context) (*models.ProviderConversation, error) {
		return c.next.FetchConversation(ctx, sid)
	})
}

func (c *Client) CreateConversation(ctx context.Context, params provider.CreateConversationParams) (*models.ProviderConversation, error) {
	return DoMutation(ctx, c.caller, "create_conversation", func(ctx context.Context) (*models.ProviderConversation, error) {
		return c.next.CreateConversation(ctx, params)
	})
}

func (c *Client) DeleteConversation(ctx context.Context, sid string) error {
	_, err := Do(ctx, c.caller, "delete_conversation", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.next.DeleteConversation(ctx, sid)
	})
	return err
}

func (c *Client) ListParticipants(ctx context.Context, conversationSID string) ([]models.Participant, error) {
	return Do(ctx, c.caller, "list_participants", func(ctx context.Context) ([]models.Participant, error) {
		return c.next.ListParticipants(ctx, conversationSID)
	})
}

func (c *Client) CreateParticipant(ctx context.Context, conversationSID string, params provider.CreateParticipantParams) (*models.Participant, error) {
	return DoMutation(ctx, c.caller, "create_participant", func(ctx context.Context) (*models.Participant, error) {
		return c.next.CreateParticipant(ctx, conversationSID, params)
	})
}

func (c *Client) ListMessages(ctx context.Context, conversationSID string, pageSize int) ([]models.ProviderMessage, error) {
	return Do(ctx, c.caller, "list_messages", func(ctx context.Context) ([]models.ProviderMessage, error) {
		return c.next.ListMessages(ctx, conversationSID, pageSize)
	})
}

func (c *Client) CreateMessage(ctx context.Context, conversationSID string, params provider.CreateMessageParams) (*models.ProviderMessage, error) {
	return DoMutation(ctx, c.caller, "create_message", func(ctx context.Context) (*models.ProviderMessage, error) {
		return c.next.CreateMessage(ctx, conversationSID, params)
	})
}
