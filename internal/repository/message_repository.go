package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/wa-inbox/internal/models"
)

const messageColumns = `id, conversation_id, sender_type, sender_id, content,
		       delivery_status, provider_message_sid, media, created_at`

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// CreateMessage creates a new message in the database.
func (r *messageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_type, sender_id, content,
		                      delivery_status, provider_message_sid, media, created_at)
		VALUES (:id, :conversation_id, :sender_type, :sender_id, :content,
		        :delivery_status, :provider_message_sid, :media, :created_at)
	`

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// UpdateMessageDelivery sets the delivery status and, when known, the provider's message id.
func (r *messageRepository) UpdateMessageDelivery(ctx context.Context, id string, status models.DeliveryStatus, providerSID *string) error {
	query := `
		UPDATE messages
		SET delivery_status = $2,
		    provider_message_sid = COALESCE($3, provider_message_sid)
		WHERE id = $1
	`

	var sid sql.NullString
	if providerSID != nil {
		sid = sql.NullString{
			String: *providerSID,
			Valid:  true,
		}
	}

	res, err := r.db.ExecContext(ctx, query, id, string(status), sid)
	if err != nil {
		return fmt.Errorf("failed to update message delivery: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// RecentMessages retrieves messages newest first, optionally before a cursor.
// Ties on created_at are broken by id so a page cut never skips a row.
func (r *messageRepository) RecentMessages(ctx context.Context, conversationID string, limit int, cursor *models.MessageCursor) ([]*models.Message, error) {
	var (
		messages []*models.Message
		err      error
	)

	if cursor == nil {
		query := `
			SELECT ` + messageColumns + `
			FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`
		err = r.db.SelectContext(ctx, &messages, query, conversationID, limit)
	} else {
		query := `
			SELECT ` + messageColumns + `
			FROM messages
			WHERE conversation_id = $1 AND (created_at, id) < ($3::timestamptz, $4::varchar)
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`
		err = r.db.SelectContext(ctx, &messages, query, conversationID, limit, cursor.Before, cursor.BeforeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}

	return messages, nil
}

// LastMessage returns the newest stored message or nil.
func (r *messageRepository) LastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	messages, err := r.RecentMessages(ctx, conversationID, 1, nil)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return messages[0], nil
}

func (r *messageRepository) LastCustomerMessageAt(ctx context.Context, conversationID string) (*time.Time, error) {
	query := `
		SELECT MAX(created_at)
		FROM messages
		WHERE conversation_id = $1 AND sender_type = $2
	`

	var last sql.NullTime
	if err := r.db.GetContext(ctx, &last, query, conversationID, models.SenderCustomer); err != nil {
		return nil, fmt.Errorf("failed to get last customer message time: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}

	return &last.Time, nil
}

func (r *messageRepository) HasAgentReplies(ctx context.Context, conversationID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM messages WHERE conversation_id = $1 AND sender_type = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, conversationID, models.SenderAgent); err != nil {
		return false, fmt.Errorf("failed to check agent replies: %w", err)
	}

	return exists, nil
}
