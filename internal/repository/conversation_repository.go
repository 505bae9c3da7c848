package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/wa-inbox/internal/models"
)

type conversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) ConversationRepository {
	return &conversationRepository{
		db: db,
	}
}

// GetConversation retrieves the local state of a conversation.
func (r *conversationRepository) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	query := `
		SELECT id, agent_id, status, priority, is_pinned, is_new, unread_count,
		       customer_phone, number_id, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`

	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}

	return &conv, nil
}

// UpdateConversation writes the given fields, inserting the row with column
// defaults for everything else when it does not exist yet.
func (r *conversationRepository) UpdateConversation(ctx context.Context, id string, update models.ConversationUpdate) error {
	columns := []string{"id"}
	args := []interface{}{id}

	set := func(column string, value interface{}) {
		columns = append(columns, column)
		args = append(args, value)
	}

	switch {
	case update.ClearAgent:
		set("agent_id", nil)
	case update.AgentID != nil:
		set("agent_id", *update.AgentID)
	}
	if update.Status != nil {
		set("status", string(*update.Status))
	}
	if update.Priority != nil {
		set("priority", string(*update.Priority))
	}
	if update.IsPinned != nil {
		set("is_pinned", *update.IsPinned)
	}
	if update.IsNew != nil {
		set("is_new", *update.IsNew)
	}
	if update.UnreadCount != nil {
		set("unread_count", *update.UnreadCount)
	}
	if update.CustomerPhone != nil {
		set("customer_phone", *update.CustomerPhone)
	}
	if update.NumberID != nil {
		set("number_id", *update.NumberID)
	}
	set("updated_at", time.Now())

	placeholders := make([]string, len(columns))
	assignments := make([]string, 0, len(columns)-1)
	for i, c := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if c != "id" {
			assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO conversations (%s)
		VALUES (%s)
		ON CONFLICT (id) DO UPDATE SET %s
	`, strings.Join(columns, ", "), strings.Join(placeholders, ", "), strings.Join(assignments, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update conversation %s: %w", id, err)
	}

	return nil
}

// DeleteConversation removes the conversation row and its stored messages.
func (r *conversationRepository) DeleteConversation(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete messages of conversation %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit conversation delete: %w", err)
	}
	return nil
}
