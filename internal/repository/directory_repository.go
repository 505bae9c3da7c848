package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/wa-inbox/internal/models"
)

type agentRepository struct {
	db *sqlx.DB
}

func NewAgentRepository(db *sqlx.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	query := `SELECT id, name, email, department, created_at FROM agents WHERE id = $1`

	var agent models.Agent
	err := r.db.GetContext(ctx, &agent, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent %s: %w", id, err)
	}

	return &agent, nil
}

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) FindContactByPhone(ctx context.Context, phone string) (*models.Contact, error) {
	query := `
		SELECT id, phone, name, email, avatar_url, last_seen_at
		FROM contacts
		WHERE phone = $1
	`

	var contact models.Contact
	err := r.db.GetContext(ctx, &contact, query, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}

	return &contact, nil
}
