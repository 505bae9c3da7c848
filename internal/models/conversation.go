// Package models defines data structures used throughout the application.
package models

import (
	"database/sql"
	"time"
)

type ConversationStatus string

const (
	ConversationStatusOpen    ConversationStatus = "open"
	ConversationStatusClosed  ConversationStatus = "closed"
	ConversationStatusPending ConversationStatus = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s ConversationStatus) Valid() bool {
	switch s {
	case ConversationStatusOpen, ConversationStatusClosed, ConversationStatusPending:
		return true
	}
	return false
}

type ConversationPriority string

const (
	ConversationPriorityLow    ConversationPriority = "low"
	ConversationPriorityNormal ConversationPriority = "normal"
	ConversationPriorityHigh   ConversationPriority = "high"
	ConversationPriorityUrgent ConversationPriority = "urgent"
)

func (p ConversationPriority) Valid() bool {
	switch p {
	case ConversationPriorityLow, ConversationPriorityNormal, ConversationPriorityHigh, ConversationPriorityUrgent:
		return true
	}
	return false
}

// Conversation is the local store row. The provider owns the conversation itself;
// this row holds assignment, status, pin and new-ness, which only the dashboard knows.
type Conversation struct {
	ID            string               `db:"id" json:"id"`
	AgentID       sql.NullString       `db:"agent_id" json:"agent_id,omitempty"`
	Status        ConversationStatus   `db:"status" json:"status"`
	Priority      ConversationPriority `db:"priority" json:"priority"`
	IsPinned      bool                 `db:"is_pinned" json:"is_pinned"`
	IsNew         bool                 `db:"is_new" json:"is_new"`
	UnreadCount   int                  `db:"unread_count" json:"unread_count"`
	CustomerPhone sql.NullString       `db:"customer_phone" json:"customer_phone,omitempty"`
	NumberID      sql.NullString       `db:"number_id" json:"number_id,omitempty"`
	CreatedAt     time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `db:"updated_at" json:"updated_at"`
}

// ConversationUpdate carries the fields to change; nil fields are left untouched.
type ConversationUpdate struct {
	AgentID       *string
	ClearAgent    bool
	Status        *ConversationStatus
	Priority      *ConversationPriority
	IsPinned      *bool
	IsNew         *bool
	UnreadCount   *int
	CustomerPhone *string
	NumberID      *string
}

// ProviderConversation is a conversation as the messaging provider reports it.
type ProviderConversation struct {
	SID          string            `json:"sid"`
	FriendlyName string            `json:"friendly_name"`
	State        string            `json:"state"`
	Attributes   DisplayAttributes `json:"attributes"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ConversationPage is one page of the provider's conversation listing.
type ConversationPage struct {
	Conversations []ProviderConversation `json:"conversations"`
	NextPageToken string                 `json:"next_page_token,omitempty"`
}

// ConversationSummary is what the dashboard renders for one row of the chat list.
type ConversationSummary struct {
	ID                 string               `json:"id"`
	Title              string               `json:"title"`
	LastMessagePreview string               `json:"last_message_preview"`
	UnreadCount        int                  `json:"unread_count"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	CustomerID         string               `json:"customer_id"`
	AgentID            *string              `json:"agent_id"`
	AgentName          *string              `json:"agent_name,omitempty"`
	CustomerPhone      string               `json:"customer_phone,omitempty"`
	CustomerEmail      string               `json:"customer_email,omitempty"`
	Status             ConversationStatus   `json:"status"`
	Priority           ConversationPriority `json:"priority"`
	IsPinned           bool                 `json:"is_pinned"`
	IsNew              bool                 `json:"is_new"`
	IsUnreplied        bool                 `json:"is_unreplied"`
	ProxyAddress       string               `json:"proxy_address,omitempty"`
	NumberID           *string              `json:"number_id"`
	NumberName         string               `json:"number_name,omitempty"`
	Degraded           bool                 `json:"degraded,omitempty"`
}

// ConversationList is a page of summaries plus the provider's opaque cursor.
type ConversationList struct {
	Items      []ConversationSummary `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
}
