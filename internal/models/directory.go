package models

import (
	"database/sql"
	"time"
)

// Agent is a dashboard operator as stored locally.
type Agent struct {
	ID         string         `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	Email      sql.NullString `db:"email" json:"email,omitempty"`
	Department sql.NullString `db:"department" json:"department,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// AgentIdentity is a resolved agent with its static defaults applied.
type AgentIdentity struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Department string   `json:"department"`
	Skills     []string `json:"skills"`
}

// Contact is an entry of the local contacts store, keyed by normalised phone.
type Contact struct {
	ID         int64          `db:"id" json:"id"`
	Phone      string         `db:"phone" json:"phone"`
	Name       string         `db:"name" json:"name"`
	Email      sql.NullString `db:"email" json:"email,omitempty"`
	AvatarURL  sql.NullString `db:"avatar_url" json:"avatar_url,omitempty"`
	LastSeenAt sql.NullTime   `db:"last_seen_at" json:"last_seen_at,omitempty"`
}

// CustomerSource records which resolution layer produced the customer's name.
type CustomerSource string

const (
	CustomerSourceAttributes CustomerSource = "attributes"
	CustomerSourceContact    CustomerSource = "contact"
	CustomerSourceBinding    CustomerSource = "binding"
	CustomerSourcePhone      CustomerSource = "phone"
	CustomerSourceEmail      CustomerSource = "email"
	CustomerSourceUnknown    CustomerSource = "unknown"
)

// Customer is a resolved customer identity.
type Customer struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Phone     string         `json:"phone,omitempty"`
	Email     string         `json:"email,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	LastSeen  *time.Time     `json:"last_seen,omitempty"`
	Source    CustomerSource `json:"source"`
}

// ConfiguredNumber is one business line the dashboard serves.
type ConfiguredNumber struct {
	ID             string `mapstructure:"id" json:"id"`
	RoutingAddress string `mapstructure:"routing_address" json:"routing_address"`
	DisplayName    string `mapstructure:"display_name" json:"display_name"`
	Department     string `mapstructure:"department" json:"department"`
}

// Assignment is the authoritative agent for a conversation.
type Assignment struct {
	AgentID   string `json:"id"`
	AgentName string `json:"name"`
}
