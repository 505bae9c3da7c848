package service

import (
	"time"

	"github.com/popeskul/wa-inbox/internal/models"
)

// ListParams selects one page of the conversation list. Filters apply to the
// resolved page, so a filtered page can hold fewer than Limit items.
type ListParams struct {
	Limit      int
	Cursor     string
	AgentID    string
	Status     models.ConversationStatus
	NumberID   string
	Unassigned bool
}

// ConversationDetail is the single-conversation view.
type ConversationDetail struct {
	Summary      models.ConversationSummary `json:"summary"`
	Customer     models.Customer            `json:"customer"`
	Agent        *models.AgentIdentity      `json:"agent,omitempty"`
	Number       *models.ConfiguredNumber   `json:"number,omitempty"`
	Participants []models.Participant       `json:"participants"`
	Mode         *MessagingMode             `json:"messaging_mode"`
}

type CreateConversationInput struct {
	CustomerPhone string
	CustomerName  string
	NumberID      string
	AgentID       string
}

// SendMessageInput carries either free-form text or a template reference.
type SendMessageInput struct {
	AgentID           string
	Body              string
	TemplateSID       string
	TemplateVariables map[string]string
}

// MessagingMode says whether the compose box may send free-form text.
type MessagingMode struct {
	OutsideWindow         bool       `json:"outside_window"`
	TemplateRequired      bool       `json:"template_required"`
	LastCustomerMessageAt *time.Time `json:"last_customer_message_at,omitempty"`
	WindowExpiresAt       *time.Time `json:"window_expires_at,omitempty"`
}

type ComponentStatus string

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"

	ComponentConnected    ComponentStatus = "connected"
	ComponentDisconnected ComponentStatus = "disconnected"
	ComponentDisabled     ComponentStatus = "disabled"
)

type HealthStatus struct {
	Status               string          `json:"status"`
	SchedulerStatus      string          `json:"scheduler_status"`
	SchedulerLastRun     *time.Time      `json:"scheduler_last_run,omitempty"`
	SchedulerLastError   string          `json:"scheduler_last_error,omitempty"`
	DatabaseStatus       ComponentStatus `json:"database_status"`
	RedisStatus          ComponentStatus `json:"redis_status"`
	CircuitBreakerState  string          `json:"circuit_breaker_state,omitempty"`
	CircuitBreakerStatus string          `json:"circuit_breaker_status,omitempty"`
	Timestamp            time.Time       `json:"timestamp"`
}
