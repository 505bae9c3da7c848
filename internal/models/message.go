package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type SenderType string

const (
	SenderAgent    SenderType = "agent"
	SenderCustomer SenderType = "customer"
)

type DeliveryStatus string

const (
	DeliveryStatusSending     DeliveryStatus = "sending"
	DeliveryStatusSent        DeliveryStatus = "sent"
	DeliveryStatusDelivered   DeliveryStatus = "delivered"
	DeliveryStatusRead        DeliveryStatus = "read"
	DeliveryStatusFailed      DeliveryStatus = "failed"
	DeliveryStatusUndelivered DeliveryStatus = "undelivered"
)

// Media is one attachment. URL points at the dashboard's authenticated media proxy,
// never at the provider's time-limited URL.
type Media struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename,omitempty"`
}

// MediaList is stored as a JSON column.
type MediaList []Media

// Value implements driver.Valuer.
func (m MediaList) Value() (driver.Value, error) {
	if len(m) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *MediaList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported media column type %T", src)
	}
}

// Message represents a message in the local store.
type Message struct {
	ID                 string         `db:"id" json:"id"`
	ConversationID     string         `db:"conversation_id" json:"conversation_id"`
	SenderType         SenderType     `db:"sender_type" json:"sender_type"`
	SenderID           string         `db:"sender_id" json:"sender_id"`
	Content            string         `db:"content" json:"content"`
	DeliveryStatus     sql.NullString `db:"delivery_status" json:"-"`
	ProviderMessageSID sql.NullString `db:"provider_message_sid" json:"-"`
	Media              MediaList      `db:"media" json:"media"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}

// MessageView is the serialized form handed to the dashboard.
type MessageView struct {
	ID                 string          `json:"id"`
	ConversationID     string          `json:"conversation_id"`
	SenderType         SenderType      `json:"sender_type"`
	SenderID           string          `json:"sender_id"`
	Content            string          `json:"content"`
	CreatedAt          time.Time       `json:"created_at"`
	DeliveryStatus     *DeliveryStatus `json:"delivery_status,omitempty"`
	ProviderMessageSID *string         `json:"provider_message_sid,omitempty"`
	Media              []Media         `json:"media"`
}

// View converts a stored row for the dashboard.
func (m *Message) View() MessageView {
	v := MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderType:     m.SenderType,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
		Media:          []Media(m.Media),
	}
	if v.Media == nil {
		v.Media = []Media{}
	}
	if m.SenderType == SenderAgent && m.DeliveryStatus.Valid {
		status := DeliveryStatus(m.DeliveryStatus.String)
		v.DeliveryStatus = &status
	}
	if m.ProviderMessageSID.Valid {
		sid := m.ProviderMessageSID.String
		v.ProviderMessageSID = &sid
	}
	return v
}

// MessageCursor marks the oldest message of a page. Rows strictly older in
// (created_at, id) order come next; an empty ID keeps only the timestamp bound.
type MessageCursor struct {
	Before   time.Time
	BeforeID string
}

// MessagePage is returned by the message synchronizer, oldest first.
type MessagePage struct {
	Messages     []MessageView `json:"messages"`
	NextBefore   *time.Time    `json:"next_before,omitempty"`
	NextBeforeID *string       `json:"next_before_id,omitempty"`
	Source       string        `json:"source"`
}

// ProviderMedia is a media descriptor as returned by the provider.
type ProviderMedia struct {
	SID         string `json:"sid"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
}

// DeliveryReceipt aggregates the provider's per-channel delivery counters.
type DeliveryReceipt struct {
	Total       int `json:"total"`
	Sent        int `json:"sent"`
	Delivered   int `json:"delivered"`
	Read        int `json:"read"`
	Undelivered int `json:"undelivered"`
	Failed      int `json:"failed"`
}

// Status collapses the counters into the most significant state.
func (d *DeliveryReceipt) Status() DeliveryStatus {
	switch {
	case d == nil:
		return DeliveryStatusSent
	case d.Failed > 0:
		return DeliveryStatusFailed
	case d.Undelivered > 0:
		return DeliveryStatusUndelivered
	case d.Read > 0:
		return DeliveryStatusRead
	case d.Delivered > 0:
		return DeliveryStatusDelivered
	default:
		return DeliveryStatusSent
	}
}

// ProviderMessage is a message as returned by the provider.
type ProviderMessage struct {
	SID        string            `json:"sid"`
	Author     string            `json:"author"`
	Body       string            `json:"body"`
	Media      []ProviderMedia   `json:"media"`
	Attributes DisplayAttributes `json:"attributes"`
	Delivery   *DeliveryReceipt  `json:"delivery"`
	CreatedAt  time.Time         `json:"created_at"`
}
