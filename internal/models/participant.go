package models

import (
	"encoding/json"
	"strings"
)

// ParticipantRole is resolved once per participant when the provider response is decoded.
type ParticipantRole string

const (
	RoleCustomer ParticipantRole = "customer"
	RoleAgent    ParticipantRole = "agent"
	RoleSystem   ParticipantRole = "system"
)

// DisplayAttributes is the typed view of the provider's free-form attributes blob.
type DisplayAttributes struct {
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Role        string `json:"role,omitempty"`
	MediaType   string `json:"media_type,omitempty"`
	MediaURL    string `json:"media_url,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Department  string `json:"department,omitempty"`
}

// IsZero reports whether no attribute was set.
func (a DisplayAttributes) IsZero() bool {
	return a == DisplayAttributes{}
}

// ParseDisplayAttributes decodes the provider's attributes string. The provider
// sends the blob as a JSON-encoded string; anything that does not decode to an
// object yields zero attributes.
func ParseDisplayAttributes(raw string) DisplayAttributes {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" || raw == "null" {
		return DisplayAttributes{}
	}

	var generic map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return DisplayAttributes{}
	}

	var attrs DisplayAttributes
	attrs.DisplayName = firstString(generic, "display_name", "displayName")
	attrs.Email = firstString(generic, "email")
	attrs.Phone = firstString(generic, "phone", "phone_number", "phoneNumber")
	attrs.Role = firstString(generic, "role")
	attrs.MediaType = firstString(generic, "media_type", "mediaType", "type")
	attrs.MediaURL = firstString(generic, "media_url", "mediaUrl")
	attrs.Filename = firstString(generic, "filename", "fileName")
	attrs.Department = firstString(generic, "department")
	return attrs
}

// Encode renders attributes back to the provider's string form.
func (a DisplayAttributes) Encode() string {
	b, err := json.Marshal(a)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// MessagingBinding is the channel address of a non-chat participant.
type MessagingBinding struct {
	Address      string `json:"address,omitempty"`
	ProxyAddress string `json:"proxy_address,omitempty"`
	Name         string `json:"name,omitempty"`
}

// Participant is a provider-side party bound to a conversation. It is never persisted.
type Participant struct {
	SID        string            `json:"sid"`
	Identity   string            `json:"identity,omitempty"`
	Binding    *MessagingBinding `json:"messaging_binding,omitempty"`
	Attributes DisplayAttributes `json:"attributes"`
	Role       ParticipantRole   `json:"role"`
}

// Address returns the binding address, if any.
func (p *Participant) Address() string {
	if p.Binding == nil {
		return ""
	}
	return p.Binding.Address
}

// ProxyAddress returns the binding's routing address, if any.
func (p *Participant) ProxyAddress() string {
	if p.Binding == nil {
		return ""
	}
	return p.Binding.ProxyAddress
}
