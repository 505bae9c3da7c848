// Package identity classifies provider participants and resolves them to
// customers and agents the dashboard can display.
package identity

import (
	"strings"

	"github.com/popeskul/wa-inbox/internal/models"
)

// Classifier assigns a role to each participant. An explicit role attribute wins;
// otherwise agent identities are recognised by prefix.
type Classifier struct {
	agentPrefixes []string
}

func NewClassifier(agentPrefixes []string) *Classifier {
	prefixes := make([]string, 0, len(agentPrefixes))
	for _, p := range agentPrefixes {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return &Classifier{agentPrefixes: prefixes}
}

func (c *Classifier) Classify(p models.Participant) models.ParticipantRole {
	switch strings.ToLower(p.Attributes.Role) {
	case "agent", "admin", "operator":
		return models.RoleAgent
	case "customer", "contact":
		return models.RoleCustomer
	case "system", "bot":
		return models.RoleSystem
	}

	if c.IsAgentIdentity(p.Identity) {
		return models.RoleAgent
	}
	if p.Identity == "" && p.Address() == "" {
		return models.RoleSystem
	}
	return models.RoleCustomer
}

// ClassifyAll sets Role on every participant in place.
func (c *Classifier) ClassifyAll(participants []models.Participant) []models.Participant {
	for i := range participants {
		participants[i].Role = c.Classify(participants[i])
	}
	return participants
}

func (c *Classifier) IsAgentIdentity(identity string) bool {
	identity = strings.ToLower(identity)
	if identity == "" {
		return false
	}
	for _, p := range c.agentPrefixes {
		if strings.HasPrefix(identity, p) {
			return true
		}
	}
	return false
}

// FindCustomer returns the first customer participant, or nil.
func FindCustomer(participants []models.Participant) *models.Participant {
	return findRole(participants, models.RoleCustomer)
}

func findRole(participants []models.Participant, role models.ParticipantRole) *models.Participant {
	for i := range participants {
		if participants[i].Role == role {
			return &participants[i]
		}
	}
	return nil
}
