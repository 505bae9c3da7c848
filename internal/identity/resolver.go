package identity

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/config"
	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/repository"
)

const UnknownCustomer = "Unknown Customer"

// Resolver turns participants into display identities. Agents are cached for
// the life of the process; customers are resolved on every call because their
// attributes and contact records change between polls.
type Resolver struct {
	contacts repository.ContactRepository
	defaults config.AgentsConfig
	logger   *zap.Logger

	agents sync.Map // identity -> models.AgentIdentity
}

func NewResolver(contacts repository.ContactRepository, defaults config.AgentsConfig, logger *zap.Logger) *Resolver {
	return &Resolver{
		contacts: contacts,
		defaults: defaults,
		logger:   logger,
	}
}

// ResolveCustomer applies, in order: display name attribute, local contact by
// phone, binding name, phone-shaped identity, email-shaped identity, and
// finally the literal "Unknown Customer".
func (r *Resolver) ResolveCustomer(ctx context.Context, p *models.Participant) models.Customer {
	if p == nil {
		return models.Customer{Name: UnknownCustomer, Source: models.CustomerSourceUnknown}
	}

	phone := customerPhone(p)
	email := customerEmail(p)

	customer := models.Customer{
		ID:    customerID(p, phone),
		Phone: phone,
		Email: email,
	}

	if p.Attributes.DisplayName != "" {
		customer.Name = p.Attributes.DisplayName
		customer.Source = models.CustomerSourceAttributes
		return customer
	}

	if phone != "" && r.contacts != nil {
		contact, err := r.contacts.FindContactByPhone(ctx, phone)
		if err != nil {
			r.logger.Warn("Contact lookup failed, falling back",
				zap.String("participant", p.SID),
				zap.Error(err))
		} else if contact != nil && contact.Name != "" {
			customer.Name = contact.Name
			customer.Source = models.CustomerSourceContact
			if customer.Email == "" && contact.Email.Valid {
				customer.Email = contact.Email.String
			}
			if contact.AvatarURL.Valid {
				customer.AvatarURL = contact.AvatarURL.String
			}
			if contact.LastSeenAt.Valid {
				seen := contact.LastSeenAt.Time
				customer.LastSeen = &seen
			}
			return customer
		}
	}

	if p.Binding != nil && p.Binding.Name != "" {
		customer.Name = p.Binding.Name
		customer.Source = models.CustomerSourceBinding
		return customer
	}

	if idPhone := NormalizePhone(p.Identity); idPhone != "" {
		customer.Name = FormatPhone(idPhone)
		customer.Source = models.CustomerSourcePhone
		return customer
	}

	if IsEmail(p.Identity) {
		customer.Name = EmailLocalPart(p.Identity)
		customer.Source = models.CustomerSourceEmail
		return customer
	}

	customer.Name = UnknownCustomer
	customer.Source = models.CustomerSourceUnknown
	return customer
}

// ResolveAgent uses the identity as the display name and applies the
// configured department and skills.
func (r *Resolver) ResolveAgent(identity string) models.AgentIdentity {
	if cached, ok := r.agents.Load(identity); ok {
		return cached.(models.AgentIdentity)
	}

	agent := models.AgentIdentity{
		ID:         identity,
		Name:       identity,
		Department: r.defaults.DefaultDepartment,
		Skills:     append([]string(nil), r.defaults.DefaultSkills...),
	}
	if agent.Skills == nil {
		agent.Skills = []string{}
	}

	actual, _ := r.agents.LoadOrStore(identity, agent)
	return actual.(models.AgentIdentity)
}

func customerPhone(p *models.Participant) string {
	if phone := NormalizePhone(p.Address()); phone != "" {
		return phone
	}
	if phone := NormalizePhone(p.Attributes.Phone); phone != "" {
		return phone
	}
	return NormalizePhone(p.Identity)
}

func customerEmail(p *models.Participant) string {
	if p.Attributes.Email != "" {
		return p.Attributes.Email
	}
	if IsEmail(p.Identity) {
		return p.Identity
	}
	return ""
}

func customerID(p *models.Participant, phone string) string {
	switch {
	case phone != "":
		return phone
	case p.Identity != "":
		return p.Identity
	default:
		return p.SID
	}
}
