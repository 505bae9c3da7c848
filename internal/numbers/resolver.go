// Package numbers maps provider routing addresses to the business numbers the
// dashboard is configured with.
package numbers

import (
	"github.com/popeskul/wa-inbox/internal/models"
)

// Resolver matches routing addresses exactly, channel prefix included.
type Resolver struct {
	numbers   []models.ConfiguredNumber
	byAddress map[string]models.ConfiguredNumber
}

func NewResolver(numbers []models.ConfiguredNumber) *Resolver {
	byAddress := make(map[string]models.ConfiguredNumber, len(numbers))
	for _, n := range numbers {
		byAddress[n.RoutingAddress] = n
	}
	return &Resolver{
		numbers:   numbers,
		byAddress: byAddress,
	}
}

// ResolveNumber returns nil when the address is not configured; callers
// render such conversations as unrouted.
func (r *Resolver) ResolveNumber(routingAddress string) *models.ConfiguredNumber {
	if routingAddress == "" {
		return nil
	}
	n, ok := r.byAddress[routingAddress]
	if !ok {
		return nil
	}
	return &n
}

// RoutingAddress picks the routing address from the customer participant,
// falling back to any participant that carries one.
func RoutingAddress(participants []models.Participant) string {
	for i := range participants {
		if participants[i].Role == models.RoleCustomer && participants[i].ProxyAddress() != "" {
			return participants[i].ProxyAddress()
		}
	}
	for i := range participants {
		if addr := participants[i].ProxyAddress(); addr != "" {
			return addr
		}
	}
	return ""
}

// ResolveParticipants resolves the number a conversation was routed through.
// The routing address is returned even when no number matches.
func (r *Resolver) ResolveParticipants(participants []models.Participant) (*models.ConfiguredNumber, string) {
	addr := RoutingAddress(participants)
	return r.ResolveNumber(addr), addr
}

// Find looks a number up by id.
func (r *Resolver) Find(id string) *models.ConfiguredNumber {
	for i := range r.numbers {
		if r.numbers[i].ID == id {
			n := r.numbers[i]
			return &n
		}
	}
	return nil
}

// All returns the configured numbers in configuration order.
func (r *Resolver) All() []models.ConfiguredNumber {
	return append([]models.ConfiguredNumber(nil), r.numbers...)
}
