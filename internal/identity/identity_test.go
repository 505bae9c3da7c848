package identity_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/config"
	"github.com/popeskul/wa-inbox/internal/identity"
	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/repository/mocks"
)

func whatsappParticipant(address string) models.Participant {
	return models.Participant{
		SID:     "MB1",
		Binding: &models.MessagingBinding{Address: address, ProxyAddress: "whatsapp:+15551230000"},
	}
}

func TestClassifier_Classify(t *testing.T) {
	classifier := identity.NewClassifier([]string{"agent-", "admin"})

	tests := []struct {
		name        string
		participant models.Participant
		want        models.ParticipantRole
	}{
		{"binding only is customer", whatsappParticipant("whatsapp:+15550001111"), models.RoleCustomer},
		{"agent prefix", models.Participant{Identity: "agent-7"}, models.RoleAgent},
		{"admin prefix", models.Participant{Identity: "Admin.Jane"}, models.RoleAgent},
		{"chat identity is customer", models.Participant{Identity: "jane@example.com"}, models.RoleCustomer},
		{"no identity no binding is system", models.Participant{SID: "MB9"}, models.RoleSystem},
		{"role attribute overrides prefix", models.Participant{Identity: "agent-bot", Attributes: models.DisplayAttributes{Role: "customer"}}, models.RoleCustomer},
		{"role attribute marks agent", models.Participant{Identity: "jane", Attributes: models.DisplayAttributes{Role: "agent"}}, models.RoleAgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.participant))
		})
	}
}

func TestFindCustomer(t *testing.T) {
	participants := identity.NewClassifier([]string{"agent-"}).ClassifyAll([]models.Participant{
		{SID: "MB0"},
		{SID: "MB1", Identity: "agent-1"},
		whatsappParticipant("whatsapp:+15550001111"),
	})

	require.NotNil(t, identity.FindCustomer(participants))
	assert.Equal(t, "whatsapp:+15550001111", identity.FindCustomer(participants).Address())
	assert.Equal(t, models.RoleAgent, participants[1].Role)
	assert.Nil(t, identity.FindCustomer(participants[:2]))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"whatsapp:+15550001111", "+15550001111"},
		{"+1 (555) 000-1111", "+15550001111"},
		{"15550001111", "+15550001111"},
		{"jane@example.com", ""},
		{"12345", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, identity.NormalizePhone(tt.in))
		})
	}
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "+1 555 000 1111", identity.FormatPhone("+15550001111"))
	assert.Equal(t, "+44 207 946 0958", identity.FormatPhone("+442079460958"))
	assert.Equal(t, "555 000 1111", identity.FormatPhone("+5550001111"))
	assert.Equal(t, "+1234567", identity.FormatPhone("+1234567"))
}

func TestResolver_ResolveCustomer(t *testing.T) {
	seen := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		participant models.Participant
		setup       func(m *mocks.MockContactRepository)
		wantName    string
		wantSource  models.CustomerSource
		check       func(t *testing.T, c models.Customer)
	}{
		{
			name: "display name attribute wins over contact",
			participant: func() models.Participant {
				p := whatsappParticipant("whatsapp:+15550001111")
				p.Attributes.DisplayName = "Alice (VIP)"
				return p
			}(),
			setup:      func(m *mocks.MockContactRepository) {},
			wantName:   "Alice (VIP)",
			wantSource: models.CustomerSourceAttributes,
		},
		{
			name:        "contact by normalised phone",
			participant: whatsappParticipant("whatsapp:+15550001111"),
			setup: func(m *mocks.MockContactRepository) {
				m.EXPECT().FindContactByPhone(gomock.Any(), "+15550001111").Return(&models.Contact{
					Name:       "Alice Contact",
					Email:      sql.NullString{String: "alice@example.com", Valid: true},
					LastSeenAt: sql.NullTime{Time: seen, Valid: true},
				}, nil)
			},
			wantName:   "Alice Contact",
			wantSource: models.CustomerSourceContact,
			check: func(t *testing.T, c models.Customer) {
				assert.Equal(t, "alice@example.com", c.Email)
				require.NotNil(t, c.LastSeen)
				assert.Equal(t, seen, *c.LastSeen)
				assert.Equal(t, "+15550001111", c.ID)
			},
		},
		{
			name: "binding name when no contact",
			participant: func() models.Participant {
				p := whatsappParticipant("whatsapp:+15550001111")
				p.Binding.Name = "Ally"
				return p
			}(),
			setup: func(m *mocks.MockContactRepository) {
				m.EXPECT().FindContactByPhone(gomock.Any(), "+15550001111").Return(nil, nil)
			},
			wantName:   "Ally",
			wantSource: models.CustomerSourceBinding,
		},
		{
			name: "contact lookup error falls through",
			participant: func() models.Participant {
				p := whatsappParticipant("whatsapp:+15550001111")
				p.Binding.Name = "Ally"
				return p
			}(),
			setup: func(m *mocks.MockContactRepository) {
				m.EXPECT().FindContactByPhone(gomock.Any(), "+15550001111").Return(nil, errors.New("db down"))
			},
			wantName:   "Ally",
			wantSource: models.CustomerSourceBinding,
		},
		{
			name:        "phone shaped identity",
			participant: models.Participant{SID: "MB1", Identity: "+15550001111"},
			setup: func(m *mocks.MockContactRepository) {
				m.EXPECT().FindContactByPhone(gomock.Any(), "+15550001111").Return(nil, nil)
			},
			wantName:   "+1 555 000 1111",
			wantSource: models.CustomerSourcePhone,
		},
		{
			name:        "email shaped identity",
			participant: models.Participant{SID: "MB1", Identity: "jane.doe@example.com"},
			setup:       func(m *mocks.MockContactRepository) {},
			wantName:    "jane.doe",
			wantSource:  models.CustomerSourceEmail,
			check: func(t *testing.T, c models.Customer) {
				assert.Equal(t, "jane.doe@example.com", c.Email)
			},
		},
		{
			name:        "unknown",
			participant: models.Participant{SID: "MB1", Identity: "opaque-id"},
			setup:       func(m *mocks.MockContactRepository) {},
			wantName:    identity.UnknownCustomer,
			wantSource:  models.CustomerSourceUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			contacts := mocks.NewMockContactRepository(ctrl)
			tt.setup(contacts)

			resolver := identity.NewResolver(contacts, config.AgentsConfig{}, zap.NewNop())
			got := resolver.ResolveCustomer(context.Background(), &tt.participant)

			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantSource, got.Source)
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestResolver_CustomerNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)
	resolver := identity.NewResolver(contacts, config.AgentsConfig{}, zap.NewNop())
	p := whatsappParticipant("whatsapp:+15550001111")

	gomock.InOrder(
		contacts.EXPECT().FindContactByPhone(gomock.Any(), "+15550001111").Return(&models.Contact{Name: "Old Name"}, nil),
		contacts.EXPECT().FindContactByPhone(gomock.Any(), "+15550001111").Return(&models.Contact{Name: "New Name"}, nil),
	)

	assert.Equal(t, "Old Name", resolver.ResolveCustomer(context.Background(), &p).Name)
	assert.Equal(t, "New Name", resolver.ResolveCustomer(context.Background(), &p).Name)
}

func TestResolver_ResolveAgent(t *testing.T) {
	resolver := identity.NewResolver(nil, config.AgentsConfig{
		DefaultDepartment: "support",
		DefaultSkills:     []string{"whatsapp"},
	}, zap.NewNop())

	agent := resolver.ResolveAgent("agent-7")
	assert.Equal(t, "agent-7", agent.ID)
	assert.Equal(t, "agent-7", agent.Name)
	assert.Equal(t, "support", agent.Department)
	assert.Equal(t, []string{"whatsapp"}, agent.Skills)
	assert.Equal(t, agent, resolver.ResolveAgent("agent-7"))
}

func TestResolver_NilParticipant(t *testing.T) {
	resolver := identity.NewResolver(nil, config.AgentsConfig{}, zap.NewNop())
	got := resolver.ResolveCustomer(context.Background(), nil)
	assert.Equal(t, identity.UnknownCustomer, got.Name)
}
