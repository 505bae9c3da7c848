package service_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/service"
)

func summaryAt(id string, status models.ConversationStatus, pinned, isNew bool, updated time.Time) models.ConversationSummary {
	return models.ConversationSummary{
		ID:        id,
		Status:    status,
		IsPinned:  pinned,
		IsNew:     isNew,
		UpdatedAt: updated,
	}
}

func TestSortSummaries(t *testing.T) {
	older := testNow.Add(-time.Hour)
	newer := testNow

	tests := []struct {
		name  string
		items []models.ConversationSummary
		want  []string
	}{
		{
			name: "pinned before unpinned regardless of status",
			items: []models.ConversationSummary{
				summaryAt("open", models.ConversationStatusOpen, false, true, newer),
				summaryAt("pinned-closed", models.ConversationStatusClosed, true, false, older),
			},
			want: []string{"pinned-closed", "open"},
		},
		{
			name: "open before pending before closed",
			items: []models.ConversationSummary{
				summaryAt("closed", models.ConversationStatusClosed, false, false, newer),
				summaryAt("pending", models.ConversationStatusPending, false, false, newer),
				summaryAt("open", models.ConversationStatusOpen, false, false, older),
			},
			want: []string{"open", "pending", "closed"},
		},
		{
			name: "new before seen within a status",
			items: []models.ConversationSummary{
				summaryAt("seen", models.ConversationStatusOpen, false, false, newer),
				summaryAt("new", models.ConversationStatusOpen, false, true, older),
			},
			want: []string{"new", "seen"},
		},
		{
			name: "most recently updated first",
			items: []models.ConversationSummary{
				summaryAt("old", models.ConversationStatusOpen, false, true, older),
				summaryAt("recent", models.ConversationStatusOpen, false, true, newer),
			},
			want: []string{"recent", "old"},
		},
		{
			name: "pinned rows order by recency only",
			items: []models.ConversationSummary{
				summaryAt("pinned-open", models.ConversationStatusOpen, true, true, older),
				summaryAt("pinned-closed", models.ConversationStatusClosed, true, false, newer),
			},
			want: []string{"pinned-closed", "pinned-open"},
		},
		{
			name: "full ties fall back to id ascending",
			items: []models.ConversationSummary{
				summaryAt("CH3", models.ConversationStatusOpen, false, false, newer),
				summaryAt("CH1", models.ConversationStatusOpen, false, false, newer),
				summaryAt("CH2", models.ConversationStatusOpen, false, false, newer),
			},
			want: []string{"CH1", "CH2", "CH3"},
		},
		{
			name: "every level together",
			items: []models.ConversationSummary{
				summaryAt("closed", models.ConversationStatusClosed, false, false, newer),
				summaryAt("pending-new", models.ConversationStatusPending, false, true, older),
				summaryAt("open-seen", models.ConversationStatusOpen, false, false, newer),
				summaryAt("open-new-old", models.ConversationStatusOpen, false, true, older),
				summaryAt("open-new-b", models.ConversationStatusOpen, false, true, newer),
				summaryAt("open-new-a", models.ConversationStatusOpen, false, true, newer),
				summaryAt("pinned", models.ConversationStatusPending, true, false, older),
			},
			want: []string{"pinned", "open-new-a", "open-new-b", "open-new-old", "open-seen", "pending-new", "closed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := append([]models.ConversationSummary(nil), tt.items...)
			service.SortSummaries(items)
			assert.Equal(t, tt.want, lo.Map(items, func(s models.ConversationSummary, _ int) string { return s.ID }))
		})
	}
}

func TestSortSummaries_StableAcrossShuffles(t *testing.T) {
	var items []models.ConversationSummary
	for _, id := range []string{"CH5", "CH2", "CH9", "CH1", "CH7", "CH3"} {
		items = append(items, summaryAt(id, models.ConversationStatusOpen, false, false, testNow))
	}
	want := []string{"CH1", "CH2", "CH3", "CH5", "CH7", "CH9"}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(items), func(a, b int) { items[a], items[b] = items[b], items[a] })
		service.SortSummaries(items)
		assert.Equal(t, want, lo.Map(items, func(s models.ConversationSummary, _ int) string { return s.ID }), "call %d", i)
	}
}
