package models_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/wa-inbox/internal/models"
)

func TestParseDisplayAttributes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.DisplayAttributes
	}{
		{"empty", "", models.DisplayAttributes{}},
		{"empty object", "{}", models.DisplayAttributes{}},
		{"null", "null", models.DisplayAttributes{}},
		{"not json", "Alice", models.DisplayAttributes{}},
		{"array", `["Alice"]`, models.DisplayAttributes{}},
		{
			name: "snake case keys",
			raw:  `{"display_name": " Alice B ", "email": "a@example.com", "phone_number": "+15550001111", "role": "customer"}`,
			want: models.DisplayAttributes{DisplayName: "Alice B", Email: "a@example.com", Phone: "+15550001111", Role: "customer"},
		},
		{
			name: "camel case fallbacks",
			raw:  `{"displayName": "Bob", "mediaType": "image/png", "mediaUrl": "https://x/y", "fileName": "y.png"}`,
			want: models.DisplayAttributes{DisplayName: "Bob", MediaType: "image/png", MediaURL: "https://x/y", Filename: "y.png"},
		},
		{
			name: "blank values skipped",
			raw:  `{"display_name": "  ", "displayName": "Carol", "department": 7}`,
			want: models.DisplayAttributes{DisplayName: "Carol"},
		},
		{
			name: "provider name keys are not a display name",
			raw:  `{"name": "whatsapp:+15550001111", "friendlyName": "Support Bot", "email": "c@example.com"}`,
			want: models.DisplayAttributes{Email: "c@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.ParseDisplayAttributes(tt.raw))
		})
	}
}

func TestDisplayAttributes_IsZero(t *testing.T) {
	assert.True(t, models.DisplayAttributes{}.IsZero())
	assert.False(t, models.DisplayAttributes{Role: "agent"}.IsZero())
}

func TestDeliveryReceipt_Status(t *testing.T) {
	tests := []struct {
		name    string
		receipt *models.DeliveryReceipt
		want    models.DeliveryStatus
	}{
		{"no receipt", nil, models.DeliveryStatusSent},
		{"nothing reported", &models.DeliveryReceipt{Total: 1}, models.DeliveryStatusSent},
		{"delivered", &models.DeliveryReceipt{Total: 1, Delivered: 1}, models.DeliveryStatusDelivered},
		{"read beats delivered", &models.DeliveryReceipt{Total: 2, Delivered: 1, Read: 1}, models.DeliveryStatusRead},
		{"undelivered beats read", &models.DeliveryReceipt{Total: 2, Read: 1, Undelivered: 1}, models.DeliveryStatusUndelivered},
		{"failed wins", &models.DeliveryReceipt{Total: 3, Read: 1, Undelivered: 1, Failed: 1}, models.DeliveryStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.receipt.Status())
		})
	}
}

func TestMediaList_Scan(t *testing.T) {
	var list models.MediaList
	require.NoError(t, list.Scan([]byte(`[{"url":"/api/media/CH1/ME1","content_type":"image/jpeg"}]`)))
	require.Len(t, list, 1)
	assert.Equal(t, "image/jpeg", list[0].ContentType)

	require.NoError(t, list.Scan(nil))
	assert.Nil(t, list)

	assert.Error(t, list.Scan(42))
}

func TestMediaList_ValueOfEmptyList(t *testing.T) {
	v, err := models.MediaList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func TestMessage_View(t *testing.T) {
	created := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	t.Run("agent message carries delivery", func(t *testing.T) {
		msg := &models.Message{
			ID:                 "msg_1",
			ConversationID:     "CH1",
			SenderType:         models.SenderAgent,
			SenderID:           "agent-1",
			Content:            "hello",
			DeliveryStatus:     sql.NullString{String: string(models.DeliveryStatusSent), Valid: true},
			ProviderMessageSID: sql.NullString{String: "IM1", Valid: true},
			CreatedAt:          created,
		}

		view := msg.View()
		require.NotNil(t, view.DeliveryStatus)
		assert.Equal(t, models.DeliveryStatusSent, *view.DeliveryStatus)
		assert.Equal(t, "IM1", *view.ProviderMessageSID)
		assert.NotNil(t, view.Media)
		assert.Empty(t, view.Media)
	})

	t.Run("customer message has no delivery status", func(t *testing.T) {
		msg := &models.Message{
			ID:             "msg_2",
			SenderType:     models.SenderCustomer,
			DeliveryStatus: sql.NullString{String: "read", Valid: true},
			CreatedAt:      created,
		}

		assert.Nil(t, msg.View().DeliveryStatus)
	})
}

func TestConversationStatus_Valid(t *testing.T) {
	assert.True(t, models.ConversationStatusOpen.Valid())
	assert.True(t, models.ConversationStatusPending.Valid())
	assert.True(t, models.ConversationStatusClosed.Valid())
	assert.False(t, models.ConversationStatus("archived").Valid())
	assert.False(t, models.ConversationStatus("").Valid())
}
