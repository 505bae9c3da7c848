package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/api"
	"github.com/popeskul/wa-inbox/internal/handler"
	"github.com/popeskul/wa-inbox/internal/middleware"
	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/provider"
	"github.com/popeskul/wa-inbox/internal/remote"
	"github.com/popeskul/wa-inbox/internal/service"
	"github.com/popeskul/wa-inbox/internal/service/mocks"
)

type fixture struct {
	conversations *mocks.MockConversationService
	messages      *mocks.MockMessageService
	health        *mocks.MockHealthService
	router        http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		conversations: mocks.NewMockConversationService(ctrl),
		messages:      mocks.NewMockMessageService(ctrl),
		health:        mocks.NewMockHealthService(ctrl),
	}

	svc := &service.Service{
		Conversation: f.conversations,
		Message:      f.messages,
		Health:       f.health,
	}

	f.router = api.HandlerWithOptions(handler.NewHandler(svc, zap.NewNop()), api.ChiServerOptions{
		ErrorHandlerFunc: handler.ParamErrorHandler,
	})
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "test-request-id"))

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHandler_ListConversations(t *testing.T) {
	f := newFixture(t)
	updated := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	f.conversations.EXPECT().
		List(gomock.Any(), service.ListParams{
			Limit:      10,
			Cursor:     "PT1",
			AgentID:    "agent-1",
			Status:     models.ConversationStatusPending,
			Unassigned: false,
		}).
		Return(&models.ConversationList{
			Items: []models.ConversationSummary{{
				ID:         "CH1",
				Title:      "Alice",
				CustomerID: "+15550001111",
				Status:     models.ConversationStatusPending,
				UpdatedAt:  updated,
				Degraded:   true,
			}},
			NextCursor: "PT2",
		}, nil)

	w := f.do(http.MethodGet, "/conversations?limit=10&cursor=PT1&agent_id=agent-1&status=pending", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[api.ConversationList](t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "CH1", resp.Items[0].Id)
	assert.Equal(t, api.ConversationStatusPending, resp.Items[0].Status)
	assert.Equal(t, updated, resp.Items[0].UpdatedAt)
	require.NotNil(t, resp.Items[0].Degraded)
	assert.True(t, *resp.Items[0].Degraded)
	assert.Nil(t, resp.Items[0].CustomerPhone)
	require.NotNil(t, resp.NextCursor)
	assert.Equal(t, "PT2", *resp.NextCursor)
}

func TestHandler_ListConversations_InvalidLimit(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/conversations?limit=many", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, middleware.ErrorCodeValidation, decodeBody[api.ErrorResponse](t, w).Error)
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"invalid input", fmt.Errorf("%w: unknown status", service.ErrInvalidInput), http.StatusBadRequest, middleware.ErrorCodeValidation},
		{"not found", service.ErrConversationNotFound, http.StatusNotFound, middleware.ErrorCodeNotFound},
		{"provider unavailable", fmt.Errorf("%w: circuit breaker is open", remote.ErrProviderUnavailable), http.StatusServiceUnavailable, middleware.ErrorCodeProviderUnavailable},
		{"provider rejected", &provider.APIError{StatusCode: http.StatusUnauthorized, Code: 20003}, http.StatusBadGateway, middleware.ErrorCodeProviderError},
		{"transient network failure", context.DeadlineExceeded, http.StatusBadGateway, middleware.ErrorCodeProviderError},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError, middleware.ErrorCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.conversations.EXPECT().Get(gomock.Any(), "CH1").Return(nil, tt.err)

			w := f.do(http.MethodGet, "/conversations/CH1", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeBody[api.ErrorResponse](t, w)
			assert.Equal(t, tt.expectedCode, resp.Error)
			assert.NotNil(t, resp.Timestamp)
		})
	}
}

func TestHandler_GetConversation(t *testing.T) {
	f := newFixture(t)
	last := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

	f.conversations.EXPECT().Get(gomock.Any(), "CH1").Return(&service.ConversationDetail{
		Summary:  models.ConversationSummary{ID: "CH1", Title: "Alice", Status: models.ConversationStatusOpen},
		Customer: models.Customer{ID: "+15550001111", Name: "Alice", Phone: "+15550001111", Source: models.CustomerSourceContact},
		Agent:    &models.AgentIdentity{ID: "agent-1", Name: "Bob", Department: "Support"},
		Number:   &models.ConfiguredNumber{ID: "main", RoutingAddress: "whatsapp:+15551230000", DisplayName: "Main Line"},
		Participants: []models.Participant{
			{SID: "MB1", Binding: &models.MessagingBinding{Address: "whatsapp:+15550001111", ProxyAddress: "whatsapp:+15551230000"}, Role: models.RoleCustomer},
			{SID: "MB2", Identity: "agent-1", Attributes: models.DisplayAttributes{DisplayName: "Bob"}, Role: models.RoleAgent},
		},
		Mode: &service.MessagingMode{LastCustomerMessageAt: &last},
	}, nil)

	w := f.do(http.MethodGet, "/conversations/CH1", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[api.ConversationDetail](t, w)
	assert.Equal(t, "Alice", resp.Customer.Name)
	assert.Equal(t, api.CustomerSourceContact, resp.Customer.Source)
	require.NotNil(t, resp.Agent)
	assert.Equal(t, "Bob", resp.Agent.Name)
	assert.NotNil(t, resp.Agent.Skills)
	require.NotNil(t, resp.Number)
	assert.Equal(t, "main", resp.Number.Id)
	require.Len(t, resp.Participants, 2)
	assert.Equal(t, "whatsapp:+15551230000", *resp.Participants[0].ProxyAddress)
	assert.Equal(t, "Bob", *resp.Participants[1].DisplayName)
	assert.False(t, resp.MessagingMode.TemplateRequired)
	assert.Equal(t, last, *resp.MessagingMode.LastCustomerMessageAt)
}

func TestHandler_CreateConversation(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newFixture(t)
		f.conversations.EXPECT().
			Create(gomock.Any(), service.CreateConversationInput{
				CustomerPhone: "+1 555 000 1111",
				CustomerName:  "Alice",
				NumberID:      "main",
			}).
			Return(&service.ConversationDetail{
				Summary:  models.ConversationSummary{ID: "CH9", Status: models.ConversationStatusOpen, IsNew: true},
				Customer: models.Customer{ID: "+15550001111", Name: "Alice", Source: models.CustomerSourceAttributes},
				Mode:     &service.MessagingMode{OutsideWindow: true, TemplateRequired: true},
			}, nil)

		w := f.do(http.MethodPost, "/conversations",
			`{"customer_phone": "+1 555 000 1111", "customer_name": "Alice", "number_id": "main"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decodeBody[api.ConversationDetail](t, w)
		assert.Equal(t, "CH9", resp.Summary.Id)
		assert.True(t, resp.MessagingMode.TemplateRequired)
		assert.NotNil(t, resp.Participants)
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodPost, "/conversations", `{"customer_phone":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, middleware.ErrorCodeValidation, decodeBody[api.ErrorResponse](t, w).Error)
	})
}

func TestHandler_UpdateConversation(t *testing.T) {
	t.Run("status and pin", func(t *testing.T) {
		f := newFixture(t)
		gomock.InOrder(
			f.conversations.EXPECT().UpdateStatus(gomock.Any(), "CH1", models.ConversationStatusClosed).Return(nil),
			f.conversations.EXPECT().SetPinned(gomock.Any(), "CH1", true).Return(nil),
		)

		w := f.do(http.MethodPatch, "/conversations/CH1", `{"status": "closed", "pinned": true}`)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("priority alone", func(t *testing.T) {
		f := newFixture(t)
		f.conversations.EXPECT().SetPriority(gomock.Any(), "CH1", models.ConversationPriorityUrgent).Return(nil)

		w := f.do(http.MethodPatch, "/conversations/CH1", `{"priority": "urgent"}`)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("invalid priority", func(t *testing.T) {
		f := newFixture(t)
		f.conversations.EXPECT().
			SetPriority(gomock.Any(), "CH1", models.ConversationPriority("whenever")).
			Return(fmt.Errorf("%w: unknown priority %q", service.ErrInvalidInput, "whenever"))

		w := f.do(http.MethodPatch, "/conversations/CH1", `{"priority": "whenever"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty update", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodPatch, "/conversations/CH1", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture(t)
		f.conversations.EXPECT().
			UpdateStatus(gomock.Any(), "CH1", models.ConversationStatus("archived")).
			Return(fmt.Errorf("%w: unknown status %q", service.ErrInvalidInput, "archived"))

		w := f.do(http.MethodPatch, "/conversations/CH1", `{"status": "archived"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Assignment(t *testing.T) {
	t.Run("assign", func(t *testing.T) {
		f := newFixture(t)
		f.conversations.EXPECT().
			Assign(gomock.Any(), "CH1", "agent-1").
			Return(&models.Assignment{AgentID: "agent-1", AgentName: "Bob"}, nil)

		w := f.do(http.MethodPut, "/conversations/CH1/assignment", `{"agent_id": "agent-1"}`)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[api.Assignment](t, w)
		assert.Equal(t, "agent-1", resp.Id)
		assert.Equal(t, "Bob", resp.Name)
	})

	t.Run("unassign", func(t *testing.T) {
		f := newFixture(t)
		f.conversations.EXPECT().Unassign(gomock.Any(), "CH1").Return(nil)

		w := f.do(http.MethodDelete, "/conversations/CH1/assignment", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestHandler_DeleteAndRead(t *testing.T) {
	f := newFixture(t)
	f.conversations.EXPECT().Delete(gomock.Any(), "CH1").Return(nil)
	f.conversations.EXPECT().MarkRead(gomock.Any(), "CH2").Return(nil)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/conversations/CH1", "").Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/conversations/CH2/read", "").Code)
}

func TestHandler_ListMessages(t *testing.T) {
	f := newFixture(t)
	before := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	next := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	read := models.DeliveryStatusRead

	f.messages.EXPECT().
		List(gomock.Any(), "CH1", 2, &models.MessageCursor{Before: before, BeforeID: "m9"}).
		Return(&models.MessagePage{
			Messages: []models.MessageView{
				{ID: "m1", ConversationID: "CH1", SenderType: models.SenderCustomer, SenderID: "+15550001111", Content: "[Image]",
					Media: []models.Media{{URL: "/api/media/CH1/ME1", ContentType: "image/jpeg"}}},
				{ID: "m2", ConversationID: "CH1", SenderType: models.SenderAgent, SenderID: "agent-1", Content: "hi", DeliveryStatus: &read,
					Media: []models.Media{}},
			},
			NextBefore:   &next,
			NextBeforeID: lo.ToPtr("m1"),
			Source:       service.SourceLocal,
		}, nil)

	w := f.do(http.MethodGet, "/conversations/CH1/messages?limit=2&before=2024-05-02T10:00:00Z&before_id=m9", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[api.MessagePage](t, w)
	assert.Equal(t, api.Local, resp.Source)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "/api/media/CH1/ME1", resp.Messages[0].Media[0].Url)
	assert.Nil(t, resp.Messages[0].DeliveryStatus)
	require.NotNil(t, resp.Messages[1].DeliveryStatus)
	assert.Equal(t, api.Read, *resp.Messages[1].DeliveryStatus)
	assert.Equal(t, next, *resp.NextBefore)
	require.NotNil(t, resp.NextBeforeId)
	assert.Equal(t, "m1", *resp.NextBeforeId)
}

func TestHandler_ListMessagesCursor(t *testing.T) {
	before := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		query  string
		cursor *models.MessageCursor
	}{
		{name: "first page", query: "", cursor: nil},
		{name: "timestamp only", query: "?before=2024-05-02T10:00:00Z", cursor: &models.MessageCursor{Before: before}},
		{name: "id without timestamp ignored", query: "?before_id=m1", cursor: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.messages.EXPECT().
				List(gomock.Any(), "CH1", 0, tt.cursor).
				Return(&models.MessagePage{Messages: []models.MessageView{}, Source: service.SourceLocal}, nil)

			w := f.do(http.MethodGet, "/conversations/CH1/messages"+tt.query, "")
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestHandler_SendMessage(t *testing.T) {
	t.Run("sent", func(t *testing.T) {
		f := newFixture(t)
		sent := models.DeliveryStatusSent
		f.messages.EXPECT().
			Send(gomock.Any(), "CH1", service.SendMessageInput{
				AgentID:           "agent-1",
				TemplateSID:       "HX1",
				TemplateVariables: map[string]string{"1": "Alice"},
			}).
			Return(&models.MessageView{ID: "msg_1", ConversationID: "CH1", SenderType: models.SenderAgent, DeliveryStatus: &sent}, nil)

		w := f.do(http.MethodPost, "/conversations/CH1/messages",
			`{"agent_id": "agent-1", "template_sid": "HX1", "template_variables": {"1": "Alice"}}`)

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decodeBody[api.Message](t, w)
		assert.Equal(t, "msg_1", resp.Id)
		assert.Equal(t, api.Sent, *resp.DeliveryStatus)
	})

	t.Run("template required", func(t *testing.T) {
		f := newFixture(t)
		f.messages.EXPECT().
			Send(gomock.Any(), "CH1", gomock.Any()).
			Return(nil, service.ErrTemplateRequired)

		w := f.do(http.MethodPost, "/conversations/CH1/messages", `{"agent_id": "agent-1", "body": "hello"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, middleware.ErrorCodeTemplateRequired, decodeBody[api.ErrorResponse](t, w).Error)
	})

	t.Run("empty message", func(t *testing.T) {
		f := newFixture(t)
		f.messages.EXPECT().
			Send(gomock.Any(), "CH1", gomock.Any()).
			Return(nil, service.ErrEmptyMessage)

		w := f.do(http.MethodPost, "/conversations/CH1/messages", `{"agent_id": "agent-1"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_GetMessagingMode(t *testing.T) {
	f := newFixture(t)
	f.messages.EXPECT().
		MessagingMode(gomock.Any(), "CH1").
		Return(&service.MessagingMode{OutsideWindow: true, TemplateRequired: true}, nil)

	w := f.do(http.MethodGet, "/conversations/CH1/messaging-mode", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[api.MessagingMode](t, w)
	assert.True(t, resp.OutsideWindow)
	assert.True(t, resp.TemplateRequired)
	assert.Nil(t, resp.LastCustomerMessageAt)
}

func TestHandler_ListNumbers(t *testing.T) {
	f := newFixture(t)
	f.conversations.EXPECT().Numbers().Return([]models.ConfiguredNumber{
		{ID: "main", RoutingAddress: "whatsapp:+15551230000", DisplayName: "Main Line", Department: "Sales"},
	})

	w := f.do(http.MethodGet, "/numbers", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[api.NumberList](t, w)
	require.Len(t, resp.Numbers, 1)
	assert.Equal(t, "Sales", *resp.Numbers[0].Department)
}

func TestHandler_InvalidateCache(t *testing.T) {
	t.Run("one conversation", func(t *testing.T) {
		f := newFixture(t)
		f.conversations.EXPECT().InvalidateCache(gomock.Any(), "CH1").Return(nil)

		w := f.do(http.MethodPost, "/internal/cache/invalidate", `{"conversation_id": "CH1"}`)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("empty body clears everything", func(t *testing.T) {
		f := newFixture(t)
		f.conversations.EXPECT().InvalidateCache(gomock.Any(), "").Return(nil)

		w := f.do(http.MethodPost, "/internal/cache/invalidate", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestHandler_HealthCheck(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		health         *service.HealthStatus
		expectedStatus int
		expectedBody   func(*testing.T, api.HealthResponse)
	}{
		{
			name: "healthy",
			health: &service.HealthStatus{
				Status:              service.StatusHealthy,
				SchedulerStatus:     service.SchedulerRunning,
				SchedulerLastRun:    &now,
				DatabaseStatus:      service.ComponentConnected,
				RedisStatus:         service.ComponentDisabled,
				CircuitBreakerState: "closed",
				Timestamp:           now,
			},
			expectedStatus: http.StatusOK,
			expectedBody: func(t *testing.T, resp api.HealthResponse) {
				assert.Equal(t, api.Healthy, resp.Status)
				assert.Equal(t, api.HealthResponseRedisStatusDisabled, *resp.RedisStatus)
				assert.Equal(t, api.Running, *resp.SchedulerStatus)
				require.NotNil(t, resp.SchedulerLastRun)
				assert.Equal(t, now, *resp.SchedulerLastRun)
				assert.Nil(t, resp.SchedulerLastError)
				assert.Equal(t, now, resp.Timestamp)
			},
		},
		{
			name: "degraded still answers 200",
			health: &service.HealthStatus{
				Status:               service.StatusDegraded,
				DatabaseStatus:       service.ComponentConnected,
				CircuitBreakerState:  "open",
				CircuitBreakerStatus: "Requests: 10, Failures: 6 (60.0%)",
				Timestamp:            now,
			},
			expectedStatus: http.StatusOK,
			expectedBody: func(t *testing.T, resp api.HealthResponse) {
				assert.Equal(t, api.Degraded, resp.Status)
				assert.Equal(t, api.HealthResponseCircuitBreakerStateOpen, *resp.CircuitBreakerState)
				assert.Equal(t, "Requests: 10, Failures: 6 (60.0%)", *resp.CircuitBreakerStatus)
			},
		},
		{
			name: "unhealthy",
			health: &service.HealthStatus{
				Status:             service.StatusUnhealthy,
				DatabaseStatus:     service.ComponentDisconnected,
				SchedulerLastError: "failed to prune cache: connection refused",
				Timestamp:          now,
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody: func(t *testing.T, resp api.HealthResponse) {
				assert.Equal(t, api.Unhealthy, resp.Status)
				assert.Equal(t, api.HealthResponseDatabaseStatusDisconnected, *resp.DatabaseStatus)
				assert.Nil(t, resp.RedisStatus)
				require.NotNil(t, resp.SchedulerLastError)
				assert.Equal(t, "failed to prune cache: connection refused", *resp.SchedulerLastError)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.health.EXPECT().GetHealth(gomock.Any()).Return(tt.health)

			w := f.do(http.MethodGet, "/health", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.expectedBody(t, decodeBody[api.HealthResponse](t, w))
		})
	}
}
