// Package api holds the dashboard HTTP contract of api/openapi.yaml: models,
// the ServerInterface and its chi routing, laid out the way oapi-codegen emits them.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Defines values for ConversationPriority.
const (
	ConversationPriorityHigh   ConversationPriority = "high"
	ConversationPriorityLow    ConversationPriority = "low"
	ConversationPriorityNormal ConversationPriority = "normal"
	ConversationPriorityUrgent ConversationPriority = "urgent"
)

// Defines values for ConversationStatus.
const (
	ConversationStatusClosed  ConversationStatus = "closed"
	ConversationStatusOpen    ConversationStatus = "open"
	ConversationStatusPending ConversationStatus = "pending"
)

// Defines values for CustomerSource.
const (
	CustomerSourceAttributes CustomerSource = "attributes"
	CustomerSourceBinding    CustomerSource = "binding"
	CustomerSourceContact    CustomerSource = "contact"
	CustomerSourceEmail      CustomerSource = "email"
	CustomerSourcePhone      CustomerSource = "phone"
	CustomerSourceUnknown    CustomerSource = "unknown"
)

// Defines values for DeliveryStatus.
const (
	Delivered   DeliveryStatus = "delivered"
	Failed      DeliveryStatus = "failed"
	Read        DeliveryStatus = "read"
	Sending     DeliveryStatus = "sending"
	Sent        DeliveryStatus = "sent"
	Undelivered DeliveryStatus = "undelivered"
)

// Defines values for HealthResponseCircuitBreakerState.
const (
	HealthResponseCircuitBreakerStateClosed   HealthResponseCircuitBreakerState = "closed"
	HealthResponseCircuitBreakerStateHalfOpen HealthResponseCircuitBreakerState = "half-open"
	HealthResponseCircuitBreakerStateOpen     HealthResponseCircuitBreakerState = "open"
)

// Defines values for HealthResponseDatabaseStatus.
const (
	HealthResponseDatabaseStatusConnected    HealthResponseDatabaseStatus = "connected"
	HealthResponseDatabaseStatusDisconnected HealthResponseDatabaseStatus = "disconnected"
)

// Defines values for HealthResponseRedisStatus.
const (
	HealthResponseRedisStatusConnected    HealthResponseRedisStatus = "connected"
	HealthResponseRedisStatusDisabled     HealthResponseRedisStatus = "disabled"
	HealthResponseRedisStatusDisconnected HealthResponseRedisStatus = "disconnected"
)

// Defines values for HealthResponseSchedulerStatus.
const (
	Running HealthResponseSchedulerStatus = "running"
	Stopped HealthResponseSchedulerStatus = "stopped"
)

// Defines values for HealthResponseStatus.
const (
	Degraded  HealthResponseStatus = "degraded"
	Healthy   HealthResponseStatus = "healthy"
	Unhealthy HealthResponseStatus = "unhealthy"
)

// Defines values for MessageSenderType.
const (
	MessageSenderTypeAgent    MessageSenderType = "agent"
	MessageSenderTypeCustomer MessageSenderType = "customer"
)

// Defines values for ParticipantRole.
const (
	ParticipantRoleAgent    ParticipantRole = "agent"
	ParticipantRoleCustomer ParticipantRole = "customer"
	ParticipantRoleSystem   ParticipantRole = "system"
)

// Defines values for MessagePageSource.
const (
	Local    MessagePageSource = "local"
	Provider MessagePageSource = "provider"
)

// Agent defines model for Agent.
type Agent struct {
	Department string   `json:"department"`
	Id         string   `json:"id"`
	Name       string   `json:"name"`
	Skills     []string `json:"skills"`
}

// AssignConversationRequest defines model for AssignConversationRequest.
type AssignConversationRequest struct {
	AgentId string `json:"agent_id"`
}

// Assignment defines model for Assignment.
type Assignment struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

// ConversationDetail defines model for ConversationDetail.
type ConversationDetail struct {
	Agent         *Agent              `json:"agent,omitempty"`
	Customer      Customer            `json:"customer"`
	MessagingMode MessagingMode       `json:"messaging_mode"`
	Number        *Number             `json:"number,omitempty"`
	Participants  []Participant       `json:"participants"`
	Summary       ConversationSummary `json:"summary"`
}

// ConversationList defines model for ConversationList.
type ConversationList struct {
	Items      []ConversationSummary `json:"items"`
	NextCursor *string               `json:"next_cursor,omitempty"`
}

// ConversationPriority defines model for ConversationPriority.
type ConversationPriority string

// ConversationStatus defines model for ConversationStatus.
type ConversationStatus string

// ConversationSummary defines model for ConversationSummary.
type ConversationSummary struct {
	AgentId            *string            `json:"agent_id"`
	AgentName          *string            `json:"agent_name,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	CustomerEmail      *string            `json:"customer_email,omitempty"`
	CustomerId         string             `json:"customer_id"`
	CustomerPhone      *string            `json:"customer_phone,omitempty"`
	Degraded           *bool              `json:"degraded,omitempty"`
	Id                 string             `json:"id"`
	IsNew              bool               `json:"is_new"`
	IsPinned           bool               `json:"is_pinned"`
	IsUnreplied        bool               `json:"is_unreplied"`
	LastMessagePreview string             `json:"last_message_preview"`
	NumberId           *string            `json:"number_id"`
	NumberName         *string              `json:"number_name,omitempty"`
	Priority           ConversationPriority `json:"priority"`
	ProxyAddress       *string              `json:"proxy_address,omitempty"`
	Status             ConversationStatus   `json:"status"`
	Title              string             `json:"title"`
	UnreadCount        int                `json:"unread_count"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// CreateConversationRequest defines model for CreateConversationRequest.
type CreateConversationRequest struct {
	AgentId       *string `json:"agent_id,omitempty"`
	CustomerName  *string `json:"customer_name,omitempty"`
	CustomerPhone string  `json:"customer_phone"`
	NumberId      string  `json:"number_id"`
}

// Customer defines model for Customer.
type Customer struct {
	AvatarUrl *string        `json:"avatar_url,omitempty"`
	Email     *string        `json:"email,omitempty"`
	Id        string         `json:"id"`
	LastSeen  *time.Time     `json:"last_seen,omitempty"`
	Name      string         `json:"name"`
	Phone     *string        `json:"phone,omitempty"`
	Source    CustomerSource `json:"source"`
}

// CustomerSource defines model for Customer.Source.
type CustomerSource string

// DeliveryStatus defines model for DeliveryStatus.
type DeliveryStatus string

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error     string     `json:"error"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	CircuitBreakerState  *HealthResponseCircuitBreakerState `json:"circuit_breaker_state,omitempty"`
	CircuitBreakerStatus *string                            `json:"circuit_breaker_status,omitempty"`
	DatabaseStatus       *HealthResponseDatabaseStatus      `json:"database_status,omitempty"`
	RedisStatus          *HealthResponseRedisStatus         `json:"redis_status,omitempty"`
	SchedulerLastError   *string                            `json:"scheduler_last_error,omitempty"`
	SchedulerLastRun     *time.Time                         `json:"scheduler_last_run,omitempty"`
	SchedulerStatus      *HealthResponseSchedulerStatus     `json:"scheduler_status,omitempty"`
	Status               HealthResponseStatus               `json:"status"`
	Timestamp            time.Time                          `json:"timestamp"`
}

// HealthResponseCircuitBreakerState defines model for HealthResponse.CircuitBreakerState.
type HealthResponseCircuitBreakerState string

// HealthResponseDatabaseStatus defines model for HealthResponse.DatabaseStatus.
type HealthResponseDatabaseStatus string

// HealthResponseRedisStatus defines model for HealthResponse.RedisStatus.
type HealthResponseRedisStatus string

// HealthResponseSchedulerStatus defines model for HealthResponse.SchedulerStatus.
type HealthResponseSchedulerStatus string

// HealthResponseStatus defines model for HealthResponse.Status.
type HealthResponseStatus string

// InvalidateCacheRequest defines model for InvalidateCacheRequest.
type InvalidateCacheRequest struct {
	// ConversationId Empty or missing clears every cached entry
	ConversationId *string `json:"conversation_id,omitempty"`
}

// Message defines model for Message.
type Message struct {
	Content            string            `json:"content"`
	ConversationId     string            `json:"conversation_id"`
	CreatedAt          time.Time         `json:"created_at"`
	DeliveryStatus     *DeliveryStatus   `json:"delivery_status,omitempty"`
	Id                 string            `json:"id"`
	Media              []MessageMedia    `json:"media"`
	ProviderMessageSid *string           `json:"provider_message_sid,omitempty"`
	SenderId           string            `json:"sender_id"`
	SenderType         MessageSenderType `json:"sender_type"`
}

// MessageMedia defines model for MessageMedia.
type MessageMedia struct {
	ContentType string  `json:"content_type"`
	Filename    *string `json:"filename,omitempty"`
	Url         string  `json:"url"`
}

// MessageSenderType defines model for Message.SenderType.
type MessageSenderType string

// MessagePage defines model for MessagePage.
type MessagePage struct {
	Messages     []Message         `json:"messages"`
	NextBefore   *time.Time        `json:"next_before,omitempty"`
	NextBeforeId *string           `json:"next_before_id,omitempty"`
	Source       MessagePageSource `json:"source"`
}

// MessagePageSource defines model for MessagePage.Source.
type MessagePageSource string

// MessagingMode defines model for MessagingMode.
type MessagingMode struct {
	LastCustomerMessageAt *time.Time `json:"last_customer_message_at,omitempty"`
	OutsideWindow         bool       `json:"outside_window"`
	TemplateRequired      bool       `json:"template_required"`
	WindowExpiresAt       *time.Time `json:"window_expires_at,omitempty"`
}

// Number defines model for Number.
type Number struct {
	Department     *string `json:"department,omitempty"`
	DisplayName    string  `json:"display_name"`
	Id             string  `json:"id"`
	RoutingAddress string  `json:"routing_address"`
}

// NumberList defines model for NumberList.
type NumberList struct {
	Numbers []Number `json:"numbers"`
}

// Participant defines model for Participant.
type Participant struct {
	Address      *string         `json:"address,omitempty"`
	DisplayName  *string         `json:"display_name,omitempty"`
	Identity     *string         `json:"identity,omitempty"`
	ProxyAddress *string         `json:"proxy_address,omitempty"`
	Role         ParticipantRole `json:"role"`
	Sid          string          `json:"sid"`
}

// ParticipantRole defines model for Participant.Role.
type ParticipantRole string

// SendMessageRequest defines model for SendMessageRequest.
type SendMessageRequest struct {
	AgentId           string             `json:"agent_id"`
	Body              *string            `json:"body,omitempty"`
	TemplateSid       *string            `json:"template_sid,omitempty"`
	TemplateVariables *map[string]string `json:"template_variables,omitempty"`
}

// UpdateConversationRequest defines model for UpdateConversationRequest.
type UpdateConversationRequest struct {
	Pinned   *bool                 `json:"pinned,omitempty"`
	Priority *ConversationPriority `json:"priority,omitempty"`
	Status   *ConversationStatus   `json:"status,omitempty"`
}

// ConversationId defines model for ConversationId.
type ConversationId = string

// BadRequest defines model for BadRequest.
type BadRequest = ErrorResponse

// NotFound defines model for NotFound.
type NotFound = ErrorResponse

// ProviderError defines model for ProviderError.
type ProviderError = ErrorResponse

// ListConversationsParams defines parameters for ListConversations.
type ListConversationsParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`

	// Cursor Opaque cursor returned as next_cursor by the previous page
	Cursor     *string             `form:"cursor,omitempty" json:"cursor,omitempty"`
	AgentId    *string             `form:"agent_id,omitempty" json:"agent_id,omitempty"`
	Status     *ConversationStatus `form:"status,omitempty" json:"status,omitempty"`
	NumberId   *string             `form:"number_id,omitempty" json:"number_id,omitempty"`
	Unassigned *bool               `form:"unassigned,omitempty" json:"unassigned,omitempty"`
}

// ListMessagesParams defines parameters for ListMessages.
type ListMessagesParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`

	// Before Return messages created before this instant
	Before *time.Time `form:"before,omitempty" json:"before,omitempty"`

	// BeforeId Id of the oldest message already shown; breaks ties on before
	BeforeId *string `form:"before_id,omitempty" json:"before_id,omitempty"`
}

// CreateConversationJSONRequestBody defines body for CreateConversation for application/json ContentType.
type CreateConversationJSONRequestBody = CreateConversationRequest

// UpdateConversationJSONRequestBody defines body for UpdateConversation for application/json ContentType.
type UpdateConversationJSONRequestBody = UpdateConversationRequest

// AssignConversationJSONRequestBody defines body for AssignConversation for application/json ContentType.
type AssignConversationJSONRequestBody = AssignConversationRequest

// SendMessageJSONRequestBody defines body for SendMessage for application/json ContentType.
type SendMessageJSONRequestBody = SendMessageRequest

// InvalidateCacheJSONRequestBody defines body for InvalidateCache for application/json ContentType.
type InvalidateCacheJSONRequestBody = InvalidateCacheRequest

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// List conversations
	// (GET /conversations)
	ListConversations(w http.ResponseWriter, r *http.Request, params ListConversationsParams)
	// Start a conversation with a customer
	// (POST /conversations)
	CreateConversation(w http.ResponseWriter, r *http.Request)
	// Delete a conversation
	// (DELETE /conversations/{id})
	DeleteConversation(w http.ResponseWriter, r *http.Request, id ConversationId)
	// Get one conversation
	// (GET /conversations/{id})
	GetConversation(w http.ResponseWriter, r *http.Request, id ConversationId)
	// Update status or pin
	// (PATCH /conversations/{id})
	UpdateConversation(w http.ResponseWriter, r *http.Request, id ConversationId)
	// Remove the assigned agent
	// (DELETE /conversations/{id}/assignment)
	UnassignConversation(w http.ResponseWriter, r *http.Request, id ConversationId)
	// Assign an agent
	// (PUT /conversations/{id}/assignment)
	AssignConversation(w http.ResponseWriter, r *http.Request, id ConversationId)
	// List messages, oldest first
	// (GET /conversations/{id}/messages)
	ListMessages(w http.ResponseWriter, r *http.Request, id ConversationId, params ListMessagesParams)
	// Send a message or a template
	// (POST /conversations/{id}/messages)
	SendMessage(w http.ResponseWriter, r *http.Request, id ConversationId)
	// Whether free-form text may be sent
	// (GET /conversations/{id}/messaging-mode)
	GetMessagingMode(w http.ResponseWriter, r *http.Request, id ConversationId)
	// Reset the unread counter
	// (POST /conversations/{id}/read)
	MarkConversationRead(w http.ResponseWriter, r *http.Request, id ConversationId)
	// Health check
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Drop cached provider data
	// (POST /internal/cache/invalidate)
	InvalidateCache(w http.ResponseWriter, r *http.Request)
	// Configured business numbers
	// (GET /numbers)
	ListNumbers(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// ListConversations operation middleware
func (siw *ServerInterfaceWrapper) ListConversations(w http.ResponseWriter, r *http.Request) {

	var err error

	// Parameter object where we will unmarshal all parameters from the context
	var params ListConversationsParams

	// ------------- Optional query parameter "limit" -------------

	err = runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	// ------------- Optional query parameter "cursor" -------------

	err = runtime.BindQueryParameter("form", true, false, "cursor", r.URL.Query(), &params.Cursor)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "cursor", Err: err})
		return
	}

	// ------------- Optional query parameter "agent_id" -------------

	err = runtime.BindQueryParameter("form", true, false, "agent_id", r.URL.Query(), &params.AgentId)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "agent_id", Err: err})
		return
	}

	// ------------- Optional query parameter "status" -------------

	err = runtime.BindQueryParameter("form", true, false, "status", r.URL.Query(), &params.Status)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "status", Err: err})
		return
	}

	// ------------- Optional query parameter "number_id" -------------

	err = runtime.BindQueryParameter("form", true, false, "number_id", r.URL.Query(), &params.NumberId)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "number_id", Err: err})
		return
	}

	// ------------- Optional query parameter "unassigned" -------------

	err = runtime.BindQueryParameter("form", true, false, "unassigned", r.URL.Query(), &params.Unassigned)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "unassigned", Err: err})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListConversations(w, r, params)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// CreateConversation operation middleware
func (siw *ServerInterfaceWrapper) CreateConversation(w http.ResponseWriter, r *http.Request) {

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateConversation(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// bindConversationId is shared by every /conversations/{id} operation.
func (siw *ServerInterfaceWrapper) bindConversationId(w http.ResponseWriter, r *http.Request) (ConversationId, bool) {
	var id ConversationId

	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return "", false
	}
	return id, true
}

// DeleteConversation operation middleware
func (siw *ServerInterfaceWrapper) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	siw.withConversationId(w, r, siw.Handler.DeleteConversation)
}

// GetConversation operation middleware
func (siw *ServerInterfaceWrapper) GetConversation(w http.ResponseWriter, r *http.Request) {
	siw.withConversationId(w, r, siw.Handler.GetConversation)
}

// UpdateConversation operation middleware
func (siw *ServerInterfaceWrapper) UpdateConversation(w http.ResponseWriter, r *http.Request) {
	siw.withConversationId(w, r, siw.Handler.UpdateConversation)
}

// UnassignConversation operation middleware
func (siw *ServerInterfaceWrapper) UnassignConversation(w http.ResponseWriter, r *http.Request) {
	siw.withConversationId(w, r, siw.Handler.UnassignConversation)
}

// AssignConversation operation middleware
func (siw *ServerInterfaceWrapper) AssignConversation(w http.ResponseWriter, r *http.Request) {
	siw.withConversationId(w, r, siw.Handler.AssignConversation)
}

// ListMessages operation middleware
func (siw *ServerInterfaceWrapper) ListMessages(w http.ResponseWriter, r *http.Request) {

	var err error

	id, ok := siw.bindConversationId(w, r)
	if !ok {
		return
	}

	// Parameter object where we will unmarshal all parameters from the context
	var params ListMessagesParams

	// ------------- Optional query parameter "limit" -------------

	err = runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	// ------------- Optional query parameter "before" -------------

	err = runtime.BindQueryParameter("form", true, false, "before", r.URL.Query(), &params.Before)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "before", Err: err})
		return
	}

	// ------------- Optional query parameter "before_id" -------------

	err = runtime.BindQueryParameter("form", true, false, "before_id", r.URL.Query(), &params.BeforeId)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "before_id", Err: err})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListMessages(w, r, id, params)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// SendMessage operation middleware
func (siw *ServerInterfaceWrapper) SendMessage(w http.ResponseWriter, r *http.Request) {
	siw.withConversationId(w, r, siw.Handler.SendMessage)
}

// GetMessagingMode operation middleware
func (siw *ServerInterfaceWrapper) GetMessagingMode(w http.ResponseWriter, r *http.Request) {
	siw.withConversationId(w, r, siw.Handler.GetMessagingMode)
}

// MarkConversationRead operation middleware
func (siw *ServerInterfaceWrapper) MarkConversationRead(w http.ResponseWriter, r *http.Request) {
	siw.withConversationId(w, r, siw.Handler.MarkConversationRead)
}

// HealthCheck operation middleware
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthCheck)
}

// InvalidateCache operation middleware
func (siw *ServerInterfaceWrapper) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.InvalidateCache)
}

// ListNumbers operation middleware
func (siw *ServerInterfaceWrapper) ListNumbers(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ListNumbers)
}

func (siw *ServerInterfaceWrapper) withConversationId(w http.ResponseWriter, r *http.Request, fn func(http.ResponseWriter, *http.Request, ConversationId)) {
	id, ok := siw.bindConversationId(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, id)
	})
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	handler := http.Handler(fn)

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

type UnescapedCookieParamError struct {
	ParamName string
	Err       error
}

func (e *UnescapedCookieParamError) Error() string {
	return fmt.Sprintf("error unescaping cookie parameter '%s'", e.ParamName)
}

func (e *UnescapedCookieParamError) Unwrap() error {
	return e.Err
}

type UnmarshalingParamError struct {
	ParamName string
	Err       error
}

func (e *UnmarshalingParamError) Error() string {
	return fmt.Sprintf("Error unmarshaling parameter %s as JSON: %s", e.ParamName, e.Err.Error())
}

func (e *UnmarshalingParamError) Unwrap() error {
	return e.Err
}

type RequiredParamError struct {
	ParamName string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("Query argument %s is required, but not found", e.ParamName)
}

type RequiredHeaderError struct {
	ParamName string
	Err       error
}

func (e *RequiredHeaderError) Error() string {
	return fmt.Sprintf("Header parameter %s is required, but not found", e.ParamName)
}

func (e *RequiredHeaderError) Unwrap() error {
	return e.Err
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

type TooManyValuesForParamError struct {
	ParamName string
	Count     int
}

func (e *TooManyValuesForParamError) Error() string {
	return fmt.Sprintf("Expected one value for %s, got %d", e.ParamName, e.Count)
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

func HandlerFromMuxWithBaseURL(si ServerInterface, r chi.Router, baseURL string) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseURL:    baseURL,
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/conversations", wrapper.ListConversations)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/conversations", wrapper.CreateConversation)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/conversations/{id}", wrapper.DeleteConversation)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/conversations/{id}", wrapper.GetConversation)
	})
	r.Group(func(r chi.Router) {
		r.Patch(options.BaseURL+"/conversations/{id}", wrapper.UpdateConversation)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/conversations/{id}/assignment", wrapper.UnassignConversation)
	})
	r.Group(func(r chi.Router) {
		r.Put(options.BaseURL+"/conversations/{id}/assignment", wrapper.AssignConversation)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/conversations/{id}/messages", wrapper.ListMessages)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/conversations/{id}/messages", wrapper.SendMessage)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/conversations/{id}/messaging-mode", wrapper.GetMessagingMode)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/conversations/{id}/read", wrapper.MarkConversationRead)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.HealthCheck)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/internal/cache/invalidate", wrapper.InvalidateCache)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/numbers", wrapper.ListNumbers)
	})

	return r
}
