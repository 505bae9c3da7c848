// Package handler provides HTTP request handlers for the application.
package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/api"
	"github.com/popeskul/wa-inbox/internal/middleware"
	"github.com/popeskul/wa-inbox/internal/provider"
	"github.com/popeskul/wa-inbox/internal/remote"
	"github.com/popeskul/wa-inbox/internal/service"
)

const (
	errorMessageInvalidBody         = "Request body is not valid JSON"
	errorMessageNotFound            = "Conversation not found"
	errorMessageTemplateRequired    = "The customer has not written in the last 24 hours, send a template instead"
	errorMessageProviderError       = "The messaging provider rejected the request"
	errorMessageProviderUnavailable = "The messaging provider is unavailable, try again later"
	errorMessageNothingToUpdate     = "Provide status, priority or pinned"
)

type Handler struct {
	service *service.Service
	logger  *zap.Logger
}

// NewHandler creates a new handler instance that implements api.ServerInterface.
func NewHandler(service *service.Service, logger *zap.Logger) api.ServerInterface {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// ParamErrorHandler answers 400 for path and query parameters that fail to bind.
func ParamErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	middleware.WriteError(w, r, http.StatusBadRequest, middleware.ErrorCodeValidation, err.Error())
}

// HealthCheck implements api.ServerInterface.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health.GetHealth(r.Context())

	response := api.HealthResponse{
		Status:    api.HealthResponseStatus(health.Status),
		Timestamp: health.Timestamp,
	}

	if health.SchedulerStatus != "" {
		status := api.HealthResponseSchedulerStatus(health.SchedulerStatus)
		response.SchedulerStatus = &status
	}

	response.SchedulerLastRun = health.SchedulerLastRun
	if health.SchedulerLastError != "" {
		response.SchedulerLastError = &health.SchedulerLastError
	}

	if health.DatabaseStatus != "" {
		status := api.HealthResponseDatabaseStatus(health.DatabaseStatus)
		response.DatabaseStatus = &status
	}

	if health.RedisStatus != "" {
		status := api.HealthResponseRedisStatus(health.RedisStatus)
		response.RedisStatus = &status
	}

	if health.CircuitBreakerStatus != "" {
		response.CircuitBreakerStatus = &health.CircuitBreakerStatus
	}

	if health.CircuitBreakerState != "" {
		state := api.HealthResponseCircuitBreakerState(health.CircuitBreakerState)
		response.CircuitBreakerState = &state
	}

	// Degraded still answers 200 so the dashboard stays usable.
	if response.Status == api.Unhealthy {
		render.Status(r, http.StatusServiceUnavailable)
	}

	render.JSON(w, r, response)
}

// InvalidateCache implements api.ServerInterface.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req api.InvalidateCacheRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		h.sendError(w, r, http.StatusBadRequest, middleware.ErrorCodeValidation, errorMessageInvalidBody)
		return
	}

	var id string
	if req.ConversationId != nil {
		id = *req.ConversationId
	}

	if err := h.service.Conversation.InvalidateCache(r.Context(), id); err != nil {
		h.handleServiceError(w, r, "Failed to invalidate cache", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListNumbers implements api.ServerInterface.
func (h *Handler) ListNumbers(w http.ResponseWriter, r *http.Request) {
	numbers := h.service.Conversation.Numbers()

	resp := api.NumberList{Numbers: make([]api.Number, 0, len(numbers))}
	for _, n := range numbers {
		resp.Numbers = append(resp.Numbers, toAPINumber(n))
	}

	render.JSON(w, r, resp)
}

// handleServiceError maps service and provider errors onto HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, logMessage string, err error) {
	var apiErr *provider.APIError

	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrEmptyMessage):
		h.sendError(w, r, http.StatusBadRequest, middleware.ErrorCodeValidation, err.Error())
	case errors.Is(err, service.ErrConversationNotFound):
		h.sendError(w, r, http.StatusNotFound, middleware.ErrorCodeNotFound, errorMessageNotFound)
	case errors.Is(err, service.ErrTemplateRequired):
		h.sendError(w, r, http.StatusConflict, middleware.ErrorCodeTemplateRequired, errorMessageTemplateRequired)
	case errors.Is(err, remote.ErrProviderUnavailable):
		h.logger.Warn(logMessage,
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.sendError(w, r, http.StatusServiceUnavailable, middleware.ErrorCodeProviderUnavailable, errorMessageProviderUnavailable)
	case errors.As(err, &apiErr), remote.IsTransient(err):
		h.logger.Error(logMessage,
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.sendError(w, r, http.StatusBadGateway, middleware.ErrorCodeProviderError, errorMessageProviderError)
	default:
		h.logger.Error(logMessage,
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, middleware.ErrorMessageInternal)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		h.sendError(w, r, http.StatusBadRequest, middleware.ErrorCodeValidation, errorMessageInvalidBody)
		return false
	}
	return true
}

func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	middleware.WriteError(w, r, statusCode, errorCode, message)
}
