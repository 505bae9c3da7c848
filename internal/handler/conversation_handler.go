package handler

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/samber/lo"

	"github.com/popeskul/wa-inbox/internal/api"
	"github.com/popeskul/wa-inbox/internal/middleware"
	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/service"
)

// ListConversations implements api.ServerInterface.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request, params api.ListConversationsParams) {
	listParams := service.ListParams{
		Limit:      lo.FromPtr(params.Limit),
		Cursor:     lo.FromPtr(params.Cursor),
		AgentID:    lo.FromPtr(params.AgentId),
		NumberID:   lo.FromPtr(params.NumberId),
		Unassigned: lo.FromPtr(params.Unassigned),
	}
	if params.Status != nil {
		listParams.Status = models.ConversationStatus(*params.Status)
	}

	list, err := h.service.Conversation.List(r.Context(), listParams)
	if err != nil {
		h.handleServiceError(w, r, "Failed to list conversations", err)
		return
	}

	render.JSON(w, r, toAPIConversationList(list))
}

// CreateConversation implements api.ServerInterface.
func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req api.CreateConversationRequest
	if !h.decode(w, r, &req) {
		return
	}

	detail, err := h.service.Conversation.Create(r.Context(), service.CreateConversationInput{
		CustomerPhone: req.CustomerPhone,
		CustomerName:  lo.FromPtr(req.CustomerName),
		NumberID:      req.NumberId,
		AgentID:       lo.FromPtr(req.AgentId),
	})
	if err != nil {
		h.handleServiceError(w, r, "Failed to create conversation", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toAPIConversationDetail(detail))
}

// GetConversation implements api.ServerInterface.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request, id api.ConversationId) {
	detail, err := h.service.Conversation.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, "Failed to get conversation", err)
		return
	}

	render.JSON(w, r, toAPIConversationDetail(detail))
}

// DeleteConversation implements api.ServerInterface.
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request, id api.ConversationId) {
	if err := h.service.Conversation.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, "Failed to delete conversation", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateConversation implements api.ServerInterface.
func (h *Handler) UpdateConversation(w http.ResponseWriter, r *http.Request, id api.ConversationId) {
	var req api.UpdateConversationRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.Status == nil && req.Pinned == nil && req.Priority == nil {
		h.sendError(w, r, http.StatusBadRequest, middleware.ErrorCodeValidation, errorMessageNothingToUpdate)
		return
	}

	if req.Status != nil {
		if err := h.service.Conversation.UpdateStatus(r.Context(), id, models.ConversationStatus(*req.Status)); err != nil {
			h.handleServiceError(w, r, "Failed to update conversation status", err)
			return
		}
	}

	if req.Priority != nil {
		if err := h.service.Conversation.SetPriority(r.Context(), id, models.ConversationPriority(*req.Priority)); err != nil {
			h.handleServiceError(w, r, "Failed to update conversation priority", err)
			return
		}
	}

	if req.Pinned != nil {
		if err := h.service.Conversation.SetPinned(r.Context(), id, *req.Pinned); err != nil {
			h.handleServiceError(w, r, "Failed to pin conversation", err)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignConversation implements api.ServerInterface.
func (h *Handler) AssignConversation(w http.ResponseWriter, r *http.Request, id api.ConversationId) {
	var req api.AssignConversationRequest
	if !h.decode(w, r, &req) {
		return
	}

	assignment, err := h.service.Conversation.Assign(r.Context(), id, req.AgentId)
	if err != nil {
		h.handleServiceError(w, r, "Failed to assign conversation", err)
		return
	}

	render.JSON(w, r, api.Assignment{
		Id:   assignment.AgentID,
		Name: assignment.AgentName,
	})
}

// UnassignConversation implements api.ServerInterface.
func (h *Handler) UnassignConversation(w http.ResponseWriter, r *http.Request, id api.ConversationId) {
	if err := h.service.Conversation.Unassign(r.Context(), id); err != nil {
		h.handleServiceError(w, r, "Failed to unassign conversation", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkConversationRead implements api.ServerInterface.
func (h *Handler) MarkConversationRead(w http.ResponseWriter, r *http.Request, id api.ConversationId) {
	if err := h.service.Conversation.MarkRead(r.Context(), id); err != nil {
		h.handleServiceError(w, r, "Failed to mark conversation read", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
