package handler

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/samber/lo"

	"github.com/popeskul/wa-inbox/internal/api"
	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/service"
)

// ListMessages implements api.ServerInterface.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request, id api.ConversationId, params api.ListMessagesParams) {
	var cursor *models.MessageCursor
	if params.Before != nil {
		cursor = &models.MessageCursor{Before: *params.Before, BeforeID: lo.FromPtr(params.BeforeId)}
	}

	page, err := h.service.Message.List(r.Context(), id, lo.FromPtr(params.Limit), cursor)
	if err != nil {
		h.handleServiceError(w, r, "Failed to list messages", err)
		return
	}

	render.JSON(w, r, toAPIMessagePage(page))
}

// SendMessage implements api.ServerInterface.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request, id api.ConversationId) {
	var req api.SendMessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	input := service.SendMessageInput{
		AgentID:     req.AgentId,
		Body:        lo.FromPtr(req.Body),
		TemplateSID: lo.FromPtr(req.TemplateSid),
	}
	if req.TemplateVariables != nil {
		input.TemplateVariables = *req.TemplateVariables
	}

	msg, err := h.service.Message.Send(r.Context(), id, input)
	if err != nil {
		h.handleServiceError(w, r, "Failed to send message", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toAPIMessage(*msg))
}

// GetMessagingMode implements api.ServerInterface.
func (h *Handler) GetMessagingMode(w http.ResponseWriter, r *http.Request, id api.ConversationId) {
	mode, err := h.service.Message.MessagingMode(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, "Failed to resolve messaging mode", err)
		return
	}

	render.JSON(w, r, toAPIMessagingMode(mode))
}
