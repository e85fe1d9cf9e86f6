package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Mokshithabhi/chatpdf/internal/core"
	"github.com/Mokshithabhi/chatpdf/internal/models"
	"github.com/Mokshithabhi/chatpdf/internal/pkg/logger"
	"github.com/Mokshithabhi/chatpdf/internal/services"
)

type ChatHandler struct {
	queries *services.QueryService
	log     *logger.Logger
}

func NewChatHandler(queries *services.QueryService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{queries: queries, log: log}
}

type chatRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
}

func (h *ChatHandler) QueryDocument(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocumentID == "" || req.Question == "" {
		http.Error(w, "missing document_id or question", http.StatusBadRequest)
		return
	}

	ans, err := h.queries.Answer(r.Context(), req.DocumentID, req.Question)
	if err != nil {
		h.log.Warn("query failed", "document_id", req.DocumentID, "err", err)
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, core.ErrAlreadyProcessing):
			// Control signal, not a failure: the caller should poll and retry.
			status = http.StatusConflict
		case errors.Is(err, core.ErrDocumentNotFound):
			status = http.StatusNotFound
		case errors.Is(err, core.ErrSourceUnavailable):
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]any{"error": err.Error()})
		return
	}

	reply := models.Message{
		ID:        uuid.NewString(),
		Role:      "assistant",
		Text:      ans.Text,
		Citations: ans.Citations,
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"answer":    ans.Text,
		"citations": ans.Citations,
		"source":    ans.Source,
		"message":   reply,
	})
}
