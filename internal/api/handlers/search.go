package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kindred-health/kindred/internal/api"
	"github.com/kindred-health/kindred/internal/domain"
)

type SearchService interface {
	Search(ctx context.Context, query string, limit int) ([]*domain.KnowledgeEntry, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.svc.Search(r.Context(), query, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*KnowledgeResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, knowledgeToResponse(entry))
	}

	api.Success(w, http.StatusOK, responses)
}
