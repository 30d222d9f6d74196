package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kindred-health/kindred/internal/api"
	"github.com/kindred-health/kindred/internal/domain"
	"github.com/kindred-health/kindred/internal/service"
)

type KnowledgeService interface {
	Create(ctx context.Context, input service.CreateInput) (*domain.KnowledgeEntry, error)
	GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error)
	List(ctx context.Context) ([]*domain.KnowledgeEntry, error)
	Update(ctx context.Context, id string, input service.UpdateInput) (*domain.KnowledgeEntry, error)
	Delete(ctx context.Context, id string) error
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type CreateKnowledgeRequest struct {
	Expert    string   `json:"expert"`
	Source    string   `json:"source"`
	SourceURL string   `json:"source_url"`
	Category  string   `json:"category"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Keywords  []string `json:"keywords"`
}

type UpdateKnowledgeRequest struct {
	Expert    *string  `json:"expert"`
	Source    *string  `json:"source"`
	SourceURL *string  `json:"source_url"`
	Category  *string  `json:"category"`
	Title     *string  `json:"title"`
	Content   *string  `json:"content"`
	Keywords  []string `json:"keywords"`
}

type KnowledgeResponse struct {
	ID           string   `json:"id"`
	Expert       string   `json:"expert"`
	Source       string   `json:"source"`
	SourceURL    string   `json:"source_url,omitempty"`
	Category     string   `json:"category"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Keywords     []string `json:"keywords"`
	HasEmbedding bool     `json:"has_embedding"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func knowledgeToResponse(k *domain.KnowledgeEntry) *KnowledgeResponse {
	return &KnowledgeResponse{
		ID:           k.ID,
		Expert:       k.Expert,
		Source:       k.Source,
		SourceURL:    k.SourceURL,
		Category:     k.Category,
		Title:        k.Title,
		Content:      k.Content,
		Keywords:     k.Keywords,
		HasEmbedding: k.HasEmbedding(),
		CreatedAt:    k.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    k.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateKnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.Create(r.Context(), service.CreateInput{
		Expert:    req.Expert,
		Source:    req.Source,
		SourceURL: req.SourceURL,
		Category:  req.Category,
		Title:     req.Title,
		Content:   req.Content,
		Keywords:  req.Keywords,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, knowledgeToResponse(entry))
}

func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	entry, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, knowledgeToResponse(entry))
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context())
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

func (h *KnowledgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req UpdateKnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.Update(r.Context(), id, service.UpdateInput{
		Expert:    req.Expert,
		Source:    req.Source,
		SourceURL: req.SourceURL,
		Category:  req.Category,
		Title:     req.Title,
		Content:   req.Content,
		Keywords:  req.Keywords,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, knowledgeToResponse(entry))
}

func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}
