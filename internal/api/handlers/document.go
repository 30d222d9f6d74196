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

type DocumentService interface {
	Register(ctx context.Context, input service.CreateDocumentInput) (*service.DocumentUploadTicket, error)
	ConfirmUpload(ctx context.Context, id string) (*domain.Document, error)
	DownloadURL(ctx context.Context, id string) (string, error)
	List(ctx context.Context) ([]*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type RegisterDocumentRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Category    string `json:"category"`
	IsEmergency bool   `json:"is_emergency"`
}

type DocumentResponse struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Category    string `json:"category"`
	IsEmergency bool   `json:"is_emergency"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

type RegisterDocumentResponse struct {
	Document  *DocumentResponse `json:"document"`
	UploadURL string            `json:"upload_url"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:          d.ID,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		Category:    d.Category,
		IsEmergency: d.IsEmergency,
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
}

func (h *DocumentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket, err := h.svc.Register(r.Context(), service.CreateDocumentInput{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		Category:    req.Category,
		IsEmergency: req.IsEmergency,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, RegisterDocumentResponse{
		Document:  documentToResponse(ticket.Document),
		UploadURL: ticket.UploadURL,
	})
}

func (h *DocumentHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.svc.ConfirmUpload(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	url, err := h.svc.DownloadURL(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"download_url": url})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, documentToResponse(doc))
	}

	api.Success(w, http.StatusOK, responses)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
