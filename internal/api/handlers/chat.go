package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kindred-health/kindred/internal/api"
	"github.com/kindred-health/kindred/internal/domain"
	"github.com/kindred-health/kindred/internal/service"
)

type ChatService interface {
	Respond(ctx context.Context, input service.RespondInput) (*service.ChatResult, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatTurnRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message     string            `json:"message"`
	History     []ChatTurnRequest `json:"history"`
	FileContent string            `json:"file_content"`
	FileName    string            `json:"file_name"`
}

type CitationResponse struct {
	Expert    string `json:"expert"`
	Source    string `json:"source"`
	SourceURL string `json:"source_url,omitempty"`
}

type ChatResponse struct {
	Response            string             `json:"response"`
	ResponseSource      string             `json:"response_source"`
	Sources             []CitationResponse `json:"sources"`
	UsedExpertKnowledge bool               `json:"used_expert_knowledge"`
}

func (h *ChatHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	history := make([]domain.ChatTurn, 0, len(req.History))
	for _, turn := range req.History {
		role := domain.ChatRole(turn.Role)
		if role != domain.ChatRoleUser && role != domain.ChatRoleAssistant {
			api.Error(w, http.StatusBadRequest, "invalid history role")
			return
		}
		history = append(history, domain.ChatTurn{Role: role, Content: turn.Content})
	}

	result, err := h.svc.Respond(r.Context(), service.RespondInput{
		Message:     req.Message,
		History:     history,
		FileContent: req.FileContent,
		FileName:    req.FileName,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	sources := make([]CitationResponse, 0, len(result.Sources))
	for _, c := range result.Sources {
		sources = append(sources, CitationResponse{
			Expert:    c.Expert,
			Source:    c.Source,
			SourceURL: c.SourceURL,
		})
	}

	api.Success(w, http.StatusOK, ChatResponse{
		Response:            result.Response,
		ResponseSource:      string(result.Source),
		Sources:             sources,
		UsedExpertKnowledge: result.UsedExpertKnowledge,
	})
}
