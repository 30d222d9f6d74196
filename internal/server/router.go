package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kindred-health/kindred/internal/api"
	"github.com/kindred-health/kindred/internal/api/handlers"
	"github.com/kindred-health/kindred/internal/api/middleware"
)

type RouterConfig struct {
	AdminToken       string
	ChatHandler      *handlers.ChatHandler
	SearchHandler    *handlers.SearchHandler
	KnowledgeHandler *handlers.KnowledgeHandler
	DocumentHandler  *handlers.DocumentHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/chat", cfg.ChatHandler.Respond)
	r.Get("/knowledge/search", cfg.SearchHandler.Search)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", cfg.DocumentHandler.Register)
		r.Get("/", cfg.DocumentHandler.List)
		r.Post("/{id}/confirm", cfg.DocumentHandler.ConfirmUpload)
		r.Get("/{id}/download", cfg.DocumentHandler.Download)
		r.Delete("/{id}", cfg.DocumentHandler.Delete)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.AdminToken))

		r.Route("/admin/knowledge", func(r chi.Router) {
			r.Post("/", cfg.KnowledgeHandler.Create)
			r.Get("/", cfg.KnowledgeHandler.List)
			r.Get("/{id}", cfg.KnowledgeHandler.Get)
			r.Put("/{id}", cfg.KnowledgeHandler.Update)
			r.Delete("/{id}", cfg.KnowledgeHandler.Delete)
		})
	})

	return r
}
