package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gluk-w/tabshell/internal/aiclient"
	"github.com/gluk-w/tabshell/internal/scheduler"
)

// Server wires the scheduler, history/resolver, and AI capabilities
// together behind chi's router. Translator and Embedder may be nil when no
// AI backend is configured; handlers degrade to "AI not configured"
// responses rather than panicking.
type Server struct {
	Manager    *scheduler.Manager
	Timers     *scheduler.Timers
	Translator aiclient.Translator
	Embedder   aiclient.Embedder
	MaxRetries int
}

// Router builds the HTTP handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleRemoveSession)
			r.Post("/select", s.handleSelectSession)
			r.Post("/execute", s.handleExecute)
			r.Get("/ws", s.handleTerminalWS)
		})
	})

	r.Post("/api/translate", s.handleTranslate)
	r.Get("/api/identity", s.handleGetIdentity)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
