package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docread/internal/config"
	"github.com/dgallion1/docread/internal/extractor"
	"github.com/dgallion1/docread/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docread.
type Server struct {
	router    chi.Router
	extractor *extractor.Extractor
	log       *slog.Logger
	cfg       config.Config
	uploadDir string
}

// NewServer creates and configures the HTTP server. Uploads are staged under
// uploadDir ("" means the system temp dir).
func NewServer(ex *extractor.Extractor, log *slog.Logger, cfg config.Config, uploadDir string) *Server {
	s := &Server{
		extractor: ex,
		log:       log,
		cfg:       cfg,
		uploadDir: uploadDir,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/extract/batch", s.handleBatchExtract)
		r.Get("/api/capabilities", s.handleCapabilities)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) runner() *pipeline.Runner {
	return pipeline.NewRunner(s.extractor, s.cfg.Workers, s.log)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
