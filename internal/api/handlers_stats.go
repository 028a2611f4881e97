package api

import (
	"net/http"
)

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"primary":      s.extractor.PrimaryName(),
		"fallback":     s.extractor.FallbackName(),
		"capabilities": s.extractor.Capabilities(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.extractor.Stats()
	if stats == nil {
		jsonError(w, "backend stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"backends": stats.Snapshot()})
}
