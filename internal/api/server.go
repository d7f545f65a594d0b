// Package api serves parsed conversations over HTTP, mirroring the CLI
// pipeline: project discovery, cached parse, tree build, session grouping.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
)

// Server exposes the conversation pipeline as a JSON API.
type Server struct {
	router  *chi.Mux
	port    int
	cfg     internal.Config
	service *internal.ConversationService
}

// NewServer builds the router. The service is shared across requests, so
// concurrent fetches of one project coalesce into a single parse.
func NewServer(cfg internal.Config, port int) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		cfg:     cfg,
		service: internal.NewConversationService(cfg),
	}

	router.Get("/health", s.health)
	router.Get("/api/projects", s.projects)
	router.Get("/api/conversation/{projectID}", s.conversation)
	router.Get("/api/cache/stats", s.cacheStats)
	router.Post("/api/cache/clear", s.cacheClear)

	return s
}

// Router returns the underlying handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start blocks serving HTTP on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	internal.LogInfo("API server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) projects(w http.ResponseWriter, r *http.Request) {
	projects, err := internal.ListProjects(s.cfg.ProjectsDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"projects": projects,
		"count":    len(projects),
	})
}

func (s *Server) conversation(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	project, err := internal.FindProject(s.cfg.ProjectsDir, projectID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	useCache := r.URL.Query().Get("refresh") != "true"
	conv, err := s.service.Load(project.Path, useCache)
	if err != nil {
		var srcErr *internal.SourceError
		if errors.As(err, &srcErr) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	messages := conv.Messages
	sanitize := r.URL.Query().Get("sanitize") == "true"
	if sanitize {
		sanitizer := internal.NewSanitizer(true, s.cfg.SanitizeRules)
		messages = sanitizer.SanitizeMessages(messages)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"project_id":    projectID,
		"message_count": len(messages),
		"messages":      messages,
		"stats":         conv.Stats,
		"sessions":      conv.Sessions,
		"sanitized":     sanitize,
	})
}

func (s *Server) cacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Cache().Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

func (s *Server) cacheClear(w http.ResponseWriter, r *http.Request) {
	count, err := s.service.Cache().Clear("")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Cleared %d cache files", count),
		"count":   count,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		internal.LogWarn("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	internal.LogError("Request failed: %v", err)
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	})
}
