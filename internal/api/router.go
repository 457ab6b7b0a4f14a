package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Zuo-Peng/chatx/internal/config"
	"github.com/Zuo-Peng/chatx/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server holds the dependencies shared by every handler.
type Server struct {
	Store   session.Store
	Config  *config.Config
	Version string
	Now     func() time.Time

	started time.Time
}

func NewServer(store session.Store, cfg *config.Config, version string) *Server {
	return &Server{
		Store:   store,
		Config:  cfg,
		Version: version,
		Now:     time.Now,
		started: time.Now(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/api/upload", s.handleUpload)
	r.Get("/api/sessions/{id}", s.handleSession)
	r.Get("/api/sessions/{id}/export", s.handleExport)

	return r
}

type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Version:   s.Version,
		Timestamp: s.Now().UTC().Format(time.RFC3339),
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, status int, msg string) {
	sendJSON(w, status, errorResponse{Error: msg})
}

// sendNotFound is the single response for unknown, expired and exported
// session ids.
func sendNotFound(w http.ResponseWriter) {
	sendError(w, http.StatusNotFound, session.ErrNotFound.Error())
}
