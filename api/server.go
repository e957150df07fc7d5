package api

import (
	"context"
	"errors"
	"net/http"

	"fairplayServer/config"
	"fairplayServer/engine"
	"fairplayServer/game"
	"fairplayServer/state"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// HealthChecker is a backing store that can report its health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server holds the HTTP handlers' dependencies.
type Server struct {
	engine      *engine.Engine
	leaderboard state.Leaderboard
	health      map[string]HealthChecker
	feed        http.Handler
	validate    *validator.Validate
}

type Option func(*Server)

// WithHealthCheck adds a named dependency to GET /api/health.
func WithHealthCheck(name string, hc HealthChecker) Option {
	return func(s *Server) { s.health[name] = hc }
}

// WithFeed mounts the websocket feed at GET /ws.
func WithFeed(h http.Handler) Option {
	return func(s *Server) { s.feed = h }
}

func NewServer(e *engine.Engine, leaderboard state.Leaderboard, opts ...Option) *Server {
	s := &Server{
		engine:      e,
		leaderboard: leaderboard,
		health:      make(map[string]HealthChecker),
		validate:    validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/game", s.HandleGame)
		r.Post("/verify", s.HandleVerify)
		r.Get("/health", s.HandleHealthCheck)
		r.Get("/leaderboard", s.HandleGetLeaderboard)
	})

	if s.feed != nil {
		r.Method(http.MethodGet, "/ws", s.feed)
	}

	return r
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", config.AllowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", config.AllowMethods)
		w.Header().Set("Access-Control-Allow-Headers", config.AllowHeaders)

		// Handle preflight OPTIONS request
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

/* =========================
   RESPONSES
========================= */

// Error codes returned in the "code" field
const (
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInternal            = "INTERNAL_ERROR"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func sendJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, v)
}

func sendError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

// sendEngineError maps a domain error to its status. Internal details stay
// in the log.
func sendEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		sendError(w, r, http.StatusNotFound, CodeSessionNotFound, "Session not found, call initialize first")
	case errors.Is(err, game.ErrInsufficientBalance):
		sendError(w, r, http.StatusBadRequest, CodeInsufficientBalance, err.Error())
	case errors.Is(err, game.ErrInvalidInput):
		sendError(w, r, http.StatusBadRequest, CodeInvalidInput, err.Error())
	default:
		sendError(w, r, http.StatusInternalServerError, CodeInternal, "Internal server error")
	}
}
