package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"everypoll/src/services/polls"
)

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Server representa o servidor HTTP da API
type Server struct {
	logger       *slog.Logger
	server       *http.Server
	mux          *http.ServeMux
	port         int
	pollService  *polls.PollService
	identity     IdentityResolver
	healthChecks map[string]HealthCheck
}

// NewServer cria uma nova instância do servidor
func NewServer(
	logger *slog.Logger,
	port int,
	pollService *polls.PollService,
	identity IdentityResolver,
	healthChecks map[string]HealthCheck,
) *Server {
	server := &Server{
		mux:          http.NewServeMux(),
		port:         port,
		logger:       logger,
		pollService:  pollService,
		identity:     identity,
		healthChecks: healthChecks,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Rotas de Leitura
	server.mux.HandleFunc("GET /v1/polls", server.ListPolls)
	server.mux.HandleFunc("GET /v1/polls/{id}", server.GetPoll)
	server.mux.HandleFunc("GET /v1/polls/{id}/relationships", server.GetRelationships)

	// Rotas de Escritas
	server.mux.HandleFunc("POST /v1/polls", server.CreatePoll)
	server.mux.HandleFunc("POST /v1/polls/{id}/vote", server.CastVote)
	server.mux.HandleFunc("POST /v1/polls/{id}/relationships", server.AttachRelationship)
	server.mux.HandleFunc("POST /v1/polls/{id}/recount", server.ReconcileTallies)

	server.mux.HandleFunc("GET /health", server.Health)

	return server
}

// Handler exposes the routes without a listener.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
