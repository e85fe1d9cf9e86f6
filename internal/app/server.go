package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Mokshithabhi/chatpdf/internal/api/handlers"
	"github.com/Mokshithabhi/chatpdf/internal/config"
	objectclient "github.com/Mokshithabhi/chatpdf/internal/core/object-client"
	"github.com/Mokshithabhi/chatpdf/internal/pkg/logger"
	"github.com/Mokshithabhi/chatpdf/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, cache *services.DocumentCache, queries *services.QueryService, objects objectclient.ObjectClient, log *logger.Logger) *Server {
	docHandler := handlers.NewDocumentHandler(cache, objects, cfg, log)
	chatHandler := handlers.NewChatHandler(queries, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Post("/documents/upload", docHandler.UploadDocument)
		api.Post("/ingest", docHandler.IngestDocument)
		api.Get("/documents/{documentID}", docHandler.DescribeDocument)
		api.Post("/chat", chatHandler.QueryDocument)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, log: log}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
