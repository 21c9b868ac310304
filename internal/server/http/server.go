// Package http exposes the service over HTTP: huma-registered API
// operations for transcription, model management, health and the
// request audit log, plus plain handlers for the dashboard and API
// info. Every request passes through the audit and CORS middleware.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/ekisa-team/whisperd/internal/config"
	"github.com/ekisa-team/whisperd/internal/models"
	"github.com/ekisa-team/whisperd/internal/requestlog"
	"github.com/ekisa-team/whisperd/internal/service"
)

// Deps are the wired services the HTTP layer serves.
type Deps struct {
	Transcriber *service.Transcriber
	Models      *models.Manager
	Audit       *requestlog.Logger
}

// Server is the HTTP front of the service.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
}

// New builds the full handler chain and the server around it. The
// server does not listen until Start is called.
func New(cfg *config.Config, deps Deps) *Server {
	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig(cfg.API.Title, cfg.API.Version))

	NewTranscribeHandler(api, deps.Transcriber)
	NewModelsHandler(api, deps.Models, cfg.Whisper.Device, cfg.Whisper.ComputeType)
	NewSystemHandler(api, mux, deps.Models, cfg)
	NewLogsHandler(api, deps.Audit)

	var handler http.Handler = mux
	handler = corsMiddleware(cfg.Server.CORSOrigins, handler)
	handler = auditMiddleware(deps.Audit, handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       5 * time.Minute,
			WriteTimeout:      10 * time.Minute,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start binds the listener and serves in the background. Serve
// failures after startup are logged, not returned.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("HTTP server listening", "address", listener.Addr().String())
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
