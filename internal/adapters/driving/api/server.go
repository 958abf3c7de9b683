package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/chateqt/internal/core/ports/driving"
	"github.com/custodia-labs/chateqt/internal/logger"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = ":8080"

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Ports holds the services the REST API exposes.
type Ports struct {
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
}

// Server is the REST server.
type Server struct {
	listenAddr string
	app        *fiber.App
}

// NewServer creates a server listening on addr with all routes registered.
func NewServer(addr string, ports *Ports) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if ports == nil {
		ports = &Ports{}
	}

	var (
		app          = fiber.New(fiber.Config{ErrorHandler: ErrorHandler, DisableStartupMessage: true})
		checkHandler = NewCheckHandler()
		queryHandler = NewQueryHandler(ports.Retrieval, ports.Answer)
		check        = app.Group("/check")
		apiv1        = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/retrieve", queryHandler.HandleRetrieve)
	apiv1.Post("/ask", queryHandler.HandleAsk)

	return &Server{listenAddr: addr, app: app}
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.listenAddr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("REST API listening on %s", s.listenAddr)
		errCh <- s.app.Listen(s.listenAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.listenAddr, err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutting down REST API")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
