package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tvsaude/auth-service/internal/config"
	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/workers"
)

type server struct {
	httpServer *httpServer
	workers    *workers.Workers
	logger     *logger.Logger
}

// NewServer builds the application server: the HTTP transport serving the
// given handler plus the background workers supervised alongside it.
func NewServer(handler http.Handler, jobs *workers.Workers, cfg config.Server, logger *logger.Logger) Server {
	logger.Info().Msg("creating new server...")

	return &server{
		httpServer: newHTTPServer(handler, cfg, logger),
		workers:    jobs,
		logger:     logger,
	}
}

func (s *server) RunServer() {
	if err := s.run(); err != nil {
		s.logger.Info().Msgf("Error running server: %v \n", err)
	}
}

func (s *server) Shutdown() {
	// finish HTTP server first so no requests race the stopped workers
	if s.httpServer != nil {
		s.httpServer.Shutdown()
	}

	if s.workers != nil {
		s.workers.Stop()
	}
}

func (s *server) run() error {
	if s.httpServer == nil {
		return errors.New("no server to run")
	}

	idleConnectionsClosed := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	// listen for stop signals
	go func() {
		<-ctx.Done()

		s.Shutdown()

		close(idleConnectionsClosed)
	}()

	if s.workers != nil {
		s.logger.Info().Msg("Launching background workers")
		s.workers.Start(ctx)
	}

	s.logger.Info().Msg("Launching HTTP server")
	go s.httpServer.RunServer()

	<-idleConnectionsClosed
	s.logger.Info().Msg("server Shutdown gracefully")

	return nil
}
