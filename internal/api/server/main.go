package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/bz888/agent-relay/internal/api/server/client"
	"github.com/bz888/agent-relay/internal/api/server/handlers"
	"github.com/bz888/agent-relay/internal/api/server/relay"
	"github.com/bz888/agent-relay/internal/config"
	"github.com/bz888/agent-relay/internal/logger"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	httpSrv     *http.Server
	localLogger *logger.Logger
}

// New wires the upstream client, the relay and the routes for cfg.
func New(cfg *config.Config) (*Server, error) {
	openRouterClient, err := client.NewOpenRouterClient(cfg, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create upstream client")
	}
	return NewWithRelay(cfg, relay.New(cfg, openRouterClient)), nil
}

func NewWithRelay(cfg *config.Config, chatRelay handlers.ChatRelay) *Server {
	mux := http.NewServeMux()
	registerRoutes(mux, handlers.NewHandler(chatRelay))

	return &Server{
		httpSrv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		localLogger: logger.NewLogger("Server"),
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run listens on the configured address until ctx is done, then drains
// in-flight turns.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.httpSrv.Addr)
	}
	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		s.localLogger.Info("Server started on http://" + listener.Addr().String() + "/")
		if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "error starting server")
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		s.localLogger.Info("Shutting down gracefully.")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "server shutdown error")
		}
		return nil
	})

	return eg.Wait()
}
