package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mikeczech/codenames/internal/platform/timeouts"
	grpcapi "github.com/mikeczech/codenames/internal/services/codenames/api/grpc"
	httpapi "github.com/mikeczech/codenames/internal/services/codenames/api/http"
)

// Config configures a codenames server process.
type Config struct {
	StoreConfig
	// HTTPAddr is the HTTP listen address.
	HTTPAddr string
	// GRPCAddr is the gRPC listen address; empty disables gRPC.
	GRPCAddr  string
	PublicURL string
	// RateLimit is the per-session mutation rate in requests per second.
	RateLimit float64
	RateBurst int
}

// Server serves the HTTP and gRPC APIs over one runtime.
type Server struct {
	runtime      *Runtime
	httpListener net.Listener
	httpServer   *http.Server
	grpcListener net.Listener
	grpcServer   *grpcapi.Server
	closeOnce    sync.Once
}

// New opens the runtime and binds the listeners.
func New(ctx context.Context, cfg Config) (*Server, error) {
	runtime, err := Open(ctx, cfg.StoreConfig)
	if err != nil {
		return nil, err
	}
	logger := *zerolog.Ctx(ctx)

	httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		_ = runtime.Close()
		return nil, fmt.Errorf("listen on http %s: %w", cfg.HTTPAddr, err)
	}
	handler := httpapi.New(runtime.Service, httpapi.Options{
		PublicURL: cfg.PublicURL,
		RateLimit: rate.Limit(cfg.RateLimit),
		RateBurst: cfg.RateBurst,
		Logger:    logger,
		Ready:     runtime.Store.Ping,
	})
	s := &Server{
		runtime:      runtime,
		httpListener: httpListener,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}

	if addr := strings.TrimSpace(cfg.GRPCAddr); addr != "" {
		grpcListener, err := net.Listen("tcp", addr)
		if err != nil {
			_ = httpListener.Close()
			_ = runtime.Close()
			return nil, fmt.Errorf("listen on grpc %s: %w", addr, err)
		}
		s.grpcListener = grpcListener
		s.grpcServer = grpcapi.NewServer(runtime.Service, logger, nil)
	}
	return s, nil
}

// HTTPAddr returns the bound HTTP address.
func (s *Server) HTTPAddr() string {
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the bound gRPC address, or "" when gRPC is disabled.
func (s *Server) GRPCAddr() string {
	if s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Serve runs both servers until ctx ends or one of them fails, then shuts
// the other down and closes the store.
func (s *Server) Serve(ctx context.Context) error {
	defer s.Close()
	log := zerolog.Ctx(ctx)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("addr", s.HTTPAddr()).Msg("http server listening")
		if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	})
	if s.grpcServer != nil {
		group.Go(func() error {
			log.Info().Str("addr", s.GRPCAddr()).Msg("grpc server listening")
			return s.grpcServer.Serve(groupCtx, s.grpcListener)
		})
	}
	err := group.Wait()
	log.Info().Msg("servers stopped")
	return err
}

// Close stops the servers and closes the store. It is safe to call more than once.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		_ = s.httpServer.Close()
		if s.grpcServer != nil {
			s.grpcServer.Stop()
		}
		err = s.runtime.Close()
	})
	return err
}
