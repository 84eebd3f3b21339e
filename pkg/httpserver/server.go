package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/dripfeed/pkg/logger"
)

type config struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	onListen        []func(addr string)
}

// Server wraps http.Server with graceful shutdown and logging.
type Server struct {
	cfg  config
	once sync.Once

	mu  sync.Mutex
	srv *http.Server
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := config{
		addr:            ":5000",
		shutdownTimeout: 10 * time.Second,
		logger:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{cfg: cfg}
}

// Run listens on the configured address and serves handler until ctx is
// cancelled, a termination signal arrives, or Shutdown is called.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, errors.New("server already running"))
	}
	srv := &http.Server{
		Addr:         s.cfg.addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.readTimeout,
		WriteTimeout: s.cfg.writeTimeout,
		IdleTimeout:  s.cfg.idleTimeout,
		ErrorLog:     slog.NewLogLogger(s.cfg.logger.Handler(), slog.LevelWarn),
	}
	s.srv = srv
	s.mu.Unlock()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return errors.Join(ErrStart, err)
	}

	addr := ln.Addr().String()
	s.cfg.logger.InfoContext(ctx, "http server listening", slog.String("addr", addr))
	for _, fn := range s.cfg.onListen {
		fn(addr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-ctx.Done():
		runErr = s.shutdownAndWait(errCh)
	case sig := <-stop:
		s.cfg.logger.Info("received signal", slog.String("signal", sig.String()))
		runErr = s.shutdownAndWait(errCh)
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	s.cfg.logger.Info("http server stopped")
	return nil
}

func (s *Server) shutdownAndWait(errCh <-chan error) error {
	if err := s.Shutdown(context.Background()); err != nil {
		s.cfg.logger.Error("graceful shutdown failed", logger.Error(err))
	}
	return <-errCh
}

// Shutdown stops the server gracefully. Repeated calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()
		if srv == nil {
			return
		}
		ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(ctx)
	})

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
