package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/advocates/config"
	"github.com/meghashyamc/advocates/db"
	"github.com/meghashyamc/advocates/db/advocatedb"
	"github.com/meghashyamc/advocates/logger"
	"github.com/meghashyamc/advocates/services/seed"
	"github.com/meghashyamc/advocates/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg        *config.Config
	router     *gin.Engine
	httpServer *http.Server
	advocateDB advocatedb.DB
	validator  *validation.Validator
	logger     logger.Logger
}

// Run serves the advocate API until ctx is cancelled or the process receives
// SIGINT or SIGTERM, then shuts the server down and closes the store.
func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(cfg.GetLogLevel()),
	}
	if err := s.setupDependencies(ctx); err != nil {
		return err
	}
	s.setupRouter()

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GetPort()))
	if err != nil {
		s.logger.Error("could not listen", "port", cfg.GetPort(), "err", err.Error())
		s.advocateDB.Close()
		return err
	}

	return s.serve(ctx, listener)
}

func (s *server) setupDependencies(ctx context.Context) error {
	var err error
	s.advocateDB, err = db.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating advocate database", "err", err.Error())
		return err
	}

	if _, err := seed.New(s.logger, s.advocateDB).LoadIfEmpty(ctx, s.cfg.GetSeedPath()); err != nil {
		s.logger.Error("error seeding advocate database", "err", err.Error())
		s.advocateDB.Close()
		return err
	}

	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		s.advocateDB.Close()
		return err
	}

	return nil

}

func (s *server) setupRouter() {
	router := newRouter(s.logger)

	setupRoutes(router, s.logger, s.advocateDB, s.validator, s.cfg.GetSearchTimeout())

	s.router = router
}

// serve blocks until ctx is done or the listener fails.
func (s *server) serve(ctx context.Context, listener net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrC := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", listener.Addr().String())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrC <- err
		}
		close(serveErrC)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		s.logger.Info("starting to shut down http server", "reason", context.Cause(ctx))
	case serveErr = <-serveErrC:
		if serveErr != nil {
			s.logger.Error("http server failed", "err", serveErr.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err.Error())
		serveErr = errors.Join(serveErr, err)
	}
	if err := s.advocateDB.Close(); err != nil {
		s.logger.Error("error closing advocate database", "err", err.Error())
		serveErr = errors.Join(serveErr, err)
	}
	if serveErr == nil {
		s.logger.Info("shut down http server successfully")
	}

	return serveErr
}
