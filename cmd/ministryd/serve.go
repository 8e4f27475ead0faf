package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-ministry-site/docs"
	"github.com/tbourn/go-ministry-site/internal/config"
	httpapi "github.com/tbourn/go-ministry-site/internal/http"
	"github.com/tbourn/go-ministry-site/internal/observability"
	"github.com/tbourn/go-ministry-site/internal/repo"
	"github.com/tbourn/go-ministry-site/internal/services"
)

const (
	shutdownTimeout     = 10 * time.Second
	sessionPurgeEvery   = time.Hour
	sessionPurgeTimeout = 30 * time.Second
)

// serve runs the HTTP server until SIGINT/SIGTERM or a listener failure.
func serve(parent context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, appVersion())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	if err := httpapi.RegisterRoutes(r, db, cfg); err != nil {
		return err
	}
	docs.SwaggerInfo.BasePath = cfg.APIBasePath
	docs.SwaggerInfo.Version = appVersion()

	if !cfg.AdminEnabled() {
		log.Warn().Msg("ADMIN_TOKEN_HASH not set; admin API disabled")
	}

	go purgeSessions(ctx, services.NewSessionService(db, cfg.Session.TTL), sessionPurgeEvery)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", appVersion()).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type sessionPurger interface {
	Purge(ctx context.Context) (int64, error)
}

// purgeSessions deletes expired sessions every interval until ctx ends.
func purgeSessions(ctx context.Context, s sessionPurger, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, sessionPurgeTimeout)
			n, err := s.Purge(pctx)
			cancel()
			if err != nil {
				log.Warn().Err(err).Msg("session purge failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("deleted", n).Msg("expired sessions purged")
			}
		}
	}
}
