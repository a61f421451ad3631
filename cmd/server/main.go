package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/hoops-tagging-service/internal/config"
	"github.com/maxviazov/hoops-tagging-service/internal/handler"
	"github.com/maxviazov/hoops-tagging-service/internal/logger"
	"github.com/maxviazov/hoops-tagging-service/internal/service"
)

// configPath prefers APP_CONFIG_FILE, then ./config.yaml when present.
// Without either, defaults plus APP_* env apply.
func configPath() string {
	if p := os.Getenv("APP_CONFIG_FILE"); p != "" {
		return p
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	if cfg.Logger.ServiceVersion == "" {
		cfg.Logger.ServiceVersion = cfg.App.Version
	}
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("save store unavailable")
	}
	defer be.close()

	svc := service.NewSessionService(be.store, service.Options{
		AutosaveDelay: cfg.Session.AutosaveDelay,
		GuardBand:     cfg.Session.SkipGuardBand,
		Debounce:      cfg.Session.SkipDebounce,
	}, appLogger)

	if cfg.App.Env == "prod" || cfg.App.Env == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler.Register(router, be.pinger, svc)

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.App.Port),
		Handler: router,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info().Str("addr", srv.Addr).Str("driver", cfg.Storage.Driver).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		httpErr := srv.Shutdown(shutdownCtx)
		// unsaved sessions go to the store before it is closed
		return errors.Join(httpErr, svc.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		appLogger.Error().Err(err).Msg("service stopped with error")
		be.close()
		os.Exit(1)
	}
	appLogger.Info().Msg("service stopped")
}
