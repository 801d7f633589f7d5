package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/adapters/storage/memory"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/bridge"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/genmedia"
	cfgpkg "github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/config"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/httpapi"
	obs "github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/observability"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/usecase"
)

func main() {
	_ = godotenv.Load()
	cfg := cfgpkg.FromEnv()

	logger := obs.NewLogger(cfg.LogLevel)
	logger.Info().Str("addr", cfg.Addr).Str("engine", cfg.EngineURL).Msg("starting virtual-studio")

	metrics := obs.NewMetrics()

	store := memory.NewStore(cfg.MaxScreenshots, memory.DefaultCars(), memory.DefaultBackgrounds())
	studio := usecase.NewStudioService(store, store)

	gen := genmedia.New(genmedia.Options{
		BaseURL:       cfg.GenBaseURL,
		APIKey:        cfg.GenAPIKey,
		MaskTimeout:   cfg.GenMaskTimeout,
		ImageTimeout:  cfg.GenComposeTimeout,
		SubmitTimeout: cfg.GenVideoTimeout,
		MaxAttempts:   cfg.GenMaxAttempts,
		BackoffBase:   cfg.GenBackoffBase,
		BackoffCap:    cfg.GenBackoffCap,
		PollInterval:  cfg.GenPollInterval,
		PollAttempts:  cfg.GenPollAttempts,
		QuotaCooldown: cfg.GenQuotaCooldown,
	}, obs.Component(logger, "genmedia"), metrics)

	br := bridge.New(bridge.Config{
		Namespace:             cfg.Namespace,
		StreamEndpointURL:     cfg.StreamEndpointURL,
		DefaultCarID:          cfg.DefaultCarID,
		URLHandoffDelay:       cfg.URLHandoffDelay,
		StopBeforeRenderDelay: cfg.StopBeforeRenderDelay,
		ResequenceDelay:       cfg.ResequenceDelay,
		ReadyPollInterval:     cfg.ReadyPollInterval,
		ReconnectDelay:        cfg.ReconnectDelay,
		ReconnectMaxDelay:     cfg.ReconnectMaxDelay,
	}, obs.Component(logger, "bridge"), metrics, studio, func(ctx context.Context) (bridge.Transport, error) {
		return bridge.DialEngine(ctx, cfg.EngineURL, obs.Component(logger, "engine"))
	})

	monitor := httpapi.NewMonitorHub()
	br.SetNotifier(monitor.Notify)

	deps := &httpapi.Deps{
		Cfg:     cfg,
		Logger:  logger,
		Metrics: metrics,
		Studio:  studio,
		Bridge:  br,
		Gen:     gen,
		Monitor: monitor,
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	br.Start(ctx)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	br.Close()
	logger.Info().Msg("virtual-studio stopped")
}
