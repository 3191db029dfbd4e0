package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"thread_broadcast_bot/internal/app"
	"thread_broadcast_bot/internal/domain/broadcast"
	"thread_broadcast_bot/internal/domain/platform"
	"thread_broadcast_bot/internal/infra/config"
	"thread_broadcast_bot/internal/infra/health"
	"thread_broadcast_bot/internal/infra/instagram"
	"thread_broadcast_bot/internal/infra/logger"
	"thread_broadcast_bot/internal/infra/scheduler"
	"thread_broadcast_bot/internal/infra/sessionstore"
	"thread_broadcast_bot/internal/infra/source"
	"thread_broadcast_bot/internal/infra/telegram"
)

func main() {
	fmt.Println("Thread Broadcast Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg)
	mainLogger := logger.For("main")

	// Everything the operator supplies is validated before any network activity.
	loader, err := source.NewLoader(cfg.Source, cfg.MaxMessageLength, logger.For("source"))
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not initialize config source")
	}
	payload, err := loader.Load()
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not load broadcast configuration")
	}
	printBanner(cfg, payload)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, storeCloser, err := sessionstore.Open(ctx, cfg.SessionStore, logger.For("sessionstore"))
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not open session store")
	}
	defer storeCloser.Close()

	client, err := newPlatformClient(cfg)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create platform client")
	}

	sessions := app.NewSessionManager(client, store, logger.For("session"))
	if err := sessions.Authenticate(ctx, payload.Credential); err != nil {
		mainLogger.WithError(err).Fatal("Could not authenticate")
	}
	mainLogger.WithField("state", sessions.State()).Info("Session ready")

	var healthServer *health.Server
	if cfg.HealthEnabled {
		healthServer = health.NewServer(cfg.Port, logger.For("health"))
		go func() {
			if err := healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				mainLogger.WithError(err).Error("Health server stopped")
			}
		}()
	}

	var keepAlive *scheduler.KeepAliveScheduler
	if cfg.KeepAliveURL != "" {
		keepAlive = scheduler.NewKeepAliveScheduler(cfg.KeepAliveURL, cfg.KeepAliveSpec, cfg.RequestTimeout, logger.For("keepalive"))
		if err := keepAlive.Start(); err != nil {
			mainLogger.WithError(err).Error("Keep-alive disabled")
			keepAlive = nil
		}
	}

	policy := app.NewDeliveryPolicy(client, app.DeliveryConfig{
		MaxRetries:         cfg.MaxRetries,
		RateLimitBackoff:   cfg.RateLimitBackoff,
		ClientErrorBackoff: cfg.ClientErrorBackoff,
	}, logger.For("delivery"))
	cycles := app.NewCycleScheduler(policy, payload, app.SchedulerConfig{
		DelayMin:   cfg.DelayMin,
		DelayMax:   cfg.DelayMax,
		CycleDelay: cfg.CycleDelay,
	}, nil, logger.For("scheduler"))

	mainLogger.Info("Application setup complete. Broadcasting...")
	runErr := cycles.Run(ctx)

	mainLogger.Info("Shutting down application...")

	// ctx is already cancelled here.
	persistCtx, cancelPersist := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	if err := sessions.Persist(persistCtx); err != nil {
		mainLogger.WithError(err).Warn("Could not persist session on shutdown")
	}
	cancelPersist()

	if keepAlive != nil {
		keepAlive.Stop()
	}
	if healthServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("Health server shutdown")
		}
		cancel()
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		mainLogger.WithError(runErr).Error("Broadcast loop terminated")
		storeCloser.Close()
		os.Exit(1)
	}
	mainLogger.Info("Application shut down gracefully.")
}

func newPlatformClient(cfg *config.AppConfig) (platform.Client, error) {
	switch cfg.Platform {
	case config.PlatformTelegram:
		return telegram.NewTelebotAdapter(cfg.PlatformAPIURL, cfg.RequestTimeout, logger.For("telegram")), nil
	default:
		return instagram.NewClient(cfg.PlatformAPIURL, cfg.RequestTimeout, logger.For("instagram"))
	}
}

func printBanner(cfg *config.AppConfig, payload *broadcast.Configuration) {
	line := strings.Repeat("=", 50)
	fmt.Println(line)
	fmt.Printf("Platform:      %s\n", cfg.Platform)
	fmt.Printf("Config source: %s\n", cfg.Source.Backend)
	fmt.Printf("Destinations:  %d\n", len(payload.Destinations))
	fmt.Printf("Message:       %q\n", payload.Preview(50))
	fmt.Printf("Send delay:    %s - %s\n", cfg.DelayMin, cfg.DelayMax)
	fmt.Printf("Cycle delay:   %s\n", cfg.CycleDelay)
	fmt.Printf("Max retries:   %d\n", cfg.MaxRetries)
	fmt.Printf("Session store: %s\n", cfg.SessionStore.Driver)
	fmt.Println(line)
}
