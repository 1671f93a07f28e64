package internal

import (
	"context"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"os"
	"os/signal"
	"portal/internal/controllers"
	"portal/internal/persistence/interfaces"
	"portal/internal/providers"
	"portal/internal/structures"
	"strconv"
	"syscall"
	"time"
)

type App struct {
	WebServer *http.Server
	conf      *structures.Config
	logger    providers.Logger
	scheduler interfaces.SchedulerInterface
}

func NewApp(
	healthController *controllers.HealthController,
	scheduler interfaces.SchedulerInterface,
	conf *structures.Config,
	logger providers.Logger,
	router providers.RouterProviderInterface,
	metrics providers.MetricsProviderInterface,
	auth *providers.AuthMiddleware,
) (*App, error) {
	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	// A snapshot that failed to load must never be overwritten.
	if err := scheduler.Restore(); err != nil {
		logger.Errorf(providers.TypeApp, "Restore error: %s", err)
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      buildHandler(healthController, conf, router, metrics, auth),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conf:      conf,
		logger:    logger,
		scheduler: scheduler,
	}, nil
}

// buildHandler mounts the admin API behind the auth gate and metrics
// middleware, next to the unauthenticated infrastructure endpoints.
func buildHandler(
	healthController *controllers.HealthController,
	conf *structures.Config,
	router providers.RouterProviderInterface,
	metrics providers.MetricsProviderInterface,
	auth *providers.AuthMiddleware,
) http.Handler {
	api := router.Router(
		func(next http.Handler) http.Handler { return providers.MetricsMiddleware(metrics, next) },
		auth.Wrap,
	)

	mux := chi.NewRouter()
	mux.Get("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Mount("/", api)
	return mux
}

// Run serves until SIGINT or SIGTERM, then drains requests and writes a
// final snapshot.
func (a *App) Run() error {
	a.scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", a.WebServer.Addr)
		if err := a.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		a.scheduler.Stop()
		return fmt.Errorf("server error: %w", err)
	}

	a.scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.WebServer.Shutdown(ctx); err != nil {
		return err
	}
	if err := a.scheduler.Persist(); err != nil {
		return err
	}
	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return nil
}
