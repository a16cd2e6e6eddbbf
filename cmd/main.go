package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tablescout/hotspots/internal/config"
	"github.com/tablescout/hotspots/internal/metrics"
	"github.com/tablescout/hotspots/internal/naming"
	"github.com/tablescout/hotspots/internal/pipeline"
	"github.com/tablescout/hotspots/internal/repository"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application. It runs the stage named by the
// first argument (restaurants, taxi, combine) or the whole pipeline when no
// argument is given.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stage := "all"
	if len(os.Args) > 1 {
		stage = os.Args[1]
	}

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Persisting to PostgreSQL is optional for a batch run.
	var repo repository.Interface
	if cfg.DBEnabled {
		dtb, err := repository.NewDatabase(
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer dtb.Close()
		repo = repository.NewRepository(dtb, logger)
	}

	namer, err := naming.NewNamer(naming.NamerConfig{
		Type:   naming.NamerType(cfg.NamerType),
		APIKey: cfg.NamerKey,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("Failed to create region namer: %v", err)
	}

	logger.InfoContext(ctx, "Region namer initialized", "type", cfg.NamerType)

	pipe := pipeline.NewPipeline(logger, cfg, appMetrics, repo, namer)

	// The monitoring server is useful when the batch runs under a scheduler;
	// port 0 keeps a plain CLI run quiet.
	if cfg.MetricsPort > 0 {
		go startMonitoringServer(ctx, logger, reg, cfg.MetricsPort)
	}

	logger.InfoContext(ctx, "Pipeline started", "stage", stage)

	switch stage {
	case "restaurants":
		_, err = pipe.RunRestaurants(ctx)
	case "taxi":
		_, err = pipe.RunTaxi(ctx)
	case "combine":
		err = pipe.RunCombine(ctx)
	case "all":
		err = pipe.Run(ctx)
	default:
		log.Fatalf("Unknown stage %q, expected restaurants, taxi, combine or all", stage)
	}
	if err != nil {
		logger.ErrorContext(ctx, "Pipeline failed", "stage", stage, "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Pipeline finished", "stage", stage)
}

// startMonitoringServer starts an HTTP server that provides health check and
// metrics endpoints. It listens on the specified port and logs the server's
// status and any errors encountered.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	port int,
) {
	http.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
		if _, err := writer.Write([]byte("OK")); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}
	})
	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      http.DefaultServeMux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
