// cmd/predictor/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gavl-predictor/internal/common/camunda"
	"gavl-predictor/internal/common/config"
	"gavl-predictor/internal/common/logger"
	"gavl-predictor/internal/common/metrics"
	"gavl-predictor/internal/common/observability"
	"gavl-predictor/internal/ensemble"
	"gavl-predictor/internal/server"

	pco "gavl-predictor/internal/workers/prediction/predict-case-outcome"
)

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting case outcome predictor",
		zap.String("environment", cfg.App.Environment),
		zap.Bool("httpEnabled", cfg.Server.Enabled),
		zap.Bool("zeebeEnabled", cfg.Camunda.Enabled),
	)

	obs := observability.NewNoop()
	if cfg.Metrics.Enabled {
		obs, err = observability.New(cfg.Metrics.ServiceName)
		if err != nil {
			zapLog.Fatal("observability init failed", zap.Error(err))
		}
	}

	predictor := ensemble.NewPredictor(log, ensemble.WithRecorder(metrics.NewPredictionRecorder()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe worker ---
	var (
		zeebe  *camunda.Client
		worker *camunda.CamundaWorker
	)
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: cfg.Camunda.UsePlaintext,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			RetryConfig: &camunda.RetryConfig{
				MaxRetries: cfg.Camunda.ConnectRetries,
				BaseDelay:  2 * time.Second,
				MaxDelay:   30 * time.Second,
			},
		})
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

		handler, err := pco.NewHandler(pco.HandlerOptions{
			Config:        pco.FromAppConfig(cfg),
			Predictor:     predictor,
			Logger:        log,
			Observability: obs,
		})
		if err != nil {
			zapLog.Fatal("worker init failed", zap.Error(err))
		}

		if handler.Enabled() {
			worker = camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
				TaskType:      pco.TaskType,
				MaxJobsActive: handler.MaxJobsActive(),
			}, handler, log)
		} else {
			zapLog.Info("Worker disabled by configuration", zap.String("taskType", pco.TaskType))
		}
	}

	// --- HTTP server ---
	var srv *server.Server
	if cfg.Server.Enabled {
		opts := []server.Option{
			server.WithAppInfo(cfg.App),
			server.WithObservability(obs),
		}
		if cfg.Metrics.Enabled {
			opts = append(opts, server.WithMetricsPath(cfg.Metrics.Path))
		} else {
			opts = append(opts, server.WithMetricsPath(""))
		}
		if zeebe != nil {
			opts = append(opts, server.WithReadinessCheck("zeebe", zeebe.HealthCheck))
		}

		srv = server.New(cfg.Server, predictor, log, opts...)
		go func() {
			if err := srv.Start(); err != nil {
				zapLog.Error("HTTP server failed", zap.Error(err))
				stop()
			}
		}()
	}

	if srv == nil && worker == nil {
		zapLog.Fatal("nothing to run: enable server.enabled or camunda.enabled")
	}

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error shutting down HTTP server", zap.Error(err))
		}
	}
	if worker != nil {
		worker.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down meter provider", zap.Error(err))
	}

	zapLog.Info("Predictor stopped gracefully")
}
