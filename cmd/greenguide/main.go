// cmd/greenguide/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"greenguide/internal/api"
	"greenguide/internal/common/config"
	"greenguide/internal/common/database"
	commonhttp "greenguide/internal/common/http"
	"greenguide/internal/common/logger"
	"greenguide/internal/common/observability"
	"greenguide/internal/common/ratelimit"
	"greenguide/internal/inference"
	"greenguide/internal/pipeline"

	// Classification stages
	ei "greenguide/internal/workers/classification/explain-impact"
	ido "greenguide/internal/workers/classification/identify-object"
	rc "greenguide/internal/workers/classification/reason-category"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console", "stderr")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting GreenGuide API", zap.String("config", cfg.String()))
	if !cfg.Inference.CredentialConfigured() {
		zapLog.Warn("Inference credential missing or malformed; /ready will report not ready",
			zap.String("expectedPrefix", cfg.Inference.CredentialPrefix))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Rate limiter (optional, Redis backed) ---
	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	if cfg.RateLimitActive() {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			var err error
			redis, err = database.ConnectRedis(ctx, cfg.Redis)
			return err
		}, 5, time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Error("Redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			defer redis.Close()
			limiter = ratelimit.NewFixedWindow(
				redis,
				cfg.RateLimit.Requests,
				config.GetDuration(cfg.RateLimit.Window),
				cfg.RateLimit.KeyPrefix,
				log.With(map[string]interface{}{"component": "ratelimit"}),
			)
			zapLog.Info("Rate limiting enabled",
				zap.Int("requests", cfg.RateLimit.Requests),
				zap.Int("windowMs", cfg.RateLimit.Window),
			)
		}
	}

	// --- Inference client and stages ---
	timeout := config.GetDuration(cfg.Inference.Timeout)
	transport := commonhttp.NewClient(0)
	defer transport.CloseIdleConnections()

	client := inference.NewClient(&inference.Config{
		Endpoint: cfg.Inference.Endpoint,
		APIKey:   cfg.Inference.APIKey,
		Timeout:  timeout,
	}, transport, obs.Tracer(), log)

	vision := ido.NewHandler(&ido.Config{
		Model:       cfg.Inference.Vision.Model,
		MaxTokens:   cfg.Inference.Vision.MaxTokens,
		Temperature: cfg.Inference.Vision.Temperature,
		Timeout:     timeout,
	}, client, log)

	reasoning := rc.NewHandler(&rc.Config{
		Model:       cfg.Inference.Reasoning.Model,
		MaxTokens:   cfg.Inference.Reasoning.MaxTokens,
		Temperature: cfg.Inference.Reasoning.Temperature,
		Timeout:     timeout,
	}, client, log)

	educator := ei.NewHandler(&ei.Config{
		Model:       cfg.Inference.Educator.Model,
		MaxTokens:   cfg.Inference.Educator.MaxTokens,
		Temperature: cfg.Inference.Educator.Temperature,
		Timeout:     timeout,
	}, client, ei.NewRandomPicker(nil), log)

	classifier := pipeline.New(vision, reasoning, educator, obs, log)

	// --- HTTP server ---
	srv := api.NewServer(cfg, classifier, log, api.WithLimiter(limiter)).HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		zapLog.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during HTTP shutdown", zap.Error(err))
	}

	zapLog.Info("GreenGuide API stopped gracefully")
}
