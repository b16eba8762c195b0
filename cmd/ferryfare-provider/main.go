package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/riverplate/ferryfare-provider/internal/application/service"
	"github.com/riverplate/ferryfare-provider/internal/config"
	"github.com/riverplate/ferryfare-provider/internal/infrastructures/browser"
	buquebus "github.com/riverplate/ferryfare-provider/internal/infrastructures/buquebus/http/client"
	cacheredis "github.com/riverplate/ferryfare-provider/internal/infrastructures/db/redis"
	ferrytracing "github.com/riverplate/ferryfare-provider/internal/infrastructures/db/tracing"
	"github.com/riverplate/ferryfare-provider/internal/transport/http/handlers"
	"github.com/riverplate/ferryfare-provider/internal/transport/http/httpapp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Log.Level)
	defer func() {
		_ = log.Sync()
	}()

	tp, err := ferrytracing.InitTracer("ferryfare-provider", cfg.Env, cfg.Jaeger)
	if err != nil {
		log.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info("ferryfare-provider starting", zap.String("http_addr", addr), zap.String("env", cfg.Env))

	if cfg.Env == "local" {
		color.Cyan("ferryfare-provider listening on %s", addr)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warn("failed to close redis client", zap.Error(err))
		}
	}()

	credentialStore := cacheredis.NewCredentialStore(redisClient)
	sessionStore := cacheredis.NewSessionStore(redisClient)

	acquirer := browser.NewAcquirer(log, sessionStore, cfg.Browser.Headless, cfg.Browser.Timeout, cfg.Credential.TTL)
	credentialService := service.NewCredentialService(
		log,
		credentialStore,
		acquirer,
		cfg.Credential.OverridePrefix,
		cfg.Credential.TTL,
		cfg.Credential.AcquireTimeout,
	)

	fareSource := buquebus.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	fareService := service.NewFareService(log, credentialService, fareSource, cfg.MarketContexts(), cfg.Fares.Concurrency)

	mux := http.NewServeMux()
	handlers.Register(mux, log,
		handlers.NewFaresHandler(log, fareService),
		handlers.NewCredentialsHandler(log, fareService),
	)

	app := httpapp.New(log, cfg.HTTP.Host, cfg.HTTP.Port, mux, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		app.Stop(shutdownCtx)
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server stopped", zap.Error(err))
		}
	}
}

func setupLogger(level string) *zap.Logger {
	zapLevel := parseLogLevel(level)
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return log
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
