package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-detector/pkg/api"
	"voice-detector/pkg/audio"
	"voice-detector/pkg/config"
	"voice-detector/pkg/detection"
	"voice-detector/pkg/pipeline"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Fail fast: an ensemble whose weights do not sum to 1.0 must never serve.
	ensemble, err := detection.NewEnsemble()
	if err != nil {
		logger.Fatal("invalid detector ensemble", zap.Error(err))
	}

	provider := audio.NewMP3Provider()

	manager := pipeline.NewManager(cfg.Pipeline, provider, ensemble, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.Start(ctx); err != nil {
		logger.Fatal("failed to start pipeline", zap.Error(err))
	}

	handlers := api.NewHandlers(manager, cfg, logger)

	router := mux.NewRouter()
	router.Handle("/api/voice-detection",
		handlers.AuthMiddleware(handlers.LoggingMiddleware(http.HandlerFunc(handlers.DetectHandler)))).
		Methods("POST")
	// The websocket route skips the logging wrapper; the upgrade needs the
	// raw http.Hijacker.
	router.Handle("/ws", handlers.AuthMiddleware(http.HandlerFunc(handlers.WebSocketHandler)))

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	manager.Stop()
	logger.Info("server exited")
}
