package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"automarket/chat/internal/chat"
	"automarket/chat/internal/config"
	"automarket/chat/internal/database"
	"automarket/chat/internal/fanout"
	"automarket/chat/internal/handler"
	"automarket/chat/internal/hub"
	"automarket/chat/internal/middleware"
	"automarket/chat/pkg/jwt"

	// Swagger imports
	_ "automarket/chat/docs" // This is important for swag to find the generated docs
)

// @title           Automarket Chat API
// @version         1.0
// @description     Real-time chat between marketplace staff and sellers.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		slog.Error("server: fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(0)
	defer h.Close()

	var sink fanout.Sink = fanout.LocalSink{Hub: h}
	if cfg.RedisURL != "" {
		relay, err := fanout.NewRedisRelay(cfg.RedisURL, h)
		if err != nil {
			return err
		}
		defer relay.Close()
		go func() {
			if err := relay.Run(ctx); err != nil {
				slog.Error("fanout: relay stopped", "error", err)
			}
		}()
		sink = relay
		slog.Info("fanout: using redis relay")
	}

	dispatcher := fanout.NewDispatcher(sink, cfg.FanoutBuffer)
	defer dispatcher.Close()

	svc := chat.NewService(db, h, dispatcher, cfg.DefaultGroupName)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	limiter := middleware.NewLimiterStore(cfg.MessageRatePerMinute, cfg.MessageRateBurst, time.Minute)
	defer limiter.Stop()

	router := handler.NewRouter(handler.New(db, svc, tokens), handler.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins(),
		MessageLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server: listening", "addr", srv.Addr, "swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("server: shutting down")
	// Long-lived streams hold connections open; the hub close below ends them.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	h.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
