package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	rediscache "github.com/vncsmyrnk/authd/internal/adapters/cache/redis"
	"github.com/vncsmyrnk/authd/internal/adapters/handler/http"
	"github.com/vncsmyrnk/authd/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/authd/internal/adapters/signer"
	"github.com/vncsmyrnk/authd/internal/config"
	"github.com/vncsmyrnk/authd/internal/core/ports"
	"github.com/vncsmyrnk/authd/internal/core/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var tokenRepo ports.TokenRepository = postgres.NewTokenRepository(db, cfg.RefreshTokenTTL)
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		tokenRepo = rediscache.NewTokenCache(tokenRepo, client, cfg.RedisPrefix, logger)
		logger.Info("refresh token cache enabled", "addr", cfg.RedisAddr)
	}

	userRepo := postgres.NewUserRepository(db)
	jwtSigner := signer.NewJWTSigner([]byte(cfg.JWTSecret), cfg.AccessTokenTTL)
	authSvc := services.NewAuthService(userRepo, tokenRepo, jwtSigner, cfg.CutoffMinutes)

	authHandler := http.NewAuthHandler(authSvc, cfg.CookieName, !cfg.Debug, logger)
	handler := http.NewHandler(authHandler, jwtSigner)

	server := &stdhttp.Server{Addr: cfg.ListenAddr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
