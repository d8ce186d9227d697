// cmd/api/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"receipt-tracker/internal/auth"
	"receipt-tracker/internal/config"
	"receipt-tracker/internal/handler"
	"receipt-tracker/internal/logging"
	"receipt-tracker/internal/notify"
	"receipt-tracker/internal/storage/postgres"
	"receipt-tracker/internal/upload"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

func main() {
	logging.Setup()
	cfg := config.MustLoad()

	pool, err := pgxpool.New(context.Background(), cfg.DBConn)
	if err != nil {
		slog.Error("failed to create db pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// База может подниматься дольше приложения — ждём её на старте.
	// Внутри запросов ретраев нет, это только бутстрап.
	backoff := retry.WithMaxRetries(5, retry.NewConstant(2*time.Second))
	err = retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			slog.Warn("db not ready yet", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.Error("db never became ready", "error", err)
		os.Exit(1)
	}

	store := postgres.NewStorage(pool)
	tokens := auth.NewTokenService(cfg)
	uploads := upload.NewSaver(cfg.UploadDir)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			slog.Error("failed to init telegram notifier", "error", err)
			os.Exit(1)
		}
		notifier = tg
		slog.Info("telegram notifications enabled", "chat_id", cfg.TelegramChatID)
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(store, tokens, uploads, notifier)

	// Статика: страницы, скрипты и загруженные картинки
	router.Static("/js", filepath.Join(cfg.PublicDir, "js"))
	router.Static("/css", filepath.Join(cfg.PublicDir, "css"))
	router.Static("/uploads", cfg.UploadDir)
	for route, page := range map[string]string{
		"/":          "index.html",
		"/login":     "login.html",
		"/register":  "register.html",
		"/dashboard": "dashboard.html",
		"/profile":   "profile.html",
		"/admin":     "admin.html",
	} {
		router.StaticFile(route, filepath.Join(cfg.PublicDir, page))
	}

	slog.Info("🚀 сервер запущен", "port", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		slog.Error("сервер завершил работу с ошибкой", "error", err)
		os.Exit(1)
	}
}
