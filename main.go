package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DeanLuus22021994/recruit/internal/app"
	"github.com/DeanLuus22021994/recruit/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("start application", slog.Any("error", err))
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Serve(ctx, ":"+cfg.Port); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("server stopped")
}
