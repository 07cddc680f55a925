package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"goalTracker/internal/app"
	"goalTracker/internal/config"
	"goalTracker/internal/logger"
)

func main() {
	// путь к файлу задаётся через GOALS_CONFIG
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "конфигурация: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "запуск: %v\n", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("App: Завершение с ошибкой", err)
		os.Exit(1)
	}
}
