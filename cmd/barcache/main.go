package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"barcache/internal/app"
	"barcache/internal/slogx"
)

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
}

func main() {
	os.Exit(run())
}

func run() int {
	a, cleanup, err := InitializeApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer cleanup()

	tickers, err := app.ResolveTickers(a.Config, a.Log)
	if err != nil {
		a.Log.Error("failed to get tickers", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := a.Runner.Run(ctx, tickers)
	if errors.Is(err, context.Canceled) {
		a.Log.Info("received signal, stopped early")
		return 130
	}
	if err != nil {
		a.Log.Error("run failed", "error", err)
		return 1
	}
	if len(report.Failed) > 0 {
		return 2
	}
	return 0
}
