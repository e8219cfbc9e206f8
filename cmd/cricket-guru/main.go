package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/iamvkosarev/cricket-guru-bot/config"
	"github.com/iamvkosarev/cricket-guru-bot/internal/app"
	"github.com/iamvkosarev/cricket-guru-bot/pkg/logger"
	"github.com/joho/godotenv"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, closer, err := logger.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = app.Run(ctx, cfg, l); err != nil {
		l.Error("app stopped with error", "error", err)
		return err
	}
	l.Info("app stopped")
	return nil
}
