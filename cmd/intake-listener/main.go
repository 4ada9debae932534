package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"freshops/internal/config"
	"freshops/internal/listener"
	"freshops/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := listener.NewService(db, cfg)
	if err := s.Run(ctx); err != nil && err != context.Canceled {
		must(err)
	}
	fmt.Println("intake listener stopped")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
