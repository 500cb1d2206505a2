package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/altegra/catalog-backend/internal/app"
	"github.com/altegra/catalog-backend/internal/ingestion/feed"
)

// The binary runs one catalog pipeline pass over the feed named by FEED_PATH
// and exits: zero on success, non-zero when any stage fails.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "catalog pipeline failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(a.Cfg.FeedPath)
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()

	a.Log.Info("parsing feed", "path", a.Cfg.FeedPath)
	snapshot, err := feed.Parse(f)
	if err != nil {
		return fmt.Errorf("parse feed: %w", err)
	}

	if _, err := a.Pipeline.Run(ctx, snapshot); err != nil {
		return err
	}
	return nil
}
