package main

import (
	"context"
	"os"
	"os/signal"
	"wastescanner/internal/app"
	"wastescanner/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand(config.Load(), app.NewDetector).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
