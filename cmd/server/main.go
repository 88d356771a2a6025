package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"wastescanner/internal/app"
	"wastescanner/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(config.Load())
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		log.Printf("Server stopped with error: %v", err)
		application.Close()
		os.Exit(1)
	}
}
