package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"twason/internal/pkg/app"
)

func main() {
	configPath := flag.String("config", app.DefaultConfigPath, "path to the JSON configuration")
	flag.StringVar(configPath, "c", app.DefaultConfigPath, "shorthand for -config")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, *configPath); err != nil {
		log.Fatal(err)
	}
}
