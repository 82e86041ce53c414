package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"goalTracker/internal/app"
	"goalTracker/internal/cli"
	"goalTracker/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yml")
	flag.Parse()

	os.Exit(run(*configPath, flag.Args()))
}

func run(configPath string, args []string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	ctx := context.Background()
	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup:", err)
		return 1
	}
	defer a.Shutdown()

	runner := &cli.Runner{Store: a.Store(), Out: os.Stdout, ErrOut: os.Stderr}
	return runner.Run(ctx, args)
}
