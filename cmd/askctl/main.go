package main

import (
	"context"
	"fmt"
	"os"

	"github.com/suPer8Hu/askdb/cmd/askctl/commands"
	"github.com/suPer8Hu/askdb/internal/bootstrap"
	"github.com/suPer8Hu/askdb/internal/config"
	"github.com/suPer8Hu/askdb/internal/logger"
	"go.uber.org/zap"
)

// Version information (set by -ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)

	root := commands.NewRootCmd(open)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func open(ctx context.Context, verbose bool) (commands.Backend, func(), error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return commands.Backend{}, nil, err
	}

	log := zap.NewNop()
	if verbose {
		log = logger.New("", false)
	}

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return commands.Backend{}, nil, err
	}
	backend := commands.Backend{Asker: app.Service, Schemas: app.Schemas}
	return backend, func() {
		app.Close()
		_ = log.Sync()
	}, nil
}
