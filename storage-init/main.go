package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"

	"sofia-api/config"
	"sofia-api/storage"
)

var cli struct {
	Seed     bool   `help:"Load pending tasks after creating the schema."`
	SeedFile string `type:"existingfile" help:"Seed YAML to load instead of the bundled one."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("storage-init"),
		kong.Description("Create the day table of the configured backend and optionally seed it."),
		kong.UsageOnError(),
	)

	logger := log.New()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if err := cfg.ConfigureLogger(logger); err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.Info("storage init starting")

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Fatalf("storage: %v", err)
	}
	if backend == nil {
		logger.Fatal("no storage backend configured")
	}
	defer backend.Close()

	if s, ok := backend.(storage.SchemaInitializer); ok {
		if err := s.EnsureSchema(ctx); err != nil {
			logger.Fatalf("create schema: %v", err)
		}
		logger.Infof("schema ready on %s", backend.Source())
	}

	if cli.Seed || cli.SeedFile != "" {
		raw := bundledSeeds
		if cli.SeedFile != "" {
			if raw, err = os.ReadFile(cli.SeedFile); err != nil {
				logger.Fatalf("read seeds: %v", err)
			}
		}
		seeds, err := parseSeeds(raw)
		if err != nil {
			logger.Fatalf("parse seeds: %v", err)
		}
		n, err := applySeeds(ctx, backend, seeds)
		if err != nil {
			logger.Fatalf("seed: %v", err)
		}
		logger.WithField("days", n).Info("seeded days")
	}

	logger.Info("storage init complete")
}
