package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"vantry/internal/config"
	"vantry/internal/database"
	"vantry/internal/export"
	"vantry/internal/logging"
)

// Standalone exporter for cron jobs and ad-hoc snapshots.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	outDir := flag.String("out", "", "output directory (defaults to exports path from config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, logCloser, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	items, err := db.ListItems(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	dir := cfg.Exports.Path
	if *outDir != "" {
		dir = *outDir
	}

	path, err := export.WriteInventoryFile(items, dir)
	if err != nil {
		return err
	}

	logger.Info().Str("path", path).Int("items", len(items)).Msg("inventory exported")
	fmt.Println(path)
	return nil
}
