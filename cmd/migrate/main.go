// Package main applies or rolls back the spinecheck database migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/infrastructure/migrate"
)

const (
	defaultMigrationsPath = "./migrations"
	defaultMigrateSteps   = 0
)

func main() {
	var (
		migrationsPath string
		steps          int
	)

	flag.StringVar(&migrationsPath, "path", defaultMigrationsPath, "Path to migrations directory")
	flag.IntVar(&steps, "steps", defaultMigrateSteps, "Number of migrations to apply or roll back (0 applies all pending on up)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file", zap.Error(err))
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL environment variable is required")
	}

	args := flag.Args()
	if len(args) == 0 {
		logger.Fatal("Please specify a command: up, down, or version")
	}

	runner := migrate.NewRunner(&migrate.Config{
		DatabaseURL:    databaseURL,
		MigrationsPath: migrationsPath,
	}, logger)

	switch command := args[0]; command {
	case "up":
		if steps > 0 {
			err = runner.Steps(steps)
		} else {
			err = runner.Run()
		}
		if err != nil {
			logger.Fatal("Failed to run migrations up", zap.Error(err))
		}

	case "down":
		if steps <= 0 {
			steps = 1
		}
		if err := runner.Steps(-steps); err != nil {
			logger.Fatal("Failed to run migrations down", zap.Error(err))
		}

	case "version":
		version, dirty, err := runner.Version()
		if err != nil {
			logger.Fatal("Failed to get version", zap.Error(err))
		}
		if dirty {
			fmt.Printf("Current version: %d (dirty)\n", version)
		} else {
			fmt.Printf("Current version: %d\n", version)
		}

	default:
		logger.Fatal("Unknown command; use 'up', 'down', or 'version'", zap.String("command", command))
	}
}
