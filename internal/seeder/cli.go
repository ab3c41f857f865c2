package seeder

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/podium/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seed users tool.
func ShowHelp() {
	os.Stdout.WriteString(`Podium User Seeding Tool
========================

Generates random users and loads them into the leaderboard store.

Usage:
  go run cmd/seed-users/main.go [options]

Options:
  -store string
        Store backend to seed: mongo (default "mongo")
  -mongo-uri string
        MongoDB connection URI (default "mongodb://localhost:27017")
  -mongo-db string
        MongoDB database name (default "podium")
  -users int
        Number of users to generate (default 10000)
  -workers int
        Number of concurrent upsert workers (default CPU cores * 2)
  -min-rating int
        Lower rating bound, inclusive (default 100)
  -max-rating int
        Upper rating bound, inclusive (default 5000)
  -verify
        Verify the running service's leaderboard and search output
  -url string
        Base URL of the service, used with -verify (default "http://localhost:9080")
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for seeding output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed 10k users into MongoDB
  go run cmd/seed-users/main.go

  # Seed 50k users and verify the running service
  go run cmd/seed-users/main.go -users 50000 -verify -url http://localhost:9080

  # Seed a narrow rating band
  go run cmd/seed-users/main.go -users 1000 -min-rating 1000 -max-rating 1100
`)
}
