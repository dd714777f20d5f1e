package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"CapIot.telemetryAPI/apicheck"
	"CapIot.telemetryAPI/config"
	"go.uber.org/zap"
)

func main() {
	baseURL := flag.String("url", os.Getenv("API_URL"), "Base URL of the deployed API")
	timeout := flag.Duration("timeout", 30*time.Second, "Per-request timeout")
	out := flag.String("out", "", "Write the results as JSON to this file")
	flag.Parse()

	logger, err := config.InitLogger("info", "console", "apicheck")
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	if *baseURL == "" {
		logger.Fatal("No base URL, set -url or API_URL")
	}

	results := apicheck.New(*baseURL, *timeout, logger).Run(context.Background())

	if *out != "" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err == nil {
			err = os.WriteFile(*out, data, 0o644)
		}
		if err != nil {
			logger.Error("Failed to write results", zap.String("file", *out), zap.Error(err))
		}
	}

	failed := apicheck.Failed(results)
	logger.Info("Checks finished", zap.Int("total", len(results)), zap.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}
