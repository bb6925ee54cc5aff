package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/mnemo-labs/recall/internal/adapters/driving/cli"
)

func main() {
	// Optional; API keys can live in a local .env during development.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
