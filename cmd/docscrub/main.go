package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/leedsrising/pdf-to-text/internal/cmd"
)

func main() {
	// Load .env if present; environment variables already set win.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
