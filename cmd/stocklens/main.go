package main

import (
	"os"

	"github.com/stocklens/backend/cmd/stocklens/commands"
)

// main is the entry point for the stocklens CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/stocklens [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
