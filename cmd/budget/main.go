package main

import (
	"os"

	"budget/internal/commands"
	"budget/internal/config"
	"budget/internal/log"
)

func main() {
	cfg := config.Load()
	log.Setup(cfg.LogLevel)

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
