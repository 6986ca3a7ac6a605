package main

import (
	"flag"
	"fmt"
	"os"

	"PsyAssist/internal/assistant"
	"PsyAssist/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database")
	flag.StringVar(&cfg.Credential, "credential", cfg.Credential, "GigaChat authorization credential (base64 client_id:client_secret)")
	flag.StringVar(&cfg.Model, "model", cfg.Model, "GigaChat model name")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	flag.Parse()

	app, err := assistant.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize assistant: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
