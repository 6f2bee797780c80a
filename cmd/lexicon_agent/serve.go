package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/novel-lexicon/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes the analysis pipeline. Requests may carry their own api_key; otherwise GEMINI_API_KEY is used.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	if !cfg.HasGeminiKey() {
		log.Warn("GEMINI_API_KEY is not set; requests must carry api_key")
	}

	srv, err := server.New(server.Options{Config: cfg, Logger: log})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
