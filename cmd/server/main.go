package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gravitas-games/domino/internal/config"
	"github.com/gravitas-games/domino/internal/server"
)

func main() {
	log.Println("Starting Domino board server...")

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/server.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Configuration loaded from %s", configPath)
	log.Printf("Server will run on %s", cfg.Server.ListenAddr())
	log.Printf("Storage backend %s, JWT auth enabled: %v", cfg.Storage.Backend, cfg.JWT.Enabled)
	log.Printf("Grid cell %gx%g, spacing %gx%g, placement mode %s",
		cfg.Grid.CellWidth, cfg.Grid.CellHeight, cfg.Grid.SpacingH, cfg.Grid.SpacingV, cfg.Board.PlacementMode)

	// Create and initialize server
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := cfg.Server.ListenAddr()
		log.Printf("Server listening on %s", addr)
		if err := srv.Start(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down...", sig)
	}

	// Graceful shutdown
	if err := srv.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}
