// Package main provides the entry point for the plexmcp MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"plexmcp/internal/config"
	"plexmcp/internal/perplexity"
	"plexmcp/internal/research"
	"plexmcp/internal/server"
	"plexmcp/internal/synthesis"
	"plexmcp/internal/tools"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON; stdout carries
	// the protocol and must stay clean)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	// Missing credential is the one fatal startup condition.
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	logger.Info("plexmcp starting",
		"version", version,
		"base_url", cfg.BaseURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Construct the components explicitly and hand them to the tool layer;
	// there are no package-level singletons.
	client := perplexity.NewClient(cfg.APIKey, cfg.BaseURL, cfg.HTTPTimeout, logger)
	engine := synthesis.NewEngine(client, logger)
	store := research.NewStore(cfg.ResearchDir, logger)

	logger.Info("research store ready", "dir", store.Dir())

	// Create and setup server
	srv := server.New(version, logger)
	srv.Setup()

	// Register tools
	deps := &tools.Dependencies{
		Client: client,
		Engine: engine,
		Store:  store,
		Logger: logger,
	}
	tools.RegisterAll(srv.MCPServer(), deps)
	logger.Info("tools registered", "count", 6)

	logger.Info("server ready, awaiting connections")

	// Run server (blocks until disconnect or context cancelled)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
