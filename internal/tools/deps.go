// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"plexmcp/internal/perplexity"
	"plexmcp/internal/research"
	"plexmcp/internal/synthesis"
)

// Dependencies holds shared services for tool handlers.
// Constructed once in main and passed to handler factories; there are no
// package-level singletons.
type Dependencies struct {
	Client *perplexity.Client
	Engine *synthesis.Engine
	Store  *research.Store
	Logger *slog.Logger
}
