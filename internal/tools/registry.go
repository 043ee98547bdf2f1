package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// Called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	// Single-call research, journaled per topic
	mcp.AddTool(server, &mcp.Tool{
		Name:        "research",
		Description: "Research a question with Perplexity; the answer and sources are saved to a per-topic journal",
	}, NewResearchHandler(deps))

	// Sequential multi-model synthesis
	mcp.AddTool(server, &mcp.Tool{
		Name:        "deep_research",
		Description: "Run a multi-model synthesis pattern and compare the results; slower (30-120s) but cross-checked",
	}, NewDeepResearchHandler(deps))

	// Journal keyword search
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_research",
		Description: "Search saved research threads; matches threads containing all given keywords",
	}, NewSearchResearchHandler(deps))

	// Journal listing
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_research_threads",
		Description: "List saved research threads with date, topic, model and summary",
	}, NewListThreadsHandler(deps))

	// Full thread readback
	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_research_thread",
		Description: "Read the full content of one research thread by topic or filename",
	}, NewReadThreadHandler(deps))

	// Static guidance
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_models",
		Description: "List available models and synthesis patterns with usage guidance",
	}, NewListModelsHandler(deps))
}
