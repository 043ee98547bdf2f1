package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchResearchInput defines the input schema for the search_research tool.
type SearchResearchInput struct {
	Keywords string `json:"keywords" jsonschema:"required,Space-separated terms; a thread matches only if it contains all of them"`
}

// NewSearchResearchHandler creates the search_research tool handler.
func NewSearchResearchHandler(deps *Dependencies) mcp.ToolHandlerFor[SearchResearchInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchResearchInput) (
		*mcp.CallToolResult, any, error,
	) {
		if strings.TrimSpace(input.Keywords) == "" {
			return ErrorResult("Keywords cannot be empty", "Provide one or more search terms"), nil, nil
		}

		matches, err := deps.Store.SearchResearch(input.Keywords)
		if err != nil {
			deps.Logger.Error("research search failed", "error", err)
			return ErrorResult("Failed to search research threads: "+err.Error(),
				"Check that the research directory is readable"), nil, nil
		}

		if len(matches) == 0 {
			return TextResult(fmt.Sprintf("No research threads match %q.", input.Keywords)), nil, nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Found %d matching thread(s) for %q:\n", len(matches), input.Keywords)
		for i, m := range matches {
			fmt.Fprintf(&b, "\n%d. %s (%s)\n", i+1, m.Topic, m.File)
			for _, snippet := range m.Snippets {
				fmt.Fprintf(&b, "   > %s\n", strings.ReplaceAll(snippet, "\n", "\n   > "))
			}
		}
		return TextResult(b.String()), nil, nil
	}
}

// ListThreadsInput defines the (empty) input schema for
// list_research_threads.
type ListThreadsInput struct{}

// NewListThreadsHandler creates the list_research_threads tool handler.
func NewListThreadsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListThreadsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListThreadsInput) (
		*mcp.CallToolResult, any, error,
	) {
		threads, err := deps.Store.ListThreads()
		if err != nil {
			deps.Logger.Error("thread listing failed", "error", err)
			return ErrorResult("Failed to list research threads: "+err.Error(),
				"Check that the research directory is readable"), nil, nil
		}

		if len(threads) == 0 {
			return TextResult("No research threads yet. Use the research tool to start one."), nil, nil
		}

		var b strings.Builder
		b.WriteString("| Date | Topic | Model | Summary |\n")
		b.WriteString("|------|-------|-------|--------|\n")
		for _, t := range threads {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				t.Modified.Format("2006-01-02"), t.Topic, t.Model, t.Summary)
		}
		return TextResult(b.String()), nil, nil
	}
}

// ReadThreadInput defines the input schema for read_research_thread.
type ReadThreadInput struct {
	Topic string `json:"topic" jsonschema:"required,Thread topic or filename (without .md)"`
}

// NewReadThreadHandler creates the read_research_thread tool handler.
func NewReadThreadHandler(deps *Dependencies) mcp.ToolHandlerFor[ReadThreadInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ReadThreadInput) (
		*mcp.CallToolResult, any, error,
	) {
		if strings.TrimSpace(input.Topic) == "" {
			return ErrorResult("Topic cannot be empty", "Provide a thread topic or filename"), nil, nil
		}

		content, found, err := deps.Store.ReadThread(input.Topic)
		if err != nil {
			deps.Logger.Error("thread read failed", "topic", input.Topic, "error", err)
			return ErrorResult("Failed to read research thread: "+err.Error(),
				"Check that the research directory is readable"), nil, nil
		}
		if !found {
			return TextResult(fmt.Sprintf(
				"No research thread found for %q. Use list_research_threads to see what exists.",
				input.Topic)), nil, nil
		}
		return TextResult(content), nil, nil
	}
}
