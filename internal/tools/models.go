package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"plexmcp/internal/perplexity"
	"plexmcp/internal/synthesis"
)

// ListModelsInput defines the (empty) input schema for list_models.
type ListModelsInput struct{}

// NewListModelsHandler creates the list_models tool handler. Static
// guidance only; no external call is made.
func NewListModelsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListModelsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListModelsInput) (
		*mcp.CallToolResult, any, error,
	) {
		var b strings.Builder
		b.WriteString("## Available Models\n\n")
		for _, m := range perplexity.Models {
			fmt.Fprintf(&b, "- **%s** (`%s`): %s\n", m.Label, m.Name, m.Description)
		}

		b.WriteString("\n## Synthesis Patterns (deep_research)\n\n")
		for _, p := range synthesis.Patterns {
			steps := synthesis.Steps(p)
			labels := make([]string, len(steps))
			for i, s := range steps {
				labels[i] = perplexity.ModelLabel(s)
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", p, strings.Join(labels, " → "))
		}

		b.WriteString("\nOmit the model or pattern argument to have one selected from the query automatically.\n")
		return TextResult(b.String()), nil, nil
	}
}
