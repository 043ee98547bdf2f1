package tools

import (
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"plexmcp/internal/perplexity"
)

// ErrorResult creates a tool error result with optional recovery hint.
// Returns IsError=true so the client can see the error and self-correct.
func ErrorResult(msg, hint string) *mcp.CallToolResult {
	text := msg
	if hint != "" {
		text = msg + ". " + hint
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// TextResult creates a success result with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// searchFailureBlock renders an API or network failure as an actionable
// error block. Every failure offers the same choice set: retry, switch
// model, reformulate, or abort. Discrimination is by error type, never by
// message text.
func searchFailureBlock(err error) *mcp.CallToolResult {
	var apiErr *perplexity.APIError
	var netErr *perplexity.NetworkError

	var diagnosis string
	switch {
	case errors.As(err, &apiErr):
		diagnosis = fmt.Sprintf("The Perplexity API rejected the request (HTTP %d). %s",
			apiErr.StatusCode, apiErr.Remediation())
	case errors.As(err, &netErr):
		diagnosis = "Could not reach the Perplexity API. Check your network connection."
	default:
		diagnosis = fmt.Sprintf("The request failed: %v.", err)
	}

	text := fmt.Sprintf(`%s

Options:
1. Retry the same query
2. Try a different model
3. Reformulate the query
4. Abort this research`, diagnosis)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}
