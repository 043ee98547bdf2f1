package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"plexmcp/internal/perplexity"
	"plexmcp/internal/research"
	"plexmcp/internal/synthesis"
)

// DeepResearchInput defines the input schema for the deep_research tool.
type DeepResearchInput struct {
	Query        string `json:"query" jsonschema:"required,The research question"`
	ApprovedPlan string `json:"approved_plan,omitempty" jsonschema:"Research plan approved by the user, logged with the entry"`
	Pattern      string `json:"pattern,omitempty" jsonschema:"Synthesis pattern (fact-reasoning, quick-deep, truthtracer, multi-perspective); auto-selected if omitted"`
}

// NewDeepResearchHandler creates the deep_research tool handler: a
// sequential multi-model synthesis run, journaled as one entry. Multi-step
// patterns take 30-120s because steps never run in parallel.
func NewDeepResearchHandler(deps *Dependencies) mcp.ToolHandlerFor[DeepResearchInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeepResearchInput) (
		*mcp.CallToolResult, any, error,
	) {
		if strings.TrimSpace(input.Query) == "" {
			return ErrorResult("Query cannot be empty", "Provide a research question"), nil, nil
		}

		pattern := synthesis.Pattern(input.Pattern)
		rationale := "user-specified"
		if input.Pattern == "" {
			rec := synthesis.RecommendPattern(input.Query)
			pattern, rationale = rec.Pattern, rec.Reason
		} else if !synthesis.ValidPattern(pattern) {
			return ErrorResult("Unknown pattern: "+input.Pattern,
				"Use one of fact-reasoning, quick-deep, truthtracer, multi-perspective, or omit to auto-select"), nil, nil
		}

		result, err := deps.Engine.Synthesize(ctx, input.Query, pattern, "")
		if err != nil {
			deps.Logger.Error("synthesis failed", "pattern", string(pattern), "error", err)
			return searchFailureBlock(err), nil, nil
		}

		now := time.Now()

		// Every step's response gets a raw backup before any markdown is
		// written; the journal entry links the final one.
		var rawPath string
		for _, f := range result.Findings {
			p, err := deps.Store.SaveRawResponse(input.Query, f.Model, f.Response, now)
			if err != nil {
				deps.Logger.Error("raw backup failed", "model", f.Model, "error", err)
				return ErrorResult("Failed to save raw response backup: "+err.Error(),
					"Check that the research directory is writable"), nil, nil
			}
			rawPath = p
		}

		rendered := synthesis.FormatSynthesis(result)

		threadPath, err := deps.Store.SaveInteraction(research.Interaction{
			Query:        input.Query,
			Model:        string(pattern),
			Rationale:    rationale,
			ApprovedPlan: input.ApprovedPlan,
			Findings:     rendered,
			Citations:    result.Citations,
			Usage:        sumUsage(result.Findings),
			RawPath:      rawPath,
		}, now)
		if err != nil {
			deps.Logger.Error("thread append failed", "error", err)
			return ErrorResult("Failed to save research thread: "+err.Error(),
				"The raw response backups were saved under the raw/ directory"), nil, nil
		}

		deps.Logger.Info("deep research completed",
			"pattern", string(pattern),
			"steps", len(result.Findings),
			"confidence", string(result.Consistency.Confidence),
			"thread", threadPath)

		return TextResult(rendered + fmt.Sprintf("\n\nSaved to: %s", threadPath)), nil, nil
	}
}

// sumUsage aggregates token usage across synthesis steps for the journal's
// cost estimate.
func sumUsage(findings []synthesis.ModelResult) perplexity.Usage {
	var total perplexity.Usage
	for _, f := range findings {
		total.PromptTokens += f.Response.Usage.PromptTokens
		total.CompletionTokens += f.Response.Usage.CompletionTokens
		total.TotalTokens += f.Response.Usage.TotalTokens
		total.CitationTokens += f.Response.Usage.CitationTokens
		total.NumSearchQueries += f.Response.Usage.NumSearchQueries
		total.ReasoningTokens += f.Response.Usage.ReasoningTokens
	}
	return total
}
