package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"plexmcp/internal/perplexity"
	"plexmcp/internal/research"
)

// ResearchInput defines the input schema for the research tool.
type ResearchInput struct {
	Query                  string   `json:"query" jsonschema:"required,The research question"`
	ApprovedPlan           string   `json:"approved_plan,omitempty" jsonschema:"Research plan approved by the user, logged with the entry"`
	Model                  string   `json:"model,omitempty" jsonschema:"Model to use (sonar, sonar-pro, sonar-reasoning-pro, sonar-deep-research); auto-selected if omitted"`
	Context                string   `json:"context,omitempty" jsonschema:"Background context recorded in the thread"`
	Recency                string   `json:"recency,omitempty" jsonschema:"Restrict search recency: hour, day, week, month"`
	DomainFilter           []string `json:"domain_filter,omitempty" jsonschema:"Allow or deny domains (prefix - to deny), max 10"`
	ReturnRelatedQuestions bool     `json:"return_related_questions,omitempty" jsonschema:"Ask the API for follow-up questions"`
}

// NewResearchHandler creates the research tool handler: one API call,
// journaled to the topic's thread with a raw backup.
func NewResearchHandler(deps *Dependencies) mcp.ToolHandlerFor[ResearchInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ResearchInput) (
		*mcp.CallToolResult, any, error,
	) {
		if strings.TrimSpace(input.Query) == "" {
			return ErrorResult("Query cannot be empty", "Provide a research question"), nil, nil
		}

		// Model: explicit choice wins, otherwise classify the query.
		model := input.Model
		rationale := "user-specified"
		if model == "" {
			rec := perplexity.AnalyzeQueryForModel(input.Query)
			model, rationale = rec.Model, rec.Reason
		} else if !perplexity.ValidModel(model) {
			return ErrorResult("Unknown model: "+model,
				"Use one of sonar, sonar-pro, sonar-reasoning-pro, sonar-deep-research, or omit to auto-select"), nil, nil
		}

		resp, err := deps.Client.Search(ctx, input.Query, model, perplexity.Options{
			RecencyFilter:    input.Recency,
			DomainFilter:     input.DomainFilter,
			RelatedQuestions: input.ReturnRelatedQuestions,
		})
		if err != nil {
			deps.Logger.Error("research call failed", "model", model, "error", err)
			return searchFailureBlock(err), nil, nil
		}

		now := time.Now()

		// Raw backup first: the durability floor before any formatting.
		rawPath, err := deps.Store.SaveRawResponse(input.Query, model, resp, now)
		if err != nil {
			deps.Logger.Error("raw backup failed", "error", err)
			return ErrorResult("Failed to save raw response backup: "+err.Error(),
				"Check that the research directory is writable"), nil, nil
		}

		threadPath, err := deps.Store.SaveInteraction(research.Interaction{
			Query:            input.Query,
			Context:          input.Context,
			Model:            model,
			Rationale:        rationale,
			ApprovedPlan:     input.ApprovedPlan,
			Findings:         resp.Content(),
			Citations:        resp.Citations,
			RelatedQuestions: resp.RelatedQuestions,
			Usage:            resp.Usage,
			RawPath:          rawPath,
		}, now)
		if err != nil {
			deps.Logger.Error("thread append failed", "error", err)
			return ErrorResult("Failed to save research thread: "+err.Error(),
				"The raw response backup was saved at "+rawPath), nil, nil
		}

		deps.Logger.Info("research completed",
			"model", model, "citations", len(resp.Citations), "thread", threadPath)

		text := perplexity.FormatResponseWithCitations(resp) +
			fmt.Sprintf("\n\nSaved to: %s", threadPath)
		return TextResult(text), nil, nil
	}
}
