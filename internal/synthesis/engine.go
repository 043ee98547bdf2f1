// Package synthesis runs multi-model research patterns: a fixed sequence of
// Perplexity calls whose results are combined into one comparative report.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"plexmcp/internal/perplexity"
)

// Pattern names a fixed sequence of models run in order.
type Pattern string

const (
	// PatternFactReasoning pairs a search-focused model with a reasoning model.
	PatternFactReasoning Pattern = "fact-reasoning"
	// PatternQuickDeep pairs a fast first pass with an exhaustive second pass.
	PatternQuickDeep Pattern = "quick-deep"
	// PatternTruthTracer cross-checks a claim across three models.
	PatternTruthTracer Pattern = "truthtracer"
	// PatternMultiPerspective gathers two independent takes on an open question.
	PatternMultiPerspective Pattern = "multi-perspective"
)

// Patterns lists the documented patterns in guidance order.
var Patterns = []Pattern{
	PatternFactReasoning,
	PatternQuickDeep,
	PatternTruthTracer,
	PatternMultiPerspective,
}

// ValidPattern reports whether p is one of the documented patterns.
func ValidPattern(p Pattern) bool {
	for _, known := range Patterns {
		if p == known {
			return true
		}
	}
	return false
}

// Steps returns the model sequence for a pattern. Unknown patterns fall
// back to a single reasoning step; the tool layer validates input first,
// so this path is defensive only.
func Steps(p Pattern) []string {
	switch p {
	case PatternFactReasoning:
		return []string{perplexity.ModelSonarPro, perplexity.ModelSonarReasoningPro}
	case PatternQuickDeep:
		return []string{perplexity.ModelSonar, perplexity.ModelSonarDeepResearch}
	case PatternTruthTracer:
		return []string{perplexity.ModelSonarPro, perplexity.ModelSonarReasoningPro, perplexity.ModelSonarDeepResearch}
	case PatternMultiPerspective:
		return []string{perplexity.ModelSonarPro, perplexity.ModelSonarReasoningPro}
	default:
		return []string{perplexity.ModelSonarReasoningPro}
	}
}

// Searcher is the single-call surface of the API client the engine needs.
type Searcher interface {
	Search(ctx context.Context, query, model string, opts perplexity.Options) (*perplexity.Response, error)
}

// ModelResult is one step's contribution: the raw response plus the
// post-processed content and its citations.
type ModelResult struct {
	Model     string
	Response  *perplexity.Response
	Content   string
	Citations []string
}

// Confidence is the heuristic agreement rating across steps.
type Confidence string

const (
	ConfidenceLow        Confidence = "low"
	ConfidenceMedium     Confidence = "medium"
	ConfidenceMediumHigh Confidence = "medium-high"
	ConfidenceHigh       Confidence = "high"
)

// Consistency holds the agreement/conflict signals across steps.
type Consistency struct {
	Agreements []string
	Conflicts  []string
	Confidence Confidence
}

// Result is the combined output of one synthesis run.
type Result struct {
	Query       string
	Pattern     Pattern
	Summary     string
	Findings    []ModelResult
	Consistency Consistency
	// Citations is the deduplicated union across all steps, first-seen
	// order preserved.
	Citations []string
}

// Engine orchestrates sequential multi-model runs.
type Engine struct {
	client Searcher
	logger *slog.Logger
}

// NewEngine creates an engine over the given client.
func NewEngine(client Searcher, logger *slog.Logger) *Engine {
	return &Engine{client: client, logger: logger}
}

// Synthesize runs each step of the pattern in order and combines the
// results. Steps execute strictly sequentially: this bounds the outbound
// request rate and makes failure attribution per-step unambiguous. The
// first step failure aborts the run; no partial result is returned.
func (e *Engine) Synthesize(ctx context.Context, query string, pattern Pattern, systemPrompt string) (*Result, error) {
	models := Steps(pattern)
	if !ValidPattern(pattern) {
		e.logger.Warn("unknown synthesis pattern, using fallback", "pattern", string(pattern))
	}

	var opts perplexity.Options
	if systemPrompt != "" {
		opts.Messages = []perplexity.Message{{Role: "system", Content: systemPrompt}}
	}

	results := make([]ModelResult, 0, len(models))
	for i, model := range models {
		e.logger.Info("synthesis step starting",
			"pattern", string(pattern), "step", i+1, "of", len(models), "model", model)

		resp, err := e.client.Search(ctx, query, model, opts)
		if err != nil {
			return nil, fmt.Errorf("synthesis step %d/%d (%s): %w", i+1, len(models), model, err)
		}

		results = append(results, ModelResult{
			Model:     model,
			Response:  resp,
			Content:   perplexity.StripThinking(resp.Content()),
			Citations: resp.Citations,
		})
	}

	return e.combineResults(query, pattern, results), nil
}

// combineResults merges per-step results into one Result.
func (e *Engine) combineResults(query string, pattern Pattern, results []ModelResult) *Result {
	return &Result{
		Query:       query,
		Pattern:     pattern,
		Summary:     buildSummary(query, pattern, results),
		Findings:    results,
		Consistency: AnalyzeConsistency(results),
		Citations:   DedupeCitations(results),
	}
}

// DedupeCitations returns the union of all step citations, keeping the
// first occurrence of each URL in execution order.
func DedupeCitations(results []ModelResult) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, r := range results {
		for _, c := range r.Citations {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			merged = append(merged, c)
		}
	}
	return merged
}

// AnalyzeConsistency derives agreement/conflict signals from citation
// overlap and content-length variance. This is a heuristic proxy for
// semantic agreement, not a correctness guarantee: two models citing the
// same sources may still disagree, and differing depth is only weak
// evidence of conflict.
func AnalyzeConsistency(results []ModelResult) Consistency {
	if len(results) < 2 {
		return Consistency{Confidence: ConfidenceMedium}
	}

	common := commonCitations(results)

	var agreements, conflicts []string
	if len(common) > 2 {
		agreements = append(agreements,
			fmt.Sprintf("%d sources are cited by every model", len(common)))
	}

	if mean, stddev := contentLengthSpread(results); stddev > mean/2 {
		conflicts = append(conflicts,
			"Response depth varies significantly between models")
	}

	return Consistency{
		Agreements: agreements,
		Conflicts:  conflicts,
		Confidence: confidenceLevel(len(common), len(conflicts)),
	}
}

// confidenceLevel applies the confidence ladder: high needs broad citation
// agreement and no conflicts; medium-high needs some agreement; two or
// more conflicts push to low; everything else is medium.
func confidenceLevel(commonCitations, conflicts int) Confidence {
	switch {
	case commonCitations > 3 && conflicts == 0:
		return ConfidenceHigh
	case commonCitations > 1:
		return ConfidenceMediumHigh
	case conflicts >= 2:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// commonCitations returns the citations present in every step's set,
// ordered by their appearance in the first step.
func commonCitations(results []ModelResult) []string {
	var common []string
	for _, c := range results[0].Citations {
		inAll := true
		for _, r := range results[1:] {
			found := false
			for _, other := range r.Citations {
				if other == c {
					found = true
					break
				}
			}
			if !found {
				inAll = false
				break
			}
		}
		if inAll {
			common = append(common, c)
		}
	}
	return common
}

// contentLengthSpread returns the mean and population standard deviation
// of the step content lengths.
func contentLengthSpread(results []ModelResult) (mean, stddev float64) {
	for _, r := range results {
		mean += float64(len(r.Content))
	}
	mean /= float64(len(results))

	var variance float64
	for _, r := range results {
		d := float64(len(r.Content)) - mean
		variance += d * d
	}
	variance /= float64(len(results))

	return mean, math.Sqrt(variance)
}

func buildSummary(query string, pattern Pattern, results []ModelResult) string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = perplexity.ModelLabel(r.Model)
	}
	return fmt.Sprintf("Ran the %s pattern on %q: %d models consulted in sequence (%s).",
		pattern, query, len(results), strings.Join(names, ", "))
}
