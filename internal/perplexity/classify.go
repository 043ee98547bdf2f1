package perplexity

import "strings"

// Recommendation is the result of classifying a query: which model to use
// and why.
type Recommendation struct {
	Model  string
	Reason string
}

// Keyword tables for AnalyzeQueryForModel, checked in priority order.
// Rules overlap in content; priority resolves ties (a query matching both
// the deep-research and reasoning sets goes to deep research).
var (
	deepResearchPhrases = []string{
		"comprehensive", "exhaustive", "deep dive", "deep-dive", "in-depth",
		"report", "due diligence", "market analysis", "literature review",
		"state of the art",
	}
	reasoningPhrases = []string{
		"why", "how does", "how do", "explain", "analyze", "analyse",
		"compare", "evaluate", "trade-off", "tradeoff", "pros and cons",
		"debug", "troubleshoot", "root cause",
	}
	factualPhrases = []string{
		"what is", "what's", "who is", "who's", "when did", "when was",
		"where is", "define", "current price", "latest",
	}
)

// AnalyzeQueryForModel recommends a model for a free-text query using
// case-insensitive keyword matching. Pure and deterministic; the first
// matching rule wins.
func AnalyzeQueryForModel(query string) Recommendation {
	q := strings.ToLower(query)

	for _, p := range deepResearchPhrases {
		if strings.Contains(q, p) {
			return Recommendation{
				Model:  ModelSonarDeepResearch,
				Reason: "Query asks for comprehensive research; using the deep research model.",
			}
		}
	}

	for _, p := range reasoningPhrases {
		if strings.Contains(q, p) {
			return Recommendation{
				Model:  ModelSonarReasoningPro,
				Reason: "Query requires analysis or reasoning; using the reasoning model.",
			}
		}
	}

	if len(strings.Fields(q)) < 10 {
		for _, p := range factualPhrases {
			if strings.Contains(q, p) {
				return Recommendation{
					Model:  ModelSonar,
					Reason: "Short factual lookup; using the fast lightweight model.",
				}
			}
		}
	}

	return Recommendation{
		Model:  ModelSonarReasoningPro,
		Reason: "General research question; defaulting to the reasoning model.",
	}
}
