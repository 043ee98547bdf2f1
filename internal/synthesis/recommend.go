package synthesis

import "strings"

// Phrase tables for RecommendPattern, checked in priority order.
var (
	truthTracerPhrases = []string{"fact check", "fact-check", "verify", "is it true", "due diligence"}
	quickDeepPhrases   = []string{"comprehensive", "exhaustive", "deep dive", "deep-dive"}
	factReasonPhrases  = []string{"why", "how", "compare", "evaluate"}
)

// PatternRecommendation names a pattern and the reason it was chosen.
type PatternRecommendation struct {
	Pattern Pattern
	Reason  string
}

// RecommendPattern picks a synthesis pattern for a free-text query using
// case-insensitive phrase matching. The first matching rule wins.
func RecommendPattern(query string) PatternRecommendation {
	q := strings.ToLower(query)

	for _, p := range truthTracerPhrases {
		if strings.Contains(q, p) {
			return PatternRecommendation{
				Pattern: PatternTruthTracer,
				Reason:  "Query asks for verification; cross-checking across three models.",
			}
		}
	}
	for _, p := range quickDeepPhrases {
		if strings.Contains(q, p) {
			return PatternRecommendation{
				Pattern: PatternQuickDeep,
				Reason:  "Query asks for comprehensive coverage; fast scan then deep research.",
			}
		}
	}
	for _, p := range factReasonPhrases {
		if strings.Contains(q, p) {
			return PatternRecommendation{
				Pattern: PatternFactReasoning,
				Reason:  "Query needs facts plus analysis; pairing search and reasoning models.",
			}
		}
	}
	return PatternRecommendation{
		Pattern: PatternMultiPerspective,
		Reason:  "Open question; gathering independent perspectives.",
	}
}
