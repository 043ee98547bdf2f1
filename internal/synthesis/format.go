package synthesis

import (
	"fmt"
	"strings"

	"plexmcp/internal/perplexity"
)

// confidenceNarratives maps each confidence level to the sentence shown in
// the rendered report.
var confidenceNarratives = map[Confidence]string{
	ConfidenceHigh:       "The models agree on sources and depth; findings can be relied on with high confidence.",
	ConfidenceMediumHigh: "The models share several key sources; findings are likely reliable but worth spot-checking.",
	ConfidenceMedium:     "The models overlap only partially; treat the findings as a starting point and verify key claims.",
	ConfidenceLow:        "The models diverge substantially; verify all claims against primary sources before relying on them.",
}

// FormatSynthesis renders a synthesis result as a multi-section report:
// summary, one subsection per finding, agreement/conflict areas, a
// confidence narrative, and the combined source list.
func FormatSynthesis(r *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Synthesis: %s\n\n%s\n", r.Query, r.Summary)

	for i, f := range r.Findings {
		fmt.Fprintf(&b, "\n## %d. %s (%s)\n\n%s\n\n*%d sources cited*\n",
			i+1, perplexity.ModelLabel(f.Model), f.Model, f.Content, len(f.Citations))
	}

	b.WriteString("\n## Areas of Agreement\n")
	if len(r.Consistency.Agreements) == 0 {
		b.WriteString("No strong agreement signals were detected between the models.\n")
	} else {
		for _, a := range r.Consistency.Agreements {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}

	b.WriteString("\n## Areas of Conflict\n")
	if len(r.Consistency.Conflicts) == 0 {
		b.WriteString("No notable conflicts were detected between the models.\n")
	} else {
		for _, c := range r.Consistency.Conflicts {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	fmt.Fprintf(&b, "\n## Confidence: %s\n%s\n", r.Consistency.Confidence,
		confidenceNarratives[r.Consistency.Confidence])

	if len(r.Citations) > 0 {
		b.WriteString("\n## All Sources\n")
		for i, c := range r.Citations {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, c, perplexity.Hostname(c))
		}
	}

	return b.String()
}
