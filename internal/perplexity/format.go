package perplexity

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// thinkingBlockRe matches <think>...</think> blocks, including multi-line
// content, non-greedily. Reasoning models emit these ahead of the answer.
var thinkingBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinking removes all thinking blocks from content and trims the
// surrounding whitespace.
func StripThinking(content string) string {
	return strings.TrimSpace(thinkingBlockRe.ReplaceAllString(content, ""))
}

// Hostname extracts the host from a citation URL, falling back to the raw
// string when it does not parse as a URL.
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// FormatResponseWithCitations renders a response as a text block: the
// answer (thinking blocks stripped), a Sources section, a Related Questions
// section when present, and a trailing metadata line.
func FormatResponseWithCitations(resp *Response) string {
	var b strings.Builder

	b.WriteString(StripThinking(resp.Content()))

	if len(resp.Citations) > 0 {
		b.WriteString("\n\n## Sources\n")
		for i, c := range resp.Citations {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, c, Hostname(c))
		}
	}

	if len(resp.RelatedQuestions) > 0 {
		b.WriteString("\n## Related Questions\n")
		for _, q := range resp.RelatedQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	fmt.Fprintf(&b, "\n---\nModel: %s | Tokens: %d", resp.Model, resp.Usage.TotalTokens)
	if resp.Usage.NumSearchQueries > 0 {
		fmt.Fprintf(&b, " | Searches: %d", resp.Usage.NumSearchQueries)
	}

	return b.String()
}
