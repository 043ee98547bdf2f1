// Package research persists interactions as append-only markdown journals,
// one thread per topic slug, with raw JSON backups of every API response.
package research

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"plexmcp/internal/config"
	"plexmcp/internal/perplexity"
)

const (
	slugMaxLen    = 50
	rawSlugMaxLen = 30
	titleMaxLen   = 80
)

// Store owns all journal file access. No other component touches the
// research directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore resolves the journal directory (explicit override > RESEARCH_DIR
// > default documents path) and returns a store. Directories are created
// lazily on first use.
func NewStore(override string, logger *slog.Logger) *Store {
	dir := override
	if dir == "" {
		dir = os.Getenv("RESEARCH_DIR")
	}
	if dir == "" {
		dir = config.DefaultResearchDir()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the resolved journal directory.
func (s *Store) Dir() string {
	return s.dir
}

// ensureDirs creates the journal directory and its raw/ subdirectory.
// Called before every public operation: the directory may have been
// removed externally between calls.
func (s *Store) ensureDirs() error {
	if err := os.MkdirAll(filepath.Join(s.dir, "raw"), 0o755); err != nil {
		return fmt.Errorf("create research directory: %w", err)
	}
	return nil
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the query, collapses every run of non-alphanumeric
// characters to a single hyphen, trims edge hyphens, and truncates to
// maxLen. Pure and deterministic. A query with no alphanumeric content at
// all slugs to "untitled" so the filename never starts with the date
// separator.
func Slugify(query string, maxLen int) string {
	slug := strings.ToLower(query)
	slug = nonAlnumRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxLen {
		slug = strings.Trim(slug[:maxLen], "-")
	}
	if slug == "" {
		return "untitled"
	}
	return slug
}

// truncateRunes shortens s to at most max runes. Byte slicing would cut
// multi-byte characters in half and write invalid UTF-8 into the journal.
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// GenerateFilename derives the thread filename for a query at time t.
// Same query, same day: same file. Filename identity is a pure function
// of (query, date).
func GenerateFilename(query string, t time.Time) string {
	return Slugify(query, slugMaxLen) + "-" + t.Format("2006-01-02") + ".md"
}

// rawBackup is the JSON envelope written for every API response.
type rawBackup struct {
	SavedAt  time.Time `json:"saved_at"`
	Model    string    `json:"model"`
	Topic    string    `json:"topic"`
	Response any       `json:"response"`
}

// SaveRawResponse writes the unmodified response as JSON under raw/.
// It is the durability floor: it runs before any markdown is written and
// is never skipped, so a later formatting failure cannot lose findings.
// When several responses for the same topic land within one second (the
// steps of a synthesis run), a numeric suffix keeps each backup distinct
// instead of overwriting the previous one. Returns the path of the
// written file.
func (s *Store) SaveRawResponse(topic, model string, response any, now time.Time) (string, error) {
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	stamp := now.Format("20060102_150405")
	slug := Slugify(topic, rawSlugMaxLen)
	path := filepath.Join(s.dir, "raw", fmt.Sprintf("%s_%s.json", stamp, slug))
	for n := 2; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(s.dir, "raw", fmt.Sprintf("%s_%s_%d.json", stamp, slug, n))
	}

	data, err := json.MarshalIndent(rawBackup{
		SavedAt:  now,
		Model:    model,
		Topic:    topic,
		Response: response,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal raw backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write raw backup: %w", err)
	}

	s.logger.Debug("raw response saved", "path", path)
	return path, nil
}

// Interaction is one logged exchange: a single query or one synthesis run.
type Interaction struct {
	Query            string
	Context          string
	Model            string
	Rationale        string
	ApprovedPlan     string
	Findings         string
	Citations        []string
	RelatedQuestions []string
	Usage            perplexity.Usage
	RawPath          string
}

var queryHeaderRe = regexp.MustCompile(`(?m)^## Query (\d+):`)

// SaveInteraction appends one entry to the topic's thread, creating the
// file if needed. The whole file is read, the trailing synthesis section
// stripped, the new entry appended, and a fresh synthesis section
// regenerated at the end. Entries themselves are never rewritten.
// Returns the path of the thread file.
func (s *Store) SaveInteraction(in Interaction, now time.Time) (string, error) {
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, GenerateFilename(in.Query, now))

	var body string
	ordinal := 1
	if data, err := os.ReadFile(path); err == nil {
		body = stripSynthesisSection(string(data))
		ordinal = len(queryHeaderRe.FindAllString(body, -1)) + 1
	} else {
		body = newThreadHeader(in, now)
	}

	body = strings.TrimRight(body, "\n") + "\n\n" + s.renderEntry(in, ordinal, now)
	body += "\n" + renderSynthesisSection(body, now)

	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write thread: %w", err)
	}

	s.logger.Info("interaction saved", "path", path, "ordinal", ordinal, "model", in.Model)
	return path, nil
}

// newThreadHeader renders the title block of a fresh thread file.
func newThreadHeader(in Interaction, now time.Time) string {
	title := truncateRunes(in.Query, titleMaxLen)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Research\n\n", title)
	fmt.Fprintf(&b, "*Started: %s*\n", now.Format("2006-01-02"))
	if in.Context != "" {
		fmt.Fprintf(&b, "\n*Context: %s*\n", in.Context)
	}
	return b.String()
}

// renderEntry renders one immutable entry block.
func (s *Store) renderEntry(in Interaction, ordinal int, now time.Time) string {
	var b strings.Builder

	title := in.Query
	if truncated := truncateRunes(title, 60); truncated != title {
		title = truncated + "..."
	}
	fmt.Fprintf(&b, "## Query %d: %s\n\n", ordinal, title)
	fmt.Fprintf(&b, "*%s (%s)*\n\n",
		now.Format("2006-01-02 15:04:05 MST"),
		now.UTC().Format("2006-01-02 15:04:05 UTC"))

	if in.RawPath != "" {
		fmt.Fprintf(&b, "[Raw response](raw/%s)\n\n", filepath.Base(in.RawPath))
	}

	fmt.Fprintf(&b, "**Model**: %s", in.Model)
	if in.Rationale != "" {
		fmt.Fprintf(&b, " - %s", in.Rationale)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "**Tokens**: %d prompt + %d completion = %d total",
		in.Usage.PromptTokens, in.Usage.CompletionTokens, in.Usage.TotalTokens)
	if in.Usage.NumSearchQueries > 0 {
		fmt.Fprintf(&b, " | Searches: %d", in.Usage.NumSearchQueries)
	}
	b.WriteString("\n")

	if in.ApprovedPlan != "" {
		fmt.Fprintf(&b, "\n### Approved Plan\n\n%s\n", strings.TrimSpace(in.ApprovedPlan))
	}

	fmt.Fprintf(&b, "\n### Findings\n\n%s\n", perplexity.StripThinking(in.Findings))

	if len(in.Citations) > 0 {
		b.WriteString("\n### Sources\n\n")
		for i, c := range in.Citations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, c)
		}
	}

	if len(in.RelatedQuestions) > 0 {
		b.WriteString("\n### Related Questions\n\n")
		for _, q := range in.RelatedQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	fmt.Fprintf(&b, "\n**Estimated cost**: %s\n", EstimateCost(in.Model, in.Usage))
	return b.String()
}

const synthesisHeader = "## Synthesis"

// stripSynthesisSection removes the trailing synthesis section, if any.
// The section is always last in the file, so everything from its header
// to EOF goes.
func stripSynthesisSection(content string) string {
	if idx := strings.LastIndex(content, "\n"+synthesisHeader); idx >= 0 {
		return content[:idx]
	}
	if strings.HasPrefix(content, synthesisHeader) {
		return ""
	}
	return content
}

var relatedQuestionRe = regexp.MustCompile(`(?m)^- (.+\?)$`)

// renderSynthesisSection builds the rolling summary that trails every
// thread file. Regenerated from the full body on each append; it is the
// only mutable region of a thread.
func renderSynthesisSection(body string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n*Updated: %s*\n\n", synthesisHeader, now.Format("2006-01-02 15:04:05 MST"))

	entries := len(queryHeaderRe.FindAllString(body, -1))
	fmt.Fprintf(&b, "**Queries logged**: %d\n", entries)

	if models := tallyModels(body); len(models) > 0 {
		fmt.Fprintf(&b, "**Models used**: %s\n", strings.Join(models, ", "))
	}

	if tally := tallyConfidence(body); tally != "" {
		fmt.Fprintf(&b, "**Confidence**: %s\n", tally)
	}

	// Open questions: related questions accumulated across entries, capped.
	var open []string
	seen := make(map[string]struct{})
	for _, m := range relatedQuestionRe.FindAllStringSubmatch(body, -1) {
		q := m[1]
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		open = append(open, q)
		if len(open) == 5 {
			break
		}
	}
	if len(open) > 0 {
		b.WriteString("\n### Open Questions\n\n")
		for _, q := range open {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	return b.String()
}

var modelLineRe = regexp.MustCompile(`(?m)^\*\*Model\*\*: ([^ \n]+)`)

// tallyModels lists the distinct models recorded in the body, in first-use
// order.
func tallyModels(body string) []string {
	var models []string
	seen := make(map[string]struct{})
	for _, m := range modelLineRe.FindAllStringSubmatch(body, -1) {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		models = append(models, name)
	}
	return models
}

// confidenceLineRe matches the per-run confidence heading embedded in
// deep-research findings.
var confidenceLineRe = regexp.MustCompile(`(?m)^## Confidence: (low|medium-high|medium|high)\s*$`)

// confidenceOrder lists the levels from weakest to strongest for stable
// tally rendering.
var confidenceOrder = []string{"low", "medium", "medium-high", "high"}

// tallyConfidence counts the confidence ratings of the deep-research
// entries in the body. Returns "" when no entry carries one (single-call
// threads have no confidence heading).
func tallyConfidence(body string) string {
	counts := make(map[string]int)
	for _, m := range confidenceLineRe.FindAllStringSubmatch(body, -1) {
		counts[m[1]]++
	}
	if len(counts) == 0 {
		return ""
	}

	var parts []string
	for _, level := range confidenceOrder {
		if n := counts[level]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s x%d", level, n))
		}
	}
	return strings.Join(parts, ", ")
}
