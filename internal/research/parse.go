package research

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ThreadMeta is the listing view of one thread file.
type ThreadMeta struct {
	File     string
	Topic    string
	Model    string
	Summary  string
	Modified time.Time
}

// Thread header formats have changed over time. Each historical version
// gets its own parser; ListThreads tries them in fixed priority order and
// the first match wins.
var (
	// Current form: "# <topic> Research"
	modernHeaderRe = regexp.MustCompile(`(?m)^# (.+) Research\s*$`)
	// Legacy form: "# Research Thread: <topic>"
	legacyHeaderRe = regexp.MustCompile(`(?m)^# Research Thread: (.+)\s*$`)
	// Oldest files: bare first-level header is the topic.
	bareHeaderRe = regexp.MustCompile(`(?m)^# (.+)\s*$`)
)

func parseModernHeader(content string) (string, bool) {
	if m := modernHeaderRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

func parseLegacyHeader(content string) (string, bool) {
	if m := legacyHeaderRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

func parseBareHeader(content string) (string, bool) {
	if m := bareHeaderRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// parseTopic runs the versioned parser cascade.
func parseTopic(content, fallback string) string {
	for _, parse := range []func(string) (string, bool){
		parseModernHeader,
		parseLegacyHeader,
		parseBareHeader,
	} {
		if topic, ok := parse(content); ok {
			return topic
		}
	}
	return fallback
}

// parseSummary returns the first content line: not a header, not emphasis,
// not a list item or link. Truncated to 100 characters.
func parseSummary(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line[0] {
		case '#', '*', '-', '[', '>':
			continue
		}
		if truncated := truncateRunes(line, 100); truncated != line {
			line = truncated + "..."
		}
		return line
	}
	return ""
}

// parseModel returns the first recorded model in the file, if any.
func parseModel(content string) string {
	if m := modelLineRe.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return ""
}

// ListThreads enumerates thread files in the journal root (raw/ backups
// are never listed), sorted by modification time descending.
func (s *Store) ListThreads() ([]ThreadMeta, error) {
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read research directory: %w", err)
	}

	var threads []ThreadMeta
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		content := string(data)
		threads = append(threads, ThreadMeta{
			File:     e.Name(),
			Topic:    parseTopic(content, strings.TrimSuffix(e.Name(), ".md")),
			Model:    parseModel(content),
			Summary:  parseSummary(content),
			Modified: info.ModTime(),
		})
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].Modified.After(threads[j].Modified)
	})
	return threads, nil
}

// ReadThread returns the raw content of a thread. Lookup is exact filename
// first (id + ".md"), then case-insensitive substring match against
// filenames. A miss returns ("", false, nil): not found is not an error.
func (s *Store) ReadThread(topicOrID string) (string, bool, error) {
	if err := s.ensureDirs(); err != nil {
		return "", false, err
	}

	exact := filepath.Join(s.dir, topicOrID+".md")
	if data, err := os.ReadFile(exact); err == nil {
		return string(data), true, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", false, fmt.Errorf("read research directory: %w", err)
	}

	needle := strings.ToLower(topicOrID)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name()), needle) {
			data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
			if err != nil {
				return "", false, fmt.Errorf("read thread: %w", err)
			}
			return string(data), true, nil
		}
	}
	return "", false, nil
}

// SearchMatch is one file matching a keyword search.
type SearchMatch struct {
	File     string
	Topic    string
	Snippets []string
}

const maxSnippetsPerFile = 5

// SearchResearch finds threads containing every whitespace-separated term
// (case-insensitive, substring, anywhere in the file). For each match it
// collects up to 5 snippets: the matching line plus one line of context on
// each side, in file order.
func (s *Store) SearchResearch(keywords string) ([]SearchMatch, error) {
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(keywords))
	if len(terms) == 0 {
		return nil, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read research directory: %w", err)
	}

	var matches []SearchMatch
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		content := string(data)
		lower := strings.ToLower(content)

		all := true
		for _, t := range terms {
			if !strings.Contains(lower, t) {
				all = false
				break
			}
		}
		if !all {
			continue
		}

		matches = append(matches, SearchMatch{
			File:     e.Name(),
			Topic:    parseTopic(content, strings.TrimSuffix(e.Name(), ".md")),
			Snippets: collectSnippets(content, terms),
		})
	}
	return matches, nil
}

// collectSnippets gathers line windows around matching lines: one line of
// context before and after, capped at maxSnippetsPerFile, deduplicated.
func collectSnippets(content string, terms []string) []string {
	lines := strings.Split(content, "\n")
	seen := make(map[string]struct{})
	var snippets []string

	for i, line := range lines {
		lower := strings.ToLower(line)
		hit := false
		for _, t := range terms {
			if strings.Contains(lower, t) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}

		start := i - 1
		if start < 0 {
			start = 0
		}
		end := i + 2
		if end > len(lines) {
			end = len(lines)
		}
		snippet := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if snippet == "" {
			continue
		}
		if _, ok := seen[snippet]; ok {
			continue
		}
		seen[snippet] = struct{}{}
		snippets = append(snippets, snippet)
		if len(snippets) == maxSnippetsPerFile {
			break
		}
	}
	return snippets
}
