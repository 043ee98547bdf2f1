package tools_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plexmcp/internal/perplexity"
	"plexmcp/internal/research"
	"plexmcp/internal/synthesis"
	"plexmcp/internal/tools"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newDeps wires real components against a mocked API and a temp journal.
func newDeps(t *testing.T, handler http.HandlerFunc) *tools.Dependencies {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := testLogger()
	client := perplexity.NewClient("test-key", srv.URL, 5*time.Second, logger)
	return &tools.Dependencies{
		Client: client,
		Engine: synthesis.NewEngine(client, logger),
		Store:  research.NewStore(t.TempDir(), logger),
		Logger: logger,
	}
}

func apiResponse(model, content string, citations []string) perplexity.Response {
	return perplexity.Response{
		ID:      "resp-1",
		Model:   model,
		Created: time.Now().Unix(),
		Choices: []perplexity.Choice{
			{Message: perplexity.Message{Role: "assistant", Content: content}},
		},
		Citations: citations,
		Usage:     perplexity.Usage{PromptTokens: 50, CompletionTokens: 150, TotalTokens: 200},
	}
}

// resultText extracts the text payload of a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content should be TextContent")
	return tc.Text
}

func TestResearchEndToEnd(t *testing.T) {
	var requested perplexity.Request
	deps := newDeps(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&requested))
		_ = json.NewEncoder(w).Encode(apiResponse(requested.Model,
			"Water boils at 100C at sea level.",
			[]string{"https://en.wikipedia.org/wiki/Boiling_point", "https://nist.gov/data"}))
	})

	handler := tools.NewResearchHandler(deps)
	result, _, err := handler(context.Background(), nil, tools.ResearchInput{
		Query: "What is the boiling point of water?",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	// Short "what is" query auto-selects the lightweight model.
	assert.Equal(t, perplexity.ModelSonar, requested.Model)

	text := resultText(t, result)
	assert.Contains(t, text, "Water boils at 100C")
	assert.Contains(t, text, "## Sources")
	assert.Contains(t, text, "Saved to: ")

	// One thread file with one entry exists.
	threads, err := deps.Store.ListThreads()
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Contains(t, threads[0].Topic, "boiling point of water")
	assert.Equal(t, perplexity.ModelSonar, threads[0].Model)

	content, found, err := deps.Store.ReadThread(strings.TrimSuffix(threads[0].File, ".md"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, strings.Count(content, "## Query "))

	// A raw backup referenced from the entry exists on disk.
	rawDir := filepath.Join(deps.Store.Dir(), "raw")
	entries, err := os.ReadDir(rawDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, content, entries[0].Name())
}

func TestResearchExplicitModel(t *testing.T) {
	var requested perplexity.Request
	deps := newDeps(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&requested))
		_ = json.NewEncoder(w).Encode(apiResponse(requested.Model, "answer", nil))
	})

	handler := tools.NewResearchHandler(deps)
	result, _, err := handler(context.Background(), nil, tools.ResearchInput{
		Query: "What is the boiling point of water?",
		Model: perplexity.ModelSonarDeepResearch,
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, perplexity.ModelSonarDeepResearch, requested.Model)
}

func TestResearchRejectsUnknownModel(t *testing.T) {
	deps := newDeps(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no API call expected for invalid input")
	})

	handler := tools.NewResearchHandler(deps)
	result, _, err := handler(context.Background(), nil, tools.ResearchInput{
		Query: "anything",
		Model: "gpt-9000",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Unknown model")
}

func TestResearchAPIFailureBlock(t *testing.T) {
	deps := newDeps(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	handler := tools.NewResearchHandler(deps)
	result, _, err := handler(context.Background(), nil, tools.ResearchInput{
		Query: "What is Go?",
	})
	require.NoError(t, err)
	require.True(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "HTTP 429")
	assert.Contains(t, text, "Retry the same query")
	assert.Contains(t, text, "Try a different model")
	assert.Contains(t, text, "Reformulate the query")
	assert.Contains(t, text, "Abort")

	// Nothing was journaled.
	threads, listErr := deps.Store.ListThreads()
	require.NoError(t, listErr)
	assert.Empty(t, threads)
}

func TestDeepResearchEndToEnd(t *testing.T) {
	var models []string
	deps := newDeps(t, func(w http.ResponseWriter, r *http.Request) {
		var req perplexity.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		models = append(models, req.Model)
		_ = json.NewEncoder(w).Encode(apiResponse(req.Model,
			"Finding from "+req.Model,
			[]string{"https://shared.example/source", "https://" + req.Model + ".example"}))
	})

	handler := tools.NewDeepResearchHandler(deps)
	result, _, err := handler(context.Background(), nil, tools.DeepResearchInput{
		Query:   "compare Kafka and NATS",
		Pattern: string(synthesis.PatternFactReasoning),
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	// Steps ran sequentially in pattern order.
	assert.Equal(t, []string{perplexity.ModelSonarPro, perplexity.ModelSonarReasoningPro}, models)

	text := resultText(t, result)
	assert.Contains(t, text, "# Synthesis: compare Kafka and NATS")
	assert.Contains(t, text, "Areas of Agreement")
	assert.Contains(t, text, "Areas of Conflict")
	assert.Contains(t, text, "Saved to: ")

	threads, err := deps.Store.ListThreads()
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, string(synthesis.PatternFactReasoning), threads[0].Model)

	// Each synthesis step gets its own raw backup.
	rawEntries, err := os.ReadDir(filepath.Join(deps.Store.Dir(), "raw"))
	require.NoError(t, err)
	assert.Len(t, rawEntries, 2)

	// The rolling summary tallies the run's confidence rating.
	content, found, err := deps.Store.ReadThread(strings.TrimSuffix(threads[0].File, ".md"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, content, "**Confidence**: medium x1")
}

func TestDeepResearchStopsAtFirstFailure(t *testing.T) {
	var calls int
	deps := newDeps(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			http.Error(w, "backend down", http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(apiResponse(perplexity.ModelSonarPro, "ok", nil))
	})

	handler := tools.NewDeepResearchHandler(deps)
	result, _, err := handler(context.Background(), nil, tools.DeepResearchInput{
		Query:   "verify this claim",
		Pattern: string(synthesis.PatternTruthTracer),
	})
	require.NoError(t, err)
	require.True(t, result.IsError)

	// Three-step pattern, second step failed: the third call never happens.
	assert.Equal(t, 2, calls)
	assert.Contains(t, resultText(t, result), "HTTP 502")

	threads, listErr := deps.Store.ListThreads()
	require.NoError(t, listErr)
	assert.Empty(t, threads, "no partial synthesis may be journaled")
}

func TestListModelsIsStatic(t *testing.T) {
	deps := newDeps(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("list_models must not call the API")
	})

	handler := tools.NewListModelsHandler(deps)
	result, _, err := handler(context.Background(), nil, tools.ListModelsInput{})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	for _, m := range perplexity.Models {
		assert.Contains(t, text, m.Name)
	}
	for _, p := range synthesis.Patterns {
		assert.Contains(t, text, string(p))
	}
}

func TestThreadToolsRoundTrip(t *testing.T) {
	deps := newDeps(t, func(w http.ResponseWriter, r *http.Request) {
		var req perplexity.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(apiResponse(req.Model, "Zanzibar is an island.", nil))
	})

	researchHandler := tools.NewResearchHandler(deps)
	_, _, err := researchHandler(context.Background(), nil, tools.ResearchInput{Query: "What is Zanzibar?"})
	require.NoError(t, err)

	t.Run("search finds the thread", func(t *testing.T) {
		handler := tools.NewSearchResearchHandler(deps)
		result, _, err := handler(context.Background(), nil, tools.SearchResearchInput{Keywords: "zanzibar island"})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), "zanzibar")
	})

	t.Run("search misses politely", func(t *testing.T) {
		handler := tools.NewSearchResearchHandler(deps)
		result, _, err := handler(context.Background(), nil, tools.SearchResearchInput{Keywords: "zanzibar volcano"})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), "No research threads match")
	})

	t.Run("list shows the thread table", func(t *testing.T) {
		handler := tools.NewListThreadsHandler(deps)
		result, _, err := handler(context.Background(), nil, tools.ListThreadsInput{})
		require.NoError(t, err)
		text := resultText(t, result)
		assert.Contains(t, text, "| Date | Topic | Model | Summary |")
		assert.Contains(t, text, "Zanzibar")
	})

	t.Run("read returns full content", func(t *testing.T) {
		handler := tools.NewReadThreadHandler(deps)
		result, _, err := handler(context.Background(), nil, tools.ReadThreadInput{Topic: "zanzibar"})
		require.NoError(t, err)
		assert.Contains(t, resultText(t, result), "## Query 1:")
	})

	t.Run("read miss is a message, not an error", func(t *testing.T) {
		handler := tools.NewReadThreadHandler(deps)
		result, _, err := handler(context.Background(), nil, tools.ReadThreadInput{Topic: "atlantis"})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), "No research thread found")
	})
}
