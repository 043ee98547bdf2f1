package perplexity

// Perplexity model identifiers. The set is closed; tools validate against it
// before building a request.
const (
	ModelSonar             = "sonar"
	ModelSonarPro          = "sonar-pro"
	ModelSonarReasoningPro = "sonar-reasoning-pro"
	ModelSonarDeepResearch = "sonar-deep-research"
)

// ModelInfo describes one model for user-facing guidance.
type ModelInfo struct {
	Name        string
	Label       string
	Description string
}

// Models lists the supported models in guidance order.
var Models = []ModelInfo{
	{
		Name:        ModelSonar,
		Label:       "Sonar",
		Description: "Fast and cheap. Best for quick factual lookups and simple questions.",
	},
	{
		Name:        ModelSonarPro,
		Label:       "Sonar Pro",
		Description: "Balanced cost and quality. Good default for general research questions.",
	},
	{
		Name:        ModelSonarReasoningPro,
		Label:       "Sonar Reasoning Pro",
		Description: "Step-by-step reasoning. Best for why/how questions, comparisons, and debugging.",
	},
	{
		Name:        ModelSonarDeepResearch,
		Label:       "Sonar Deep Research",
		Description: "Exhaustive multi-source research. Slow and expensive; use for reports and due diligence.",
	},
}

// ValidModel reports whether name is one of the supported model identifiers.
func ValidModel(name string) bool {
	for _, m := range Models {
		if m.Name == name {
			return true
		}
	}
	return false
}

// ModelLabel returns the human-readable label for a model identifier,
// or the identifier itself when unknown.
func ModelLabel(name string) string {
	for _, m := range Models {
		if m.Name == name {
			return m.Label
		}
	}
	return name
}

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat completions payload sent to the API.
type Request struct {
	Model                  string    `json:"model"`
	Messages               []Message `json:"messages"`
	MaxTokens              int       `json:"max_tokens,omitempty"`
	Temperature            float64   `json:"temperature,omitempty"`
	TopP                   float64   `json:"top_p,omitempty"`
	SearchDomainFilter     []string  `json:"search_domain_filter,omitempty"`
	SearchRecencyFilter    string    `json:"search_recency_filter,omitempty"`
	ReturnCitations        bool      `json:"return_citations,omitempty"`
	ReturnRelatedQuestions bool      `json:"return_related_questions,omitempty"`
}

// Choice is one assistant completion within a response.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Usage is the token accounting attached to a response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	CitationTokens   int `json:"citation_tokens,omitempty"`
	NumSearchQueries int `json:"num_search_queries,omitempty"`
	ReasoningTokens  int `json:"reasoning_tokens,omitempty"`
}

// Response is the API's chat completion result. Treated as immutable
// once decoded.
type Response struct {
	ID               string   `json:"id"`
	Model            string   `json:"model"`
	Created          int64    `json:"created"`
	Choices          []Choice `json:"choices"`
	Citations        []string `json:"citations,omitempty"`
	RelatedQuestions []string `json:"related_questions,omitempty"`
	Usage            Usage    `json:"usage"`
}

// Content returns the first choice's message content, or "" when the
// response carries no choices.
func (r *Response) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Options tunes a single search call. The zero value selects the defaults
// documented on Client.Search.
type Options struct {
	// Messages may carry a leading system message; its content replaces the
	// default system prompt. All other entries are ignored.
	Messages []Message

	MaxTokens   int
	Temperature float64
	TopP        float64

	// DomainFilter allows or denies domains (prefix "-" denies). At most 10
	// entries are sent; the rest are dropped.
	DomainFilter []string
	// RecencyFilter restricts search to a window: hour, day, week, month.
	RecencyFilter string

	// Citations defaults to on; set DisableCitations to turn them off.
	DisableCitations bool
	RelatedQuestions bool
}
