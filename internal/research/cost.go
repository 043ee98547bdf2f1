package research

import (
	"fmt"

	"plexmcp/internal/perplexity"
)

// pricing is USD per million tokens, input/output, per model.
type pricing struct {
	input  float64
	output float64
}

var modelPricing = map[string]pricing{
	perplexity.ModelSonar:             {input: 1, output: 1},
	perplexity.ModelSonarPro:          {input: 3, output: 15},
	perplexity.ModelSonarReasoningPro: {input: 2, output: 8},
	perplexity.ModelSonarDeepResearch: {input: 2, output: 8},
}

// EstimateCost returns the estimated USD cost of one call, formatted to
// four decimal places. Unknown models fall back to sonar pricing.
func EstimateCost(model string, usage perplexity.Usage) string {
	p, ok := modelPricing[model]
	if !ok {
		p = modelPricing[perplexity.ModelSonar]
	}
	cost := float64(usage.PromptTokens)/1e6*p.input + float64(usage.CompletionTokens)/1e6*p.output
	return fmt.Sprintf("$%.4f", cost)
}
