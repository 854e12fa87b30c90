package gemini

import (
	"github.com/cloudwego/eino/schema"

	logx "github.com/tripplanner-poc/server/pkg/logger"
)

// pricing defines USD cost per 1M text tokens for input/output.
type pricing struct {
	InputPerM  float64
	OutputPerM float64
}

// Standard Gemini text pricing. Unknown models fall back to zero cost.
var modelPricing = map[string]pricing{
	"gemini-2.5-flash":      {InputPerM: 0.30, OutputPerM: 2.50},
	"gemini-2.5-flash-lite": {InputPerM: 0.10, OutputPerM: 0.40},
}

// logUsage records token counts and estimated cost for one model call.
func logUsage(modelName string, out *schema.Message) {
	if out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	usage := out.ResponseMeta.Usage
	p := modelPricing[modelName]
	inputCost := p.InputPerM * float64(usage.PromptTokens) / 1_000_000.0
	outputCost := p.OutputPerM * float64(usage.CompletionTokens) / 1_000_000.0

	logx.Debug().
		Str("model", modelName).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Float64("cost_usd", inputCost+outputCost).
		Msg("Model token usage")
}
