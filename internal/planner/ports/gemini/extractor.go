package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"

	"github.com/tripplanner-poc/server/internal/planner/model"
	"github.com/tripplanner-poc/server/internal/planner/ports/gemini/parsers"
	"github.com/tripplanner-poc/server/internal/planner/ports/gemini/prompts"
	logx "github.com/tripplanner-poc/server/pkg/logger"
)

// Extractor implements the extraction port over the low-temperature chat
// model. It replays the recent conversation so earlier answers survive turns
// that only add one missing field.
type Extractor struct {
	cm        *gemini.ChatModel
	modelName string
}

func NewExtractor(cms *ChatModels) *Extractor {
	return &Extractor{cm: cms.Extraction, modelName: cms.ExtractionModelName}
}

func (e *Extractor) Extract(ctx context.Context, utterance string, history []*schema.Message) (model.ExtractionDelta, error) {
	systemPrompt, err := prompts.RenderExtractionSystem(ctx)
	if err != nil {
		return model.ExtractionDelta{}, fmt.Errorf("render extraction prompt: %w", err)
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(buildConversationContext(history, utterance)),
	}

	out, err := e.cm.Generate(ctx, messages)
	if err != nil {
		logx.Error().Err(err).Str("model", e.modelName).Msg("Extraction model call failed")
		return model.ExtractionDelta{}, fmt.Errorf("extraction model: %w", err)
	}
	if out == nil || out.Content == "" {
		return model.ExtractionDelta{}, fmt.Errorf("extraction model returned empty output")
	}
	logUsage(e.modelName, out)

	delta, err := parsers.ParseExtraction(out.Content)
	if err != nil {
		return model.ExtractionDelta{}, err
	}
	return *delta, nil
}

// buildConversationContext frames the prior turns and the current utterance
// the way the extraction prompt expects them.
func buildConversationContext(history []*schema.Message, utterance string) string {
	var b strings.Builder
	b.WriteString("<conversation_context>\n")
	for _, msg := range history {
		if msg == nil || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			b.WriteString("UserMessage(" + msg.Content + ")\n")
		case schema.Assistant:
			b.WriteString("AssistantMessage(" + msg.Content + ")\n")
		}
	}
	b.WriteString("</conversation_context>\n")
	b.WriteString("<current_message_to_analyze>\n")
	b.WriteString("UserMessage(" + utterance + ")\n")
	b.WriteString("</current_message_to_analyze>")
	return b.String()
}

var _ model.InfoExtractor = (*Extractor)(nil)
