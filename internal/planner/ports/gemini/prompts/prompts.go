package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/tripplanner-poc/server/internal/planner/model"
)

//go:embed template/extraction_prompt.txt
var extractionSystemPrompt string

//go:embed template/flight_prompt.txt
var flightSystemPrompt string

//go:embed template/hotel_prompt.txt
var hotelSystemPrompt string

//go:embed template/activity_prompt.txt
var activitySystemPrompt string

//go:embed template/planner_prompt.txt
var plannerSystemPrompt string

// render formats a template through the Eino prompt component and returns
// the final system prompt string.
func render(ctx context.Context, tmpl string, vars map[string]any) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(tmpl),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// RenderExtractionSystem renders the requirements-extraction system prompt.
func RenderExtractionSystem(ctx context.Context) (string, error) {
	return render(ctx, extractionSystemPrompt, map[string]any{})
}

// RenderFlightSystem renders the flight recommender system prompt.
func RenderFlightSystem(ctx context.Context) (string, error) {
	return render(ctx, flightSystemPrompt, map[string]any{})
}

// RenderHotelSystem renders the hotel recommender system prompt.
func RenderHotelSystem(ctx context.Context) (string, error) {
	return render(ctx, hotelSystemPrompt, map[string]any{
		"BudgetLevels": strings.Join([]string{
			string(model.BudgetLow),
			string(model.BudgetMidRange),
			string(model.BudgetLuxury),
		}, " | "),
	})
}

// RenderActivitySystem renders the activity recommender system prompt.
func RenderActivitySystem(ctx context.Context) (string, error) {
	return render(ctx, activitySystemPrompt, map[string]any{})
}

// RenderPlannerSystem renders the final-plan summarizer system prompt.
func RenderPlannerSystem(ctx context.Context) (string, error) {
	return render(ctx, plannerSystemPrompt, map[string]any{})
}
