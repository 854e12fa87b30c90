package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/tripplanner-poc/server/internal/planner/model"
	"github.com/tripplanner-poc/server/internal/planner/ports/gemini/prompts"
	"github.com/tripplanner-poc/server/internal/planner/providers"
	logx "github.com/tripplanner-poc/server/pkg/logger"
)

const DefaultRequestsPerMinute = 3

// Recommenders implements the four free-text recommendation ports over one
// shared chat model. Dispatch to the model is serialized through a token
// bucket sized to the provider's request-per-minute ceiling; result-waiting
// stays concurrent per branch, so the engine's fan-out is unaffected.
type Recommenders struct {
	cm        *gemini.ChatModel
	limiter   *rate.Limiter
	data      *providers.Client
	modelName string
}

func NewRecommenders(cms *ChatModels, cfg model.RecommendationModelConfig, data *providers.Client) *Recommenders {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	return &Recommenders{
		cm:        cms.Recommendation,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		data:      data,
		modelName: cms.RecModelName,
	}
}

func (r *Recommenders) RecommendFlights(ctx context.Context, req model.TripRequirements, preferredAirlines []string) (string, error) {
	systemPrompt, err := prompts.RenderFlightSystem(ctx)
	if err != nil {
		return "", fmt.Errorf("render flight prompt: %w", err)
	}

	flights, err := r.data.SearchFlights(ctx, req.Origin, req.Destination, req.DateLeaving)
	if err != nil {
		logProviderFallback("flight", err)
		flights = providers.FallbackFlights(req.Origin, req.Destination)
	}
	flights = providers.MarkPreferredAirlines(flights, preferredAirlines)

	var b strings.Builder
	fmt.Fprintf(&b, "I need flight recommendations from %s to %s on %s. Return flight on %s.\n",
		req.Origin, req.Destination, req.DateLeaving, req.DateReturning)
	if len(preferredAirlines) > 0 {
		fmt.Fprintf(&b, "Preferred airlines: %s.\n", strings.Join(preferredAirlines, ", "))
	}
	appendJSONContext(&b, "Flight search data", flights)

	return r.generate(ctx, systemPrompt, b.String())
}

func (r *Recommenders) RecommendHotels(ctx context.Context, req model.TripRequirements, amenities []string, budget model.BudgetLevel) (string, error) {
	systemPrompt, err := prompts.RenderHotelSystem(ctx)
	if err != nil {
		return "", fmt.Errorf("render hotel prompt: %w", err)
	}

	hotels, err := r.data.SearchHotels(ctx, req.Destination, req.DateLeaving, req.DateReturning)
	if err != nil {
		logProviderFallback("hotel", err)
		hotels = providers.FallbackHotels()
	}
	hotels = providers.RankHotels(hotels, float64(req.MaxHotelPrice), amenities, budget)

	var b strings.Builder
	fmt.Fprintf(&b, "I need hotel recommendations in %s from %s to %s with a maximum price of $%d per night.\n",
		req.Destination, req.DateLeaving, req.DateReturning, req.MaxHotelPrice)
	fmt.Fprintf(&b, "Budget level: %s.\n", budget)
	if len(amenities) > 0 {
		fmt.Fprintf(&b, "Preferred amenities: %s.\n", strings.Join(amenities, ", "))
	}
	appendJSONContext(&b, "Hotel search data", hotels)

	return r.generate(ctx, systemPrompt, b.String())
}

func (r *Recommenders) RecommendActivities(ctx context.Context, req model.TripRequirements) (string, error) {
	systemPrompt, err := prompts.RenderActivitySystem(ctx)
	if err != nil {
		return "", fmt.Errorf("render activity prompt: %w", err)
	}

	var weatherSummary string
	if w, err := r.data.CurrentWeather(ctx, req.Destination); err != nil {
		logProviderFallback("weather", err)
		weatherSummary = providers.FallbackWeatherSummary(req.Destination, req.DateLeaving)
	} else {
		weatherSummary = providers.WeatherSummary(w, req.Destination, req.DateLeaving)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I need activity recommendations for %s from %s to %s.\n",
		req.Destination, req.DateLeaving, req.DateReturning)
	fmt.Fprintf(&b, "Weather: %s\n", weatherSummary)

	return r.generate(ctx, systemPrompt, b.String())
}

func (r *Recommenders) Summarize(ctx context.Context, req model.TripRequirements, flightText, hotelText, activityText string) (string, error) {
	systemPrompt, err := prompts.RenderPlannerSystem(ctx)
	if err != nil {
		return "", fmt.Errorf("render planner prompt: %w", err)
	}

	request := fmt.Sprintf(`I'm planning a trip to %s from %s on %s and returning on %s.

Here are the flight recommendations:
%s

Here are the hotel recommendations:
%s

Here are the activity recommendations:
%s

Please create a comprehensive travel plan based on these recommendations.`,
		req.Destination, req.Origin, req.DateLeaving, req.DateReturning,
		flightText, hotelText, activityText)

	return r.generate(ctx, systemPrompt, request)
}

// generate waits for a dispatch token, then runs one request/response call
// against the recommendation model.
func (r *Recommenders) generate(ctx context.Context, systemPrompt, request string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	started := time.Now()
	out, err := r.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(request),
	})
	if err != nil {
		logx.Error().Err(err).Str("model", r.modelName).Msg("Recommendation model call failed")
		return "", fmt.Errorf("recommendation model: %w", err)
	}
	if out == nil || out.Content == "" {
		return "", fmt.Errorf("recommendation model returned empty output")
	}
	logUsage(r.modelName, out)

	logx.Debug().
		Str("model", r.modelName).
		Dur("elapsed", time.Since(started)).
		Msg("Recommendation model call complete")
	return out.Content, nil
}

func appendJSONContext(b *strings.Builder, label string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(b, "\n%s:\n```json\n%s\n```\n", label, data)
}

func logProviderFallback(provider string, err error) {
	if errors.Is(err, providers.ErrNotConfigured) {
		logx.Debug().Str("provider", provider).Msg("Provider not configured; using fallback data")
		return
	}
	logx.Warn().Str("provider", provider).Err(err).Msg("Provider lookup failed; using fallback data")
}

var (
	_ model.FlightRecommender   = (*Recommenders)(nil)
	_ model.HotelRecommender    = (*Recommenders)(nil)
	_ model.ActivityRecommender = (*Recommenders)(nil)
	_ model.PlanSummarizer      = (*Recommenders)(nil)
)
