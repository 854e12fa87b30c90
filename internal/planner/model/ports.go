package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// InfoExtractor turns a user utterance plus prior conversation into a
// structured requirements delta. The delta's completeness claim is advisory
// only; the engine recomputes completeness itself.
type InfoExtractor interface {
	Extract(ctx context.Context, utterance string, history []*schema.Message) (ExtractionDelta, error)
}

// FlightRecommender produces free-text flight recommendations.
type FlightRecommender interface {
	RecommendFlights(ctx context.Context, req TripRequirements, preferredAirlines []string) (string, error)
}

// HotelRecommender produces free-text hotel recommendations.
type HotelRecommender interface {
	RecommendHotels(ctx context.Context, req TripRequirements, amenities []string, budget BudgetLevel) (string, error)
}

// ActivityRecommender produces free-text activity recommendations.
type ActivityRecommender interface {
	RecommendActivities(ctx context.Context, req TripRequirements) (string, error)
}

// PlanSummarizer combines the three recommendation texts into the final plan.
type PlanSummarizer interface {
	Summarize(ctx context.Context, req TripRequirements, flightText, hotelText, activityText string) (string, error)
}

// CheckpointStore persists the full session state keyed by session id.
// Save must overwrite atomically: a reader never observes a partial record.
type CheckpointStore interface {
	// Save durably persists the session, replacing any previous checkpoint.
	Save(ctx context.Context, s *Session) error

	// Load retrieves a session by id. Unknown ids fail with a
	// errx.ErrSessionNotFound-wrapping error.
	Load(ctx context.Context, id string) (*Session, error)

	// Delete discards the checkpoint for a session.
	Delete(ctx context.Context, id string) error
}
