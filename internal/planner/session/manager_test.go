package session

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/tripplanner-poc/server/internal/core/error"
	"github.com/tripplanner-poc/server/internal/planner/engine"
	"github.com/tripplanner-poc/server/internal/planner/model"
	"github.com/tripplanner-poc/server/internal/planner/repo"
)

// keywordExtractor recognises a few fixed phrases so the tests can feed
// realistic utterances without a live model.
type keywordExtractor struct{}

func (keywordExtractor) Extract(ctx context.Context, utterance string, history []*schema.Message) (model.ExtractionDelta, error) {
	var d model.ExtractionDelta
	if strings.Contains(utterance, "Paris") {
		d.Destination = "Paris"
	}
	if strings.Contains(utterance, "New York") {
		d.Origin = "New York"
	}
	if strings.Contains(utterance, "06-15") {
		d.DateLeaving = "06-15"
	}
	if strings.Contains(utterance, "06-22") {
		d.DateReturning = "06-22"
	}
	if strings.Contains(utterance, "$200") {
		d.MaxHotelPrice = 200
	}
	if d.Destination == "" || d.Origin == "" || d.DateLeaving == "" || d.DateReturning == "" || d.MaxHotelPrice == 0 {
		d.Response = "I still need a few details about your trip."
	}
	return d, nil
}

type textRecommenders struct{}

func (textRecommenders) RecommendFlights(ctx context.Context, req model.TripRequirements, airlines []string) (string, error) {
	return fmt.Sprintf("flights from %s to %s", req.Origin, req.Destination), nil
}

func (textRecommenders) RecommendHotels(ctx context.Context, req model.TripRequirements, amenities []string, budget model.BudgetLevel) (string, error) {
	return fmt.Sprintf("hotels in %s under $%d", req.Destination, req.MaxHotelPrice), nil
}

func (textRecommenders) RecommendActivities(ctx context.Context, req model.TripRequirements) (string, error) {
	return fmt.Sprintf("activities in %s", req.Destination), nil
}

func (textRecommenders) Summarize(ctx context.Context, req model.TripRequirements, flight, hotel, activity string) (string, error) {
	return fmt.Sprintf("Your %s trip: %s; %s; %s", req.Destination, flight, hotel, activity), nil
}

func newTestManager(t *testing.T) (*Manager, *repo.MemoryCheckpointStore) {
	t.Helper()
	store := repo.NewMemoryCheckpointStore()
	recs := textRecommenders{}
	eng, err := engine.New(engine.Ports{
		Extractor:  keywordExtractor{},
		Flights:    recs,
		Hotels:     recs,
		Activities: recs,
		Planner:    recs,
	}, store, model.SessionConfig{})
	require.NoError(t, err)

	mgr, err := NewManager(eng, store)
	require.NoError(t, err)
	return mgr, store
}

func midRangePrefs() model.Preferences {
	return model.Preferences{
		PreferredAirlines: []string{},
		HotelAmenities:    []string{},
		BudgetLevel:       model.BudgetMidRange,
	}
}

func TestStartSession_CompleteUtteranceYieldsPlan(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	id, status, err := mgr.StartSession(ctx,
		"trip to Paris from New York, leaving 06-15, returning 06-22, max hotel $200/night",
		midRangePrefs())

	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, model.StatusPlanReady, status)

	plan, err := mgr.GetPlan(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, plan, "Paris")
	assert.Contains(t, plan, "flights")
	assert.Contains(t, plan, "hotels")
	assert.Contains(t, plan, "activities")
}

func TestResumeSession_ReentersExtraction(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	id, status, err := mgr.StartSession(ctx, "I want to go to Paris, max hotel $200/night", midRangePrefs())
	require.NoError(t, err)
	require.Equal(t, model.StatusNeedsMoreInfo, status)

	_, err = mgr.GetPlan(ctx, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, errx.ErrPlanNotReady)

	status, err = mgr.ResumeSession(ctx, id, "from New York, leaving 06-15 and returning 06-22")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPlanReady, status)

	sess, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, sess.Requirements.Complete)
	assert.Equal(t, "New York", sess.Requirements.Origin)
	assert.Equal(t, "Paris", sess.Requirements.Destination)
	assert.Equal(t, "06-15", sess.Requirements.DateLeaving)
	assert.Equal(t, "06-22", sess.Requirements.DateReturning)
	assert.Equal(t, 200, sess.Requirements.MaxHotelPrice)
}

func TestResumeSession_UnknownID(t *testing.T) {
	mgr, _ := newTestManager(t)

	_, err := mgr.ResumeSession(context.Background(), "no-such-session", "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, errx.ErrSessionNotFound)
}

func TestResumeSession_FinishedSessionStaysReadable(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	id, _, err := mgr.StartSession(ctx,
		"Paris from New York, 06-15 to 06-22, $200 max", midRangePrefs())
	require.NoError(t, err)

	planBefore, err := mgr.GetPlan(ctx, id)
	require.NoError(t, err)

	// Resuming a finished session changes nothing.
	status, err := mgr.ResumeSession(ctx, id, "actually, make it Rome")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPlanReady, status)

	planAfter, err := mgr.GetPlan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, planBefore, planAfter)
}

func TestCheckpointIdempotence(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	id, _, err := mgr.StartSession(ctx,
		"Paris from New York, 06-15 to 06-22, $200 max", midRangePrefs())
	require.NoError(t, err)

	sess, err := store.Load(ctx, id)
	require.NoError(t, err)

	// Persisting the identical state again must not change anything
	// observable.
	require.NoError(t, store.Save(ctx, sess))
	require.NoError(t, store.Save(ctx, sess))

	status, err := mgr.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPlanReady, status)

	plan, err := mgr.GetPlan(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, plan, "Paris")
	assert.Equal(t, 1, store.Len())
}

func TestDiscard_RemovesSession(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	id, _, err := mgr.StartSession(ctx, "trip to Paris, $200", midRangePrefs())
	require.NoError(t, err)

	require.NoError(t, mgr.Discard(ctx, id))

	_, err = mgr.GetStatus(ctx, id)
	assert.ErrorIs(t, err, errx.ErrSessionNotFound)
}

func TestGetStatus_Progression(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	id, _, err := mgr.StartSession(ctx, "somewhere nice please", midRangePrefs())
	require.NoError(t, err)

	status, err := mgr.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNeedsMoreInfo, status)

	_, err = mgr.ResumeSession(ctx, id, "Paris from New York, 06-15 to 06-22, $200 max")
	require.NoError(t, err)

	status, err = mgr.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPlanReady, status)
}

func TestNewManager_Validation(t *testing.T) {
	store := repo.NewMemoryCheckpointStore()

	_, err := NewManager(nil, store)
	assert.Error(t, err)

	recs := textRecommenders{}
	eng, err := engine.New(engine.Ports{
		Extractor:  keywordExtractor{},
		Flights:    recs,
		Hotels:     recs,
		Activities: recs,
		Planner:    recs,
	}, store, model.SessionConfig{})
	require.NoError(t, err)

	_, err = NewManager(eng, nil)
	assert.Error(t, err)

	mgr, err := NewManager(eng, store)
	require.NoError(t, err)
	assert.NotNil(t, mgr)
}

// guard against accidental interface drift in the stubs
var (
	_ model.InfoExtractor       = keywordExtractor{}
	_ model.FlightRecommender   = textRecommenders{}
	_ model.HotelRecommender    = textRecommenders{}
	_ model.ActivityRecommender = textRecommenders{}
	_ model.PlanSummarizer      = textRecommenders{}
)
