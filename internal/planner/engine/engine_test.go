package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/tripplanner-poc/server/internal/core/error"
	"github.com/tripplanner-poc/server/internal/planner/model"
	"github.com/tripplanner-poc/server/internal/planner/repo"
)

// ===== Stub ports =====

// scriptedExtractor returns one pre-built delta per call, in order.
type scriptedExtractor struct {
	deltas []model.ExtractionDelta
	errs   []error
	calls  int
}

func (s *scriptedExtractor) Extract(ctx context.Context, utterance string, history []*schema.Message) (model.ExtractionDelta, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return model.ExtractionDelta{}, s.errs[i]
	}
	if i >= len(s.deltas) {
		return model.ExtractionDelta{}, nil
	}
	return s.deltas[i], nil
}

type stubFlights struct{ fn func() (string, error) }

func (s *stubFlights) RecommendFlights(ctx context.Context, req model.TripRequirements, airlines []string) (string, error) {
	return s.fn()
}

type stubHotels struct{ fn func() (string, error) }

func (s *stubHotels) RecommendHotels(ctx context.Context, req model.TripRequirements, amenities []string, budget model.BudgetLevel) (string, error) {
	return s.fn()
}

type stubActivities struct{ fn func() (string, error) }

func (s *stubActivities) RecommendActivities(ctx context.Context, req model.TripRequirements) (string, error) {
	return s.fn()
}

type stubPlanner struct {
	fn func(req model.TripRequirements, flight, hotel, activity string) (string, error)
}

func (s *stubPlanner) Summarize(ctx context.Context, req model.TripRequirements, flight, hotel, activity string) (string, error) {
	return s.fn(req, flight, hotel, activity)
}

func okText(text string) func() (string, error) {
	return func() (string, error) { return text, nil }
}

func defaultPorts(extractor model.InfoExtractor) Ports {
	return Ports{
		Extractor:  extractor,
		Flights:    &stubFlights{fn: okText("flight options")},
		Hotels:     &stubHotels{fn: okText("hotel options")},
		Activities: &stubActivities{fn: okText("activity options")},
		Planner: &stubPlanner{fn: func(req model.TripRequirements, f, h, a string) (string, error) {
			return fmt.Sprintf("plan for %s: %s / %s / %s", req.Destination, f, h, a), nil
		}},
	}
}

func completeDelta() model.ExtractionDelta {
	return model.ExtractionDelta{
		Origin:        "New York",
		Destination:   "Paris",
		DateLeaving:   "06-15",
		DateReturning: "06-22",
		MaxHotelPrice: 200,
	}
}

// countingStore wraps the in-memory store counting Save calls.
type countingStore struct {
	model.CheckpointStore
	saves atomic.Int32
}

func (c *countingStore) Save(ctx context.Context, s *model.Session) error {
	c.saves.Add(1)
	return c.CheckpointStore.Save(ctx, s)
}

type failingStore struct{ model.CheckpointStore }

func (f *failingStore) Save(ctx context.Context, s *model.Session) error {
	return errors.New("disk unplugged")
}

// ===== Tests =====

func TestRun_IncompleteRequirementsSuspend(t *testing.T) {
	extractor := &scriptedExtractor{deltas: []model.ExtractionDelta{
		{Destination: "Paris", Response: "Where are you flying from?"},
	}}
	store := repo.NewMemoryCheckpointStore()
	eng, err := New(defaultPorts(extractor), store, model.SessionConfig{})
	require.NoError(t, err)

	sess := model.NewSession("s1", model.Preferences{BudgetLevel: model.BudgetMidRange})
	status, err := eng.Run(context.Background(), sess, "trip to Paris please")

	require.NoError(t, err)
	assert.Equal(t, model.StatusNeedsMoreInfo, status)
	assert.Equal(t, model.NodeAwaitInput, sess.Node)
	assert.Empty(t, sess.FlightResult, "no branch may be dispatched before completeness")
	assert.Empty(t, sess.HotelResult)
	assert.Empty(t, sess.ActivityResult)

	// The suspend state must be durable.
	persisted, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, model.NodeAwaitInput, persisted.Node)
	assert.Equal(t, "Paris", persisted.Requirements.Destination)
}

func TestRun_CompleteRequirementsFanOut(t *testing.T) {
	extractor := &scriptedExtractor{deltas: []model.ExtractionDelta{completeDelta()}}
	store := repo.NewMemoryCheckpointStore()
	eng, err := New(defaultPorts(extractor), store, model.SessionConfig{})
	require.NoError(t, err)

	sess := model.NewSession("s1", model.Preferences{BudgetLevel: model.BudgetMidRange})
	status, err := eng.Run(context.Background(), sess, "trip to Paris from New York, 06-15 to 06-22, $200/night")

	require.NoError(t, err)
	assert.Equal(t, model.StatusPlanReady, status)
	assert.Equal(t, model.NodeDone, sess.Node)
	assert.Equal(t, "flight options", sess.FlightResult)
	assert.Equal(t, "hotel options", sess.HotelResult)
	assert.Equal(t, "activity options", sess.ActivityResult)
	assert.Contains(t, sess.FinalPlan, "Paris")
}

func TestRun_JoinBarrierWaitsForSlowBranch(t *testing.T) {
	release := make(chan struct{})
	var synthStarted atomic.Bool

	ports := defaultPorts(&scriptedExtractor{deltas: []model.ExtractionDelta{completeDelta()}})
	ports.Flights = &stubFlights{fn: func() (string, error) {
		<-release
		return "late flight options", nil
	}}
	ports.Planner = &stubPlanner{fn: func(req model.TripRequirements, f, h, a string) (string, error) {
		synthStarted.Store(true)
		// The join must guarantee every slot is final by now.
		assert.Equal(t, "late flight options", f)
		assert.Equal(t, "hotel options", h)
		assert.Equal(t, "activity options", a)
		return "plan", nil
	}}

	eng, err := New(ports, repo.NewMemoryCheckpointStore(), model.SessionConfig{})
	require.NoError(t, err)

	sess := model.NewSession("s1", model.Preferences{})
	done := make(chan model.Status, 1)
	go func() {
		status, runErr := eng.Run(context.Background(), sess, "full details")
		assert.NoError(t, runErr)
		done <- status
	}()

	assert.Never(t, synthStarted.Load, 150*time.Millisecond, 10*time.Millisecond,
		"synthesize must not start while a branch is outstanding")

	close(release)
	select {
	case status := <-done:
		assert.Equal(t, model.StatusPlanReady, status)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not finish after branch resolved")
	}
	assert.True(t, synthStarted.Load())
}

func TestRun_BranchFailureIsIsolated(t *testing.T) {
	ports := defaultPorts(&scriptedExtractor{deltas: []model.ExtractionDelta{completeDelta()}})
	ports.Hotels = &stubHotels{fn: func() (string, error) {
		return "", errors.New("hotel api down")
	}}

	var synthRan bool
	ports.Planner = &stubPlanner{fn: func(req model.TripRequirements, f, h, a string) (string, error) {
		synthRan = true
		return "plan: " + f + h + a, nil
	}}

	eng, err := New(ports, repo.NewMemoryCheckpointStore(), model.SessionConfig{})
	require.NoError(t, err)

	sess := model.NewSession("s1", model.Preferences{})
	status, err := eng.Run(context.Background(), sess, "full details")

	require.NoError(t, err)
	assert.Equal(t, model.StatusPlanReady, status)
	assert.True(t, synthRan, "synthesize still runs with a degraded branch")
	assert.Equal(t, "flight options", sess.FlightResult)
	assert.Equal(t, "activity options", sess.ActivityResult)
	assert.Contains(t, sess.HotelResult, "unavailable")
	assert.Contains(t, sess.HotelResult, "hotel api down")
}

func TestRun_ExtractionFailureKeepsRequirements(t *testing.T) {
	extractor := &scriptedExtractor{
		deltas: []model.ExtractionDelta{{}},
		errs:   []error{errors.New("model melted")},
	}
	eng, err := New(defaultPorts(extractor), repo.NewMemoryCheckpointStore(), model.SessionConfig{})
	require.NoError(t, err)

	sess := model.NewSession("s1", model.Preferences{})
	sess.Requirements = model.TripRequirements{Destination: "Paris"}

	status, err := eng.Run(context.Background(), sess, "garbled input")

	require.NoError(t, err, "extraction failure must not crash the workflow")
	assert.Equal(t, model.StatusNeedsMoreInfo, status)
	assert.Equal(t, "Paris", sess.Requirements.Destination, "requirements unchanged on failed turn")
}

func TestRun_CheckpointsEveryTransition(t *testing.T) {
	store := &countingStore{CheckpointStore: repo.NewMemoryCheckpointStore()}
	extractor := &scriptedExtractor{deltas: []model.ExtractionDelta{completeDelta()}}
	eng, err := New(defaultPorts(extractor), store, model.SessionConfig{})
	require.NoError(t, err)

	sess := model.NewSession("s1", model.Preferences{})
	_, err = eng.Run(context.Background(), sess, "full details")
	require.NoError(t, err)

	// gather_info -> recommend, join -> synthesize, synthesize -> done.
	assert.Equal(t, int32(3), store.saves.Load())
}

func TestRun_CheckpointFailureSurfaces(t *testing.T) {
	extractor := &scriptedExtractor{deltas: []model.ExtractionDelta{completeDelta()}}
	eng, err := New(defaultPorts(extractor), &failingStore{repo.NewMemoryCheckpointStore()}, model.SessionConfig{})
	require.NoError(t, err)

	sess := model.NewSession("s1", model.Preferences{})
	_, err = eng.Run(context.Background(), sess, "full details")

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), errx.CheckpointErrorMessage))
}

func TestRun_ResumeLoopReachesCompleteness(t *testing.T) {
	extractor := &scriptedExtractor{deltas: []model.ExtractionDelta{
		{Destination: "Paris", MaxHotelPrice: 200, Response: "Where from, and which dates?"},
		{Origin: "New York", DateLeaving: "06-15", DateReturning: "06-22"},
	}}
	store := repo.NewMemoryCheckpointStore()
	eng, err := New(defaultPorts(extractor), store, model.SessionConfig{})
	require.NoError(t, err)

	sess := model.NewSession("s1", model.Preferences{})
	status, err := eng.Run(context.Background(), sess, "trip to Paris, $200/night hotels")
	require.NoError(t, err)
	require.Equal(t, model.StatusNeedsMoreInfo, status)

	// Resume re-enters extraction with the follow-up utterance.
	sess.Node = model.NodeGatherInfo
	status, err = eng.Run(context.Background(), sess, "from New York, 06-15 to 06-22")
	require.NoError(t, err)

	assert.Equal(t, model.StatusPlanReady, status)
	assert.True(t, sess.Requirements.Complete)
	assert.Equal(t, "New York", sess.Requirements.Origin)
	assert.Equal(t, "Paris", sess.Requirements.Destination)
	assert.Equal(t, "06-15", sess.Requirements.DateLeaving)
	assert.Equal(t, "06-22", sess.Requirements.DateReturning)
	assert.Equal(t, 200, sess.Requirements.MaxHotelPrice)
}

func TestNew_ValidatesPorts(t *testing.T) {
	store := repo.NewMemoryCheckpointStore()

	_, err := New(Ports{}, store, model.SessionConfig{})
	assert.Error(t, err)

	ports := defaultPorts(&scriptedExtractor{})
	ports.Planner = nil
	_, err = New(ports, store, model.SessionConfig{})
	assert.Error(t, err)

	_, err = New(defaultPorts(&scriptedExtractor{}), nil, model.SessionConfig{})
	assert.Error(t, err)
}

func TestRecentTurns_BoundsHistory(t *testing.T) {
	var history []*schema.Message
	for i := 0; i < 30; i++ {
		history = append(history, schema.UserMessage(fmt.Sprintf("turn %d", i)))
	}

	trimmed := recentTurns(history, 5)
	require.Len(t, trimmed, 5)
	assert.Equal(t, "turn 25", trimmed[0].Content)
	assert.Equal(t, "turn 29", trimmed[4].Content)

	// Short histories are copied, not aliased.
	short := recentTurns(history[:2], 5)
	require.Len(t, short, 2)
	short[0] = nil
	assert.NotNil(t, history[0])
}
