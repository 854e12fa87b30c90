package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	errx "github.com/tripplanner-poc/server/internal/core/error"
	"github.com/tripplanner-poc/server/internal/planner/model"
	logx "github.com/tripplanner-poc/server/pkg/logger"
)

// Ports bundles the external capabilities the engine orchestrates. All of
// them are constructed once at process start and injected here; the engine
// never builds or caches adapters itself.
type Ports struct {
	Extractor  model.InfoExtractor
	Flights    model.FlightRecommender
	Hotels     model.HotelRecommender
	Activities model.ActivityRecommender
	Planner    model.PlanSummarizer
}

// Engine drives a session through the planning graph:
//
//	gather_info -> await_input (suspend) | {recommend_flights, recommend_hotels,
//	recommend_activities} -> synthesize -> done
//
// Suspension is an ordinary return value (StatusNeedsMoreInfo), never a
// control-flow signal. The full session is checkpointed after every
// transition so a restart resumes from the last persisted node.
type Engine struct {
	ports              Ports
	store              model.CheckpointStore
	extractionMaxTurns int
}

// New validates the injected dependencies and returns a ready engine.
func New(ports Ports, store model.CheckpointStore, cfg model.SessionConfig) (*Engine, error) {
	if ports.Extractor == nil {
		return nil, fmt.Errorf("extractor port is nil")
	}
	if ports.Flights == nil || ports.Hotels == nil || ports.Activities == nil {
		return nil, fmt.Errorf("recommendation ports are not properly initialized")
	}
	if ports.Planner == nil {
		return nil, fmt.Errorf("planner port is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("checkpoint store is nil")
	}

	maxTurns := cfg.Extraction.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultExtractionMaxTurns
	}

	return &Engine{
		ports:              ports,
		store:              store,
		extractionMaxTurns: maxTurns,
	}, nil
}

// Run advances the session from its current node until it either suspends
// waiting for user input or reaches the terminal node. The utterance is
// consumed by the first gather_info step; subsequent steps in the same run
// never see it.
//
// Branch-local port failures are absorbed into session state as degraded
// content. Only checkpoint write failures propagate as errors, with no state
// assumed persisted for the failed transition.
func (e *Engine) Run(ctx context.Context, sess *model.Session, utterance string) (model.Status, error) {
	if sess == nil {
		return "", fmt.Errorf("session is nil")
	}

	for {
		logx.Debug().
			Str("session_id", sess.ID).
			Str("node", sess.Node).
			Msg("Executing node")

		switch sess.Node {
		case model.NodeGatherInfo:
			if err := e.gatherInfo(ctx, sess, utterance); err != nil {
				return "", err
			}
			utterance = ""
		case model.NodeAwaitInput:
			// Suspend point: state is already checkpointed, control goes back
			// to the caller until it supplies the next utterance.
			return model.StatusNeedsMoreInfo, nil
		case model.NodeRecommend:
			if err := e.recommend(ctx, sess); err != nil {
				return "", err
			}
		case model.NodeSynthesize:
			if err := e.synthesize(ctx, sess); err != nil {
				return "", err
			}
		case model.NodeDone:
			return model.StatusPlanReady, nil
		default:
			return "", fmt.Errorf("unknown graph node %q for session %s", sess.Node, sess.ID)
		}
	}
}

// gatherInfo runs one extraction turn, merges the delta into the requirements
// record, and routes to either the suspend node or the fan-out node.
func (e *Engine) gatherInfo(ctx context.Context, sess *model.Session, utterance string) error {
	delta, err := e.ports.Extractor.Extract(ctx, utterance, recentTurns(sess.Messages, e.extractionMaxTurns))
	if err != nil {
		// Extraction failure: the turn produced no new fields. Keep the
		// requirements unchanged and re-prompt instead of crashing.
		logx.Warn().
			Str("session_id", sess.ID).
			Err(err).
			Msg("Extraction failed; treating turn as empty")
		delta = model.ExtractionDelta{Response: extractionRetryPrompt}
	}

	sess.Requirements = model.MergeExtraction(sess.Requirements, delta)

	if delta.ClaimedComplete != sess.Requirements.Complete {
		logx.Debug().
			Str("session_id", sess.ID).
			Bool("claimed", delta.ClaimedComplete).
			Bool("recomputed", sess.Requirements.Complete).
			Msg("Extractor completeness claim overridden")
	}

	sess.AppendMessages(schema.UserMessage(utterance))

	if sess.Requirements.Complete {
		sess.AppendMessages(schema.AssistantMessage(delta.Response, nil))
		sess.Node = model.NodeRecommend
		logx.Debug().
			Str("session_id", sess.ID).
			Str("destination", sess.Requirements.Destination).
			Msg("Requirements complete - fanning out to recommendation branches")
		return e.checkpoint(ctx, sess)
	}

	reply := delta.Response
	if reply == "" {
		reply = missingFieldsPrompt(sess.Requirements)
	}
	sess.AppendMessages(schema.AssistantMessage(reply, nil))
	sess.Node = model.NodeAwaitInput
	logx.Debug().
		Str("session_id", sess.ID).
		Strs("missing", model.MissingFields(sess.Requirements)).
		Msg("Requirements incomplete - suspending for more input")
	return e.checkpoint(ctx, sess)
}

// recommend dispatches the three recommendation branches concurrently and
// joins on all of them. Each branch writes only its own result slot, so the
// fan-out phase needs no locking. A failed branch records a labeled fallback
// text rather than leaving its slot empty, which keeps the join precondition
// satisfiable and never aborts the sibling branches.
func (e *Engine) recommend(ctx context.Context, sess *model.Session) error {
	req := sess.Requirements
	prefs := sess.Preferences

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		sess.FlightResult = e.runBranch(ctx, sess.ID, "flight", func() (string, error) {
			return e.ports.Flights.RecommendFlights(ctx, req, prefs.PreferredAirlines)
		})
	}()
	go func() {
		defer wg.Done()
		sess.HotelResult = e.runBranch(ctx, sess.ID, "hotel", func() (string, error) {
			return e.ports.Hotels.RecommendHotels(ctx, req, prefs.HotelAmenities, prefs.BudgetLevel)
		})
	}()
	go func() {
		defer wg.Done()
		sess.ActivityResult = e.runBranch(ctx, sess.ID, "activity", func() (string, error) {
			return e.ports.Activities.RecommendActivities(ctx, req)
		})
	}()

	// Join barrier: synthesize must never observe a partial result set.
	wg.Wait()

	sess.Node = model.NodeSynthesize
	return e.checkpoint(ctx, sess)
}

// runBranch invokes one recommendation port and converts any failure into a
// clearly labeled fallback string owned by that branch's slot.
func (e *Engine) runBranch(ctx context.Context, sessionID, branch string, call func() (string, error)) string {
	started := time.Now()
	text, err := call()
	if err != nil {
		logx.Warn().
			Str("session_id", sessionID).
			Str("branch", branch).
			Dur("elapsed", time.Since(started)).
			Err(err).
			Msg("Recommendation branch failed; recording fallback text")
		return fmt.Sprintf("%s recommendations are unavailable for this plan: %v", branch, err)
	}
	if text == "" {
		logx.Warn().
			Str("session_id", sessionID).
			Str("branch", branch).
			Msg("Recommendation branch returned empty text; recording fallback")
		return fmt.Sprintf("%s recommendations are unavailable for this plan: empty response", branch)
	}
	logx.Debug().
		Str("session_id", sessionID).
		Str("branch", branch).
		Dur("elapsed", time.Since(started)).
		Msg("Recommendation branch complete")
	return text
}

// synthesize combines the three branch results into the final plan. The
// summarizer reads the slots by name; branch completion order is irrelevant
// by the time this step runs.
func (e *Engine) synthesize(ctx context.Context, sess *model.Session) error {
	plan, err := e.ports.Planner.Summarize(ctx, sess.Requirements, sess.FlightResult, sess.HotelResult, sess.ActivityResult)
	if err != nil || plan == "" {
		// Degrade rather than abort: the gathered recommendations are still
		// worth returning even when the summary call fails.
		logx.Warn().
			Str("session_id", sess.ID).
			Err(err).
			Msg("Plan synthesis failed; assembling fallback plan from branch results")
		plan = fallbackPlan(sess)
	}

	sess.FinalPlan = plan
	sess.AppendMessages(schema.AssistantMessage(plan, nil))
	sess.Node = model.NodeDone
	return e.checkpoint(ctx, sess)
}

// checkpoint durably persists the session after a transition. A write failure
// is fatal for the step: the engine must not report success for a transition
// whose state may be lost.
func (e *Engine) checkpoint(ctx context.Context, sess *model.Session) error {
	sess.UpdatedAt = time.Now().UTC()
	if err := e.store.Save(ctx, sess); err != nil {
		logx.Error().
			Str("session_id", sess.ID).
			Str("node", sess.Node).
			Err(err).
			Msg("Checkpoint write failed")
		return errx.WrapCheckpoint(err)
	}
	return nil
}
