package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	errx "github.com/tripplanner-poc/server/internal/core/error"
	"github.com/tripplanner-poc/server/internal/planner/engine"
	"github.com/tripplanner-poc/server/internal/planner/model"
	logx "github.com/tripplanner-poc/server/pkg/logger"
)

// Manager is the session-facing surface consumed by a presentation layer. It
// owns session identity and the resume protocol; the engine owns everything
// between two suspend points.
type Manager struct {
	engine *engine.Engine
	store  model.CheckpointStore
}

func NewManager(eng *engine.Engine, store model.CheckpointStore) (*Manager, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("checkpoint store is nil")
	}
	return &Manager{engine: eng, store: store}, nil
}

// StartSession creates a new session from the first user utterance and runs
// the workflow until it suspends or completes. Preferences are fixed for the
// session's lifetime.
func (m *Manager) StartSession(ctx context.Context, utterance string, prefs model.Preferences) (string, model.Status, error) {
	sess := model.NewSession(uuid.NewString(), prefs)

	logx.Info().
		Str("session_id", sess.ID).
		Str("budget_level", string(prefs.BudgetLevel)).
		Msg("Starting planning session")

	status, err := m.engine.Run(ctx, sess, utterance)
	if err != nil {
		return "", "", err
	}
	return sess.ID, status, nil
}

// ResumeSession re-enters a suspended session with a new user utterance.
// Resumption re-enters at the gather_info node, not at the suspend node: the
// new utterance is fed through extraction with the prior history as context.
// A session interrupted mid-plan (process restart) re-dispatches from its
// last checkpointed node instead.
func (m *Manager) ResumeSession(ctx context.Context, sessionID, utterance string) (model.Status, error) {
	sess, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}

	switch sess.Node {
	case model.NodeDone:
		// Finished sessions stay readable; resuming one is a no-op.
		return model.StatusPlanReady, nil
	case model.NodeAwaitInput:
		sess.Node = model.NodeGatherInfo
	}

	logx.Info().
		Str("session_id", sess.ID).
		Str("node", sess.Node).
		Msg("Resuming planning session")

	return m.engine.Run(ctx, sess, utterance)
}

// GetPlan returns the final plan once synthesis has finished.
func (m *Manager) GetPlan(ctx context.Context, sessionID string) (string, error) {
	sess, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess.Node != model.NodeDone || sess.FinalPlan == "" {
		return "", errx.New(errx.ErrPlanNotReady, http.StatusConflict, errx.PlanNotReadyMessage)
	}
	return sess.FinalPlan, nil
}

// GetStatus reports the externally visible status of a session.
func (m *Manager) GetStatus(ctx context.Context, sessionID string) (model.Status, error) {
	sess, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return sess.Status(), nil
}

// Discard removes a session's checkpoint. This is the only destruction path;
// normal completion leaves the session queryable.
func (m *Manager) Discard(ctx context.Context, sessionID string) error {
	logx.Info().Str("session_id", sessionID).Msg("Discarding planning session")
	return m.store.Delete(ctx, sessionID)
}
