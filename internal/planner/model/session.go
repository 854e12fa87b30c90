package model

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// Graph node names. The engine advances Session.Node through these; the value
// is persisted with the checkpoint so a restart resumes from the right step.
const (
	NodeGatherInfo = "gather_info"
	NodeAwaitInput = "await_input"
	NodeRecommend  = "recommend"
	NodeSynthesize = "synthesize"
	NodeDone       = "done"
)

// Status is the session state reported to the presentation layer.
type Status string

const (
	StatusNeedsMoreInfo Status = "needs_more_info"
	StatusInProgress    Status = "in_progress"
	StatusPlanReady     Status = "plan_ready"
)

// BudgetLevel is the user's hotel budget preference.
type BudgetLevel string

const (
	BudgetLow      BudgetLevel = "budget"
	BudgetMidRange BudgetLevel = "mid-range"
	BudgetLuxury   BudgetLevel = "luxury"
)

// ParseBudgetLevel normalises free-form input into a known budget level.
// Unknown values fall back to mid-range.
func ParseBudgetLevel(v string) BudgetLevel {
	switch BudgetLevel(v) {
	case BudgetLow:
		return BudgetLow
	case BudgetLuxury:
		return BudgetLuxury
	default:
		return BudgetMidRange
	}
}

// Preferences are supplied once at session start and stay immutable for the
// session's lifetime.
type Preferences struct {
	PreferredAirlines []string    `json:"preferred_airlines"`
	HotelAmenities    []string    `json:"hotel_amenities"`
	BudgetLevel       BudgetLevel `json:"budget_level"`
}

// Session is a durable, identified execution of the planning workflow. It is
// the unit of checkpointing: the whole struct is persisted after every engine
// transition, keyed by ID.
//
// Concurrency model:
//   - Sequential steps mutate the session serially.
//   - The three recommendation branches each write only their own result slot,
//     so the fan-out phase needs no locking.
//   - Synthesize reads all three slots only after the engine's join confirms
//     every branch finished.
type Session struct {
	ID             string            `json:"id"`
	Node           string            `json:"node"`
	Requirements   TripRequirements  `json:"requirements"`
	Preferences    Preferences       `json:"preferences"`
	FlightResult   string            `json:"flight_result,omitempty"`
	HotelResult    string            `json:"hotel_result,omitempty"`
	ActivityResult string            `json:"activity_result,omitempty"`
	FinalPlan      string            `json:"final_plan,omitempty"`
	Messages       []*schema.Message `json:"messages"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewSession creates an empty session positioned at the initial node.
func NewSession(id string, prefs Preferences) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:          id,
		Node:        NodeGatherInfo,
		Preferences: prefs,
		Messages:    []*schema.Message{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AppendMessages records turns in the append-only message history.
func (s *Session) AppendMessages(msgs ...*schema.Message) {
	for _, m := range msgs {
		if m == nil || m.Content == "" {
			continue
		}
		s.Messages = append(s.Messages, m)
	}
}

// Status derives the externally visible status from the node pointer.
func (s *Session) Status() Status {
	switch s.Node {
	case NodeAwaitInput:
		return StatusNeedsMoreInfo
	case NodeDone:
		return StatusPlanReady
	default:
		return StatusInProgress
	}
}
