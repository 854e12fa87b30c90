package engine

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/tripplanner-poc/server/internal/planner/model"
)

const DefaultExtractionMaxTurns = 10

const extractionRetryPrompt = "Sorry, I couldn't process that. Could you repeat your trip details?"

// recentTurns returns the tail of the message history replayed to the
// extractor, bounded to keep the context window small.
func recentTurns(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 {
		maxTurns = DefaultExtractionMaxTurns
	}
	if len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}

// missingFieldsPrompt builds a re-prompt when the extractor failed to supply
// its own follow-up question.
func missingFieldsPrompt(req model.TripRequirements) string {
	missing := model.MissingFields(req)
	if len(missing) == 0 {
		return "Could you tell me more about your trip?"
	}
	return fmt.Sprintf("To plan your trip I still need: %s.", strings.Join(missing, ", "))
}

// fallbackPlan assembles a readable plan directly from the branch results
// when the summary port is unavailable.
func fallbackPlan(sess *model.Session) string {
	req := sess.Requirements
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Trip plan: %s to %s, leaving %s, returning %s.\n\n",
		req.Origin, req.Destination, req.DateLeaving, req.DateReturning))
	b.WriteString("Flights:\n")
	b.WriteString(sess.FlightResult)
	b.WriteString("\n\nHotels:\n")
	b.WriteString(sess.HotelResult)
	b.WriteString("\n\nActivities:\n")
	b.WriteString(sess.ActivityResult)
	return b.String()
}
