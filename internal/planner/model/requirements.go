package model

import "strings"

// TripRequirements is the structured record assembled across extraction turns.
// Complete is derived: it is recomputed on every merge and never taken from
// the extractor, which is unreliable about self-reporting completeness.
type TripRequirements struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DateLeaving   string `json:"date_leaving"`   // MM-DD
	DateReturning string `json:"date_returning"` // MM-DD
	MaxHotelPrice int    `json:"max_hotel_price"`
	Complete      bool   `json:"complete"`
}

// ExtractionDelta is the structured output of a single extraction turn.
// Any field the extractor could not determine is left at its zero value and
// must not clobber a previously gathered one.
type ExtractionDelta struct {
	// Response is the follow-up question to show the user when details are
	// still missing. Empty once the extractor considers the trip described.
	Response      string `json:"response"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DateLeaving   string `json:"date_leaving"`
	DateReturning string `json:"date_returning"`
	MaxHotelPrice int    `json:"max_hotel_price"`
	// ClaimedComplete is what the extractor believes. It is recorded for
	// logging only; MergeExtraction discards it.
	ClaimedComplete bool `json:"all_details_given"`
}

// MergeExtraction overlays the non-empty fields of delta onto current and
// recomputes Complete. Fields the new extraction left blank survive from the
// previous turns.
func MergeExtraction(current TripRequirements, delta ExtractionDelta) TripRequirements {
	merged := current
	if v := strings.TrimSpace(delta.Origin); v != "" {
		merged.Origin = v
	}
	if v := strings.TrimSpace(delta.Destination); v != "" {
		merged.Destination = v
	}
	if v := strings.TrimSpace(delta.DateLeaving); v != "" {
		merged.DateLeaving = v
	}
	if v := strings.TrimSpace(delta.DateReturning); v != "" {
		merged.DateReturning = v
	}
	if delta.MaxHotelPrice > 0 {
		merged.MaxHotelPrice = delta.MaxHotelPrice
	}
	merged.Complete = IsComplete(merged)
	return merged
}

// IsComplete reports whether all five required fields carry usable values.
// A zero hotel price counts as missing: zero is not a meaningful nightly price.
func IsComplete(r TripRequirements) bool {
	return strings.TrimSpace(r.Origin) != "" &&
		strings.TrimSpace(r.Destination) != "" &&
		strings.TrimSpace(r.DateLeaving) != "" &&
		strings.TrimSpace(r.DateReturning) != "" &&
		r.MaxHotelPrice > 0
}

// MissingFields lists the required fields that still lack values, in a stable
// order suitable for re-prompting the user.
func MissingFields(r TripRequirements) []string {
	var missing []string
	if strings.TrimSpace(r.Origin) == "" {
		missing = append(missing, "origin")
	}
	if strings.TrimSpace(r.Destination) == "" {
		missing = append(missing, "destination")
	}
	if strings.TrimSpace(r.DateLeaving) == "" {
		missing = append(missing, "date leaving")
	}
	if strings.TrimSpace(r.DateReturning) == "" {
		missing = append(missing, "date returning")
	}
	if r.MaxHotelPrice <= 0 {
		missing = append(missing, "max hotel price")
	}
	return missing
}
