// Package providers wraps the third-party travel data APIs the recommenders
// consult: OpenWeatherMap weather, AviationStack flight schedules, and the
// hotels4 RapidAPI hotel search. Each lookup degrades to bundled fallback
// data when the provider is unconfigured or unavailable, so a provider outage
// never fails a recommendation branch.
package providers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/tripplanner-poc/server/internal/planner/model"
)

// ErrNotConfigured signals a provider whose API key is absent; callers fall
// back to bundled data instead of treating it as an outage.
var ErrNotConfigured = errors.New("provider api key not configured")

// Weather is a normalized current-conditions snapshot.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Country     string  `json:"country"`
	City        string  `json:"city"`
}

// Flight is a normalized flight option.
type Flight struct {
	Airline       string  `json:"airline"`
	FlightNumber  string  `json:"flight_number"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	Price         float64 `json:"price,omitempty"`
	Direct        bool    `json:"direct,omitempty"`
	Status        string  `json:"status,omitempty"`
	Preferred     bool    `json:"preferred,omitempty"`
}

// Hotel is a normalized hotel option.
type Hotel struct {
	Name              string   `json:"name"`
	Location          string   `json:"location"`
	PricePerNight     float64  `json:"price_per_night"`
	Currency          string   `json:"currency"`
	Rating            float64  `json:"rating"`
	Amenities         []string `json:"amenities"`
	MatchingAmenities []string `json:"matching_amenities,omitempty"`
	PreferenceScore   int      `json:"preference_score,omitempty"`
}

// Client calls the travel data providers over HTTP.
type Client struct {
	cfg  model.ProviderConfig
	http *http.Client
}

func NewClient(cfg model.ProviderConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// MarkPreferredAirlines flags flights on the user's preferred airlines and
// moves them to the front of the list.
func MarkPreferredAirlines(flights []Flight, preferred []string) []Flight {
	if len(preferred) == 0 {
		return flights
	}
	set := make(map[string]bool, len(preferred))
	for _, a := range preferred {
		set[a] = true
	}
	for i := range flights {
		flights[i].Preferred = set[flights[i].Airline]
	}
	sort.SliceStable(flights, func(i, j int) bool {
		return flights[i].Preferred && !flights[j].Preferred
	})
	return flights
}

// RankHotels filters hotels over the nightly price cap and orders the rest by
// amenity match and budget level.
func RankHotels(hotels []Hotel, maxPrice float64, amenities []string, budget model.BudgetLevel) []Hotel {
	var filtered []Hotel
	for _, h := range hotels {
		if maxPrice > 0 && h.PricePerNight > maxPrice {
			continue
		}
		filtered = append(filtered, h)
	}

	if len(amenities) > 0 {
		wanted := make(map[string]bool, len(amenities))
		for _, a := range amenities {
			wanted[a] = true
		}
		for i := range filtered {
			var matching []string
			for _, a := range filtered[i].Amenities {
				if wanted[a] {
					matching = append(matching, a)
				}
			}
			filtered[i].MatchingAmenities = matching
			filtered[i].PreferenceScore = len(matching)
		}
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].PreferenceScore > filtered[j].PreferenceScore
		})
	}

	switch budget {
	case model.BudgetLow:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].PricePerNight < filtered[j].PricePerNight
		})
	case model.BudgetLuxury:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].PricePerNight > filtered[j].PricePerNight
		})
	}
	// mid-range keeps the preference ordering; the price cap already applied.

	return filtered
}
