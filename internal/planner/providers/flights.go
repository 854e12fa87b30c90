package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	logx "github.com/tripplanner-poc/server/pkg/logger"
)

const maxFlightResults = 5

type aviationStackResponse struct {
	Data []struct {
		FlightStatus string `json:"flight_status"`
		Departure    struct {
			Airport   string `json:"airport"`
			Scheduled string `json:"scheduled"`
		} `json:"departure"`
		Arrival struct {
			Airport   string `json:"airport"`
			Scheduled string `json:"scheduled"`
		} `json:"arrival"`
		Airline struct {
			Name string `json:"name"`
		} `json:"airline"`
		Flight struct {
			Number string `json:"number"`
		} `json:"flight"`
	} `json:"data"`
}

// SearchFlights looks up scheduled flights between two airports on a date via
// AviationStack.
func (c *Client) SearchFlights(ctx context.Context, origin, destination, date string) ([]Flight, error) {
	if c.cfg.FlightAPIKey == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("access_key", c.cfg.FlightAPIKey)
	q.Set("dep_iata", origin)
	q.Set("arr_iata", destination)
	q.Set("flight_date", date)
	q.Set("limit", "10")

	endpoint := fmt.Sprintf("%s/flights?%s", c.cfg.FlightBaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build flight request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logx.Warn().Err(err).Str("origin", origin).Str("destination", destination).Msg("flight lookup failed")
		return nil, fmt.Errorf("flight request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight api status %d", resp.StatusCode)
	}

	var body aviationStackResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode flight response: %w", err)
	}
	if len(body.Data) == 0 {
		return nil, fmt.Errorf("no flight data available")
	}

	flights := make([]Flight, 0, maxFlightResults)
	for _, f := range body.Data {
		if len(flights) >= maxFlightResults {
			break
		}
		flights = append(flights, Flight{
			Airline:       orDefault(f.Airline.Name, "Unknown"),
			FlightNumber:  orDefault(f.Flight.Number, "N/A"),
			DepartureTime: orDefault(f.Departure.Scheduled, "N/A"),
			ArrivalTime:   orDefault(f.Arrival.Scheduled, "N/A"),
			Origin:        orDefault(f.Departure.Airport, origin),
			Destination:   orDefault(f.Arrival.Airport, destination),
			Status:        orDefault(f.FlightStatus, "N/A"),
		})
	}
	return flights, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
