package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	logx "github.com/tripplanner-poc/server/pkg/logger"
)

const maxHotelResults = 5

type hotelLocationResponse struct {
	SR []struct {
		GaiaID string `json:"gaiaId"`
	} `json:"sr"`
}

type hotelListResponse struct {
	Data struct {
		PropertySearch struct {
			Properties []struct {
				Name  string `json:"name"`
				Price struct {
					Lead struct {
						Amount       float64 `json:"amount"`
						CurrencyInfo struct {
							Code string `json:"code"`
						} `json:"currencyInfo"`
					} `json:"lead"`
				} `json:"price"`
				Reviews struct {
					Score float64 `json:"score"`
				} `json:"reviews"`
				Neighborhood struct {
					Name string `json:"name"`
				} `json:"neighborhood"`
				Amenities struct {
					TopAmenities struct {
						Items []struct {
							Text string `json:"text"`
						} `json:"items"`
					} `json:"topAmenities"`
				} `json:"amenities"`
			} `json:"properties"`
		} `json:"propertySearch"`
	} `json:"data"`
}

type hotelDate struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

type hotelListRequest struct {
	Destination struct {
		RegionID string `json:"regionId"`
	} `json:"destination"`
	CheckInDate          hotelDate        `json:"checkInDate"`
	CheckOutDate         hotelDate        `json:"checkOutDate"`
	Rooms                []map[string]int `json:"rooms"`
	ResultsStartingIndex int              `json:"resultsStartingIndex"`
	ResultsSize          int              `json:"resultsSize"`
	Sort                 string           `json:"sort"`
}

// SearchHotels looks up hotels in a city for a stay via the hotels4 RapidAPI.
// It is a two-step call: resolve the city to a region id, then list
// properties for the stay dates.
func (c *Client) SearchHotels(ctx context.Context, city, checkIn, checkOut string) ([]Hotel, error) {
	if c.cfg.HotelAPIKey == "" {
		return nil, ErrNotConfigured
	}

	regionID, err := c.resolveRegion(ctx, city)
	if err != nil {
		return nil, err
	}

	payload := hotelListRequest{
		CheckInDate:          parseStayDate(checkIn),
		CheckOutDate:         parseStayDate(checkOut),
		Rooms:                []map[string]int{{"adults": 2}},
		ResultsStartingIndex: 0,
		ResultsSize:          maxHotelResults,
		Sort:                 "PRICE_LOW_TO_HIGH",
	}
	payload.Destination.RegionID = regionID

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal hotel request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/properties/v2/list", c.cfg.HotelBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build hotel request: %w", err)
	}
	c.setHotelHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logx.Warn().Err(err).Str("city", city).Msg("hotel lookup failed")
		return nil, fmt.Errorf("hotel request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hotel api status %d", resp.StatusCode)
	}

	var list hotelListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode hotel response: %w", err)
	}

	props := list.Data.PropertySearch.Properties
	if len(props) == 0 {
		return nil, fmt.Errorf("no hotels found")
	}

	hotels := make([]Hotel, 0, maxHotelResults)
	for _, p := range props {
		if len(hotels) >= maxHotelResults {
			break
		}
		h := Hotel{
			Name:          orDefault(p.Name, "Unknown Hotel"),
			Location:      orDefault(p.Neighborhood.Name, city),
			PricePerNight: p.Price.Lead.Amount,
			Currency:      orDefault(p.Price.Lead.CurrencyInfo.Code, "USD"),
			Rating:        p.Reviews.Score,
		}
		for i, a := range p.Amenities.TopAmenities.Items {
			if i >= 4 {
				break
			}
			if a.Text != "" {
				h.Amenities = append(h.Amenities, a.Text)
			}
		}
		hotels = append(hotels, h)
	}
	return hotels, nil
}

func (c *Client) resolveRegion(ctx context.Context, city string) (string, error) {
	q := url.Values{}
	q.Set("q", city)

	endpoint := fmt.Sprintf("%s/locations/v3/search?%s", c.cfg.HotelBaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build location request: %w", err)
	}
	c.setHotelHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("location request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("location api status %d", resp.StatusCode)
	}

	var body hotelLocationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode location response: %w", err)
	}
	if len(body.SR) == 0 || body.SR[0].GaiaID == "" {
		return "", fmt.Errorf("could not find destination %q", city)
	}
	return body.SR[0].GaiaID, nil
}

func (c *Client) setHotelHeaders(req *http.Request) {
	req.Header.Set("X-RapidAPI-Key", c.cfg.HotelAPIKey)
	host := strings.TrimPrefix(strings.TrimPrefix(c.cfg.HotelBaseURL, "https://"), "http://")
	req.Header.Set("X-RapidAPI-Host", host)
}

// parseStayDate turns an MM-DD token into a concrete date in the current
// year (next year when the date already passed).
func parseStayDate(s string) hotelDate {
	now := time.Now()
	d := hotelDate{Day: 1, Month: 1, Year: now.Year()}

	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) == 2 {
		if m, err := strconv.Atoi(parts[0]); err == nil && m >= 1 && m <= 12 {
			d.Month = m
		}
		if day, err := strconv.Atoi(parts[1]); err == nil && day >= 1 && day <= 31 {
			d.Day = day
		}
	} else if len(parts) == 3 {
		// tolerate full YYYY-MM-DD tokens
		if y, err := strconv.Atoi(parts[0]); err == nil && y > 2000 {
			d.Year = y
		}
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 1 && m <= 12 {
			d.Month = m
		}
		if day, err := strconv.Atoi(parts[2]); err == nil && day >= 1 && day <= 31 {
			d.Day = day
		}
		return d
	}

	if time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).Before(now) {
		d.Year++
	}
	return d
}
