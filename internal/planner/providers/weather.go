package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	logx "github.com/tripplanner-poc/server/pkg/logger"
)

type openWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Name string `json:"name"`
}

// CurrentWeather looks up current conditions for a city via OpenWeatherMap.
func (c *Client) CurrentWeather(ctx context.Context, city string) (Weather, error) {
	if c.cfg.WeatherAPIKey == "" {
		return Weather{}, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.cfg.WeatherAPIKey)
	q.Set("units", "metric")

	endpoint := fmt.Sprintf("%s/weather?%s", c.cfg.WeatherBaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Weather{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logx.Warn().Err(err).Str("city", city).Msg("weather lookup failed")
		return Weather{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Weather{}, fmt.Errorf("weather api status %d", resp.StatusCode)
	}

	var body openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Weather{}, fmt.Errorf("decode weather response: %w", err)
	}

	w := Weather{
		Temperature: body.Main.Temp,
		Humidity:    body.Main.Humidity,
		WindSpeed:   body.Wind.Speed,
		Country:     body.Sys.Country,
		City:        body.Name,
	}
	if len(body.Weather) > 0 {
		w.Description = body.Weather[0].Description
	}
	return w, nil
}
