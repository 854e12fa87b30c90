package parsers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	errx "github.com/tripplanner-poc/server/internal/core/error"
	"github.com/tripplanner-poc/server/internal/planner/model"
	logx "github.com/tripplanner-poc/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 64 * 1024 // 64KB
	maxFieldLen   = 512
	maxErrSnippet = 200
)

// rawExtraction tolerates the model emitting max_hotel_price as either a
// number or a quoted string.
type rawExtraction struct {
	Response        string          `json:"response"`
	Destination     string          `json:"destination"`
	Origin          string          `json:"origin"`
	DateLeaving     string          `json:"date_leaving"`
	DateReturning   string          `json:"date_returning"`
	MaxHotelPrice   json.RawMessage `json:"max_hotel_price"`
	AllDetailsGiven bool            `json:"all_details_given"`
}

// ParseExtraction parses the extraction model's JSON output into a delta.
// The model occasionally wraps JSON in markdown fences or surrounds it with
// prose; both are stripped before decoding.
func ParseExtraction(content string) (delta *model.ExtractionDelta, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "extraction_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("extraction parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
			delta = nil
		}
	}()

	if len(content) > maxContentLen {
		return nil, fmt.Errorf("extraction output too large: %d bytes", len(content))
	}
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("extraction output invalid utf8")
	}

	body, err := extractJSONObject(content)
	if err != nil {
		return nil, fmt.Errorf("extraction output: %w (snippet: %s)", err, snippet(content))
	}

	var raw rawExtraction
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("decode extraction output: %w (snippet: %s)", err, snippet(body))
	}

	price := parsePrice(raw.MaxHotelPrice)

	return &model.ExtractionDelta{
		Response:        clampField(raw.Response, 2048),
		Origin:          clampField(raw.Origin, maxFieldLen),
		Destination:     clampField(raw.Destination, maxFieldLen),
		DateLeaving:     clampField(raw.DateLeaving, maxFieldLen),
		DateReturning:   clampField(raw.DateReturning, maxFieldLen),
		MaxHotelPrice:   price,
		ClaimedComplete: raw.AllDetailsGiven,
	}, nil
}

// parsePrice accepts 200, "200", "200.0", and "$200"-style values. Junk and
// non-positive values resolve to zero, which MergeExtraction treats as unset.
func parsePrice(raw json.RawMessage) int {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return int(f)
	}
	return 0
}

// extractJSONObject returns the first top-level {...} object in s, stripping
// markdown code fences first.
func extractJSONObject(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no json object found")
	}
	return s[start : end+1], nil
}

func clampField(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) > max {
		return s[:max]
	}
	return s
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrSnippet {
		return s[:maxErrSnippet] + "..."
	}
	return s
}
