package model

// ================ Config ================
type SessionConfig struct {
	TTL        string `envconfig:"SESSION_TTL" default:"24h"`
	Extraction struct {
		MaxTurns int `envconfig:"SESSION_EXTRACTION_MAX_TURNS" default:"10"`
	}
}

type ExtractionModelConfig struct {
	Model       string  `envconfig:"EXTRACTION_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"EXTRACTION_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"EXTRACTION_TEMPERATURE" default:"0.1"`
}

type RecommendationModelConfig struct {
	Model       string  `envconfig:"RECOMMENDATION_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RECOMMENDATION_MAX_TOKENS" default:"3000"`
	Temperature float32 `envconfig:"RECOMMENDATION_TEMPERATURE" default:"0.4"`
	// RequestsPerMinute caps dispatch to the recommendation model across all
	// branches. Free-tier Gemini allows 3 RPM, hence the conservative default.
	RequestsPerMinute int `envconfig:"RECOMMENDATION_RPM" default:"3"`
}

type ProviderConfig struct {
	WeatherAPIKey  string `envconfig:"WEATHER_API_KEY"`
	FlightAPIKey   string `envconfig:"FLIGHT_API_KEY"`
	HotelAPIKey    string `envconfig:"HOTEL_API_KEY"`
	WeatherBaseURL string `envconfig:"WEATHER_BASE_URL" default:"http://api.openweathermap.org/data/2.5"`
	FlightBaseURL  string `envconfig:"FLIGHT_BASE_URL" default:"http://api.aviationstack.com/v1"`
	HotelBaseURL   string `envconfig:"HOTEL_BASE_URL" default:"https://hotels4.p.rapidapi.com"`
	TimeoutSeconds int    `envconfig:"PROVIDER_TIMEOUT_SECONDS" default:"10"`
}
