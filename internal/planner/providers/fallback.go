package providers

import "fmt"

// Bundled fallback data, used whenever a live provider is unconfigured or
// errors. Keeping the shapes identical to the live lookups means the
// recommenders never need to know which source produced the data.

// FallbackFlights returns representative flight options for a route.
func FallbackFlights(origin, destination string) []Flight {
	return []Flight{
		{
			Airline:       "SkyWays",
			FlightNumber:  "SW123",
			DepartureTime: "08:00",
			ArrivalTime:   "10:30",
			Price:         350.00,
			Direct:        true,
			Origin:        origin,
			Destination:   destination,
		},
		{
			Airline:       "OceanAir",
			FlightNumber:  "OA456",
			DepartureTime: "12:45",
			ArrivalTime:   "15:15",
			Price:         275.50,
			Direct:        true,
			Origin:        origin,
			Destination:   destination,
		},
		{
			Airline:       "MountainJet",
			FlightNumber:  "MJ789",
			DepartureTime: "16:30",
			ArrivalTime:   "21:45",
			Price:         225.75,
			Direct:        false,
			Origin:        origin,
			Destination:   destination,
		},
	}
}

// FallbackHotels returns representative hotel options.
func FallbackHotels() []Hotel {
	return []Hotel{
		{
			Name:          "City Center Hotel",
			Location:      "Downtown",
			PricePerNight: 199.99,
			Amenities:     []string{"WiFi", "Pool", "Gym", "Restaurant"},
			Rating:        4.2,
			Currency:      "USD",
		},
		{
			Name:          "Riverside Inn",
			Location:      "Riverside District",
			PricePerNight: 149.50,
			Amenities:     []string{"WiFi", "Free Breakfast", "Parking"},
			Rating:        4.0,
			Currency:      "USD",
		},
		{
			Name:          "Luxury Palace",
			Location:      "Historic District",
			PricePerNight: 349.99,
			Amenities:     []string{"WiFi", "Pool", "Spa", "Fine Dining", "Concierge"},
			Rating:        4.8,
			Currency:      "USD",
		},
	}
}

// typicalConditions holds rough climate expectations per city for the
// fallback weather summary.
var typicalConditions = map[string]struct {
	Sky       string
	TempRange string
}{
	"New York":    {"partly cloudy", "15-25°C"},
	"Los Angeles": {"sunny", "20-30°C"},
	"Chicago":     {"partly cloudy", "10-20°C"},
	"Miami":       {"sunny", "25-35°C"},
	"London":      {"rainy", "10-18°C"},
	"Paris":       {"partly cloudy", "12-22°C"},
	"Tokyo":       {"partly cloudy", "15-25°C"},
	"Sydney":      {"sunny", "18-28°C"},
	"Berlin":      {"rainy", "8-18°C"},
	"Rome":        {"sunny", "16-26°C"},
	"Barcelona":   {"sunny", "18-28°C"},
	"Amsterdam":   {"rainy", "8-16°C"},
	"Bangkok":     {"sunny", "26-35°C"},
	"Mumbai":      {"sunny", "24-32°C"},
	"Dubai":       {"sunny", "25-40°C"},
}

// FallbackWeatherSummary returns a textual forecast estimate for a city.
func FallbackWeatherSummary(city, date string) string {
	if c, ok := typicalConditions[city]; ok {
		return fmt.Sprintf("The weather in %s on %s is forecasted to be %s with temperatures around %s.",
			city, date, c.Sky, c.TempRange)
	}
	return fmt.Sprintf("Weather forecast for %s is not available, but you can expect typical weather for the region and season.", city)
}

// WeatherSummary renders a live weather snapshot as prompt-ready text.
func WeatherSummary(w Weather, city, date string) string {
	return fmt.Sprintf("The weather in %s, %s on %s is %s with temperature %.1f°C, humidity %d%%, and wind speed %.1f m/s.",
		city, w.Country, date, w.Description, w.Temperature, w.Humidity, w.WindSpeed)
}
