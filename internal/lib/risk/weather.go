package risk

import (
	"context"
	"strings"

	"github.com/dpup/routesafe/internal/lib/geo"
)

// WeatherSample is current weather reported at a location
type WeatherSample struct {
	Location     geo.Point `json:"location"`
	Name         string    `json:"name,omitempty"`
	TemperatureC float64   `json:"temperature_c"`
	Description  string    `json:"description"`
}

// WeatherProvider looks up current weather for a list of points. Partial or
// empty results are expected on failure.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, points []geo.Point) ([]WeatherSample, error)
}

var adverseConditions = []string{
	"rain", "snow", "storm", "fog", "mist", "haze", "dust",
	"thunderstorm", "drizzle", "tornado", "hurricane",
}

const (
	hotTemperatureC  = 40.0
	coldTemperatureC = 5.0
)

// IsAdverse reports whether the sample describes driving-relevant adverse
// weather or extreme temperature
func (w WeatherSample) IsAdverse() bool {
	description := strings.ToLower(w.Description)
	for _, condition := range adverseConditions {
		if strings.Contains(description, condition) {
			return true
		}
	}
	return w.TemperatureC > hotTemperatureC || w.TemperatureC < coldTemperatureC
}
