package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dpup/routesafe/internal/clients/weather"
	"github.com/dpup/routesafe/internal/lib/geo"
)

func main() {
	var (
		apiKey = flag.String("api-key", "", "OpenWeatherMap API key (or set OPENWEATHER_API_KEY env var)")
		lat    = flag.Float64("lat", 38.139117, "Latitude for weather lookup")
		lon    = flag.Float64("lon", -120.456111, "Longitude for weather lookup")
		name   = flag.String("name", "Murphys, CA", "Location name for display")
		help   = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fmt.Printf("OpenWeatherMap API Test Tool\n\n")
		fmt.Printf("Tests the OpenWeatherMap API client implementation.\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s -api-key=YOUR_KEY\n", os.Args[0])
		fmt.Printf("  %s -lat=37.7749 -lon=-122.4194 -name=\"San Francisco, CA\"\n", os.Args[0])
		fmt.Printf("  OPENWEATHER_API_KEY=your_key %s\n", os.Args[0])
		return
	}

	key := *apiKey
	if key == "" {
		key = os.Getenv("OPENWEATHER_API_KEY")
	}
	if key == "" {
		log.Fatal("OpenWeatherMap API key required. Use -api-key flag or OPENWEATHER_API_KEY env var")
	}

	fmt.Printf("OpenWeatherMap API Test\n")
	fmt.Printf("=======================\n")
	fmt.Printf("Location: %s\n", *name)
	fmt.Printf("Coordinates: %.6f, %.6f\n", *lat, *lon)
	fmt.Printf("API Key: %s...\n", key[:min(len(key), 10)])
	fmt.Printf("\n")

	client := weather.NewClient(key)
	ctx := context.Background()

	fmt.Printf("Testing GetCurrentWeather...\n")
	current, err := client.GetCurrentWeather(ctx, geo.Point{Latitude: *lat, Longitude: *lon})
	if err != nil {
		log.Fatalf("GetCurrentWeather failed: %v", err)
	}

	fmt.Printf("✅ GetCurrentWeather successful!\n")
	fmt.Printf("Station: %s\n", current.Name)
	fmt.Printf("Temperature: %.1f°C\n", current.TemperatureC)
	fmt.Printf("Description: %s\n", current.Description)
	fmt.Printf("Adverse for driving: %t\n", current.IsAdverse())
	fmt.Printf("\n")

	fmt.Printf("Testing CurrentWeather along Highway 4...\n")
	locations := []struct {
		Name  string
		Point geo.Point
	}{
		{"Murphys, CA", geo.Point{Latitude: 38.139117, Longitude: -120.456111}},
		{"Arnold, CA", geo.Point{Latitude: 38.265006, Longitude: -120.333654}},
		{"Bear Valley, CA", geo.Point{Latitude: 38.461045, Longitude: -120.042368}},
	}

	points := make([]geo.Point, len(locations))
	for i, loc := range locations {
		points[i] = loc.Point
	}

	samples, err := client.CurrentWeather(ctx, points)
	if err != nil {
		fmt.Printf("  ❌ Some lookups failed: %v\n", err)
	}
	for _, sample := range samples {
		fmt.Printf("  ✅ %s (%.4f, %.4f): %.1f°C, %s (adverse: %t)\n",
			sample.Name, sample.Location.Latitude, sample.Location.Longitude,
			sample.TemperatureC, sample.Description, sample.IsAdverse())
	}

	fmt.Printf("\n🎉 All OpenWeatherMap API tests completed!\n")
}
