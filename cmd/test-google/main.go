package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dpup/routesafe/internal/clients/google"
	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/lib/segment"
)

func main() {
	var (
		apiKey    = flag.String("api-key", "", "Google Maps Platform API key (or set GOOGLE_API_KEY env var)")
		originStr = flag.String("origin", "38.067400,-120.540200", "Origin coordinates (lat,lon)")
		destStr   = flag.String("dest", "38.139117,-120.456111", "Destination coordinates (lat,lon)")
		samples   = flag.Int("samples", 10, "Elevation samples along the route")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fmt.Printf("Google Maps Platform Test Tool\n\n")
		fmt.Printf("Exercises the Routes, Elevation and Geocoding clients.\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s -api-key=YOUR_KEY\n", os.Args[0])
		fmt.Printf("  %s -origin=\"37.7749,-122.4194\" -dest=\"34.0522,-118.2437\"\n", os.Args[0])
		fmt.Printf("  GOOGLE_API_KEY=your_key %s\n", os.Args[0])
		return
	}

	key := *apiKey
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		log.Fatal("Google API key required. Use -api-key flag or GOOGLE_API_KEY env var")
	}

	var origin, destination geo.Point
	if _, err := fmt.Sscanf(*originStr, "%f,%f", &origin.Latitude, &origin.Longitude); err != nil {
		log.Fatalf("Invalid origin coordinates: %v", err)
	}
	if _, err := fmt.Sscanf(*destStr, "%f,%f", &destination.Latitude, &destination.Longitude); err != nil {
		log.Fatalf("Invalid destination coordinates: %v", err)
	}

	fmt.Printf("Google Maps Platform Test\n")
	fmt.Printf("=========================\n")
	fmt.Printf("Origin: %.6f, %.6f\n", origin.Latitude, origin.Longitude)
	fmt.Printf("Destination: %.6f, %.6f\n", destination.Latitude, destination.Longitude)
	fmt.Printf("API Key: %s...\n", key[:min(len(key), 10)])
	fmt.Printf("\n")

	client := google.NewClient(key)
	ctx := context.Background()

	fmt.Printf("Testing ComputeRoutes...\n")
	route, err := client.ComputeRoutes(ctx, origin, destination)
	if err != nil {
		log.Fatalf("ComputeRoutes failed: %v", err)
	}

	fmt.Printf("✅ ComputeRoutes successful!\n")
	fmt.Printf("Duration: %d seconds (%.1f minutes)\n", route.DurationSeconds, float64(route.DurationSeconds)/60)
	fmt.Printf("Distance: %d meters (%.2f km)\n", route.DistanceMeters, float64(route.DistanceMeters)/1000)
	fmt.Printf("Polyline points: %d (geometry length %.0f m)\n", len(route.Points), route.Points.Length())
	fmt.Printf("Speed readings: %d\n", len(route.SpeedReadings))
	for i, reading := range route.SpeedReadings {
		if i >= 5 {
			fmt.Printf("  ... and %d more\n", len(route.SpeedReadings)-5)
			break
		}
		fmt.Printf("  %d-%d: %s\n", reading.StartIndex, reading.EndIndex, reading.SpeedCategory)
	}
	fmt.Printf("\n")

	fmt.Printf("Testing Elevations...\n")
	elevations, err := client.Elevations(ctx, geo.SampleEvenly(route.Points, *samples))
	if err != nil {
		log.Fatalf("Elevations failed: %v", err)
	}

	fmt.Printf("✅ Elevations successful! %d samples\n", len(elevations))
	for _, s := range elevations {
		fmt.Printf("  (%.5f, %.5f): %.1f m\n", s.Location.Latitude, s.Location.Longitude, s.ElevationMeters)
	}
	fmt.Printf("\n")

	fmt.Printf("Testing Terrain...\n")
	for i, seg := range segment.Split(route.Points, segment.DefaultLengthMeters) {
		terrain, err := client.Terrain(ctx, seg)
		if err != nil {
			fmt.Printf("  Segment %d: lookup failed: %v\n", i+1, err)
			continue
		}
		mid := seg.Midpoint()
		fmt.Printf("  Segment %d (%.1f km) at (%.5f, %.5f): %s\n",
			i+1, seg.LengthMeters/1000, mid.Latitude, mid.Longitude, terrain)
	}
}
