package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/lib/segment"
	"github.com/dpup/routesafe/internal/lib/turns"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "point-distance":
		handlePointDistance()
	case "turn-angle":
		handleTurnAngle()
	case "decode-polyline":
		handleDecodePolyline()
	case "detect-turns":
		handleDetectTurns()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handlePointDistance() {
	fs := flag.NewFlagSet("point-distance", flag.ExitOnError)
	lat1 := fs.Float64("lat1", 0, "Latitude of first point")
	lng1 := fs.Float64("lng1", 0, "Longitude of first point")
	lat2 := fs.Float64("lat2", 0, "Latitude of second point")
	lng2 := fs.Float64("lng2", 0, "Longitude of second point")

	_ = fs.Parse(os.Args[2:])

	if *lat1 == 0 && *lng1 == 0 && *lat2 == 0 && *lng2 == 0 {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils point-distance --lat1 38.0675 --lng1 -120.5436 --lat2 38.1391 --lng2 -120.4561")
		fmt.Println("  (Distance between Angels Camp and Murphys)")
		os.Exit(1)
	}

	p1, err := geo.NewPoint(*lat1, *lng1)
	if err != nil {
		log.Fatalf("Invalid first point: %v", err)
	}
	p2, err := geo.NewPoint(*lat2, *lng2)
	if err != nil {
		log.Fatalf("Invalid second point: %v", err)
	}

	distance := geo.Distance(p1, p2)

	fmt.Printf("Distance between points:\n")
	fmt.Printf("  Point 1: (%.6f, %.6f)\n", p1.Latitude, p1.Longitude)
	fmt.Printf("  Point 2: (%.6f, %.6f)\n", p2.Latitude, p2.Longitude)
	fmt.Printf("  Distance: %.2f meters (%.2f km, %.2f miles)\n",
		distance, distance/1000, distance*0.000621371)
	fmt.Printf("  Bearing: %.1f°\n", geo.Bearing(p1, p2))
}

func handleTurnAngle() {
	fs := flag.NewFlagSet("turn-angle", flag.ExitOnError)
	coords := fs.String("points", "", "Three points as \"lat,lng;lat,lng;lat,lng\"")

	_ = fs.Parse(os.Args[2:])

	if *coords == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils turn-angle --points \"38.0675,-120.5436;38.0700,-120.5400;38.0690,-120.5350\"")
		os.Exit(1)
	}

	points, err := parseCoordinatePairs(*coords)
	if err != nil {
		log.Fatalf("Error parsing points: %v", err)
	}
	if len(points) != 3 {
		log.Fatalf("Expected exactly 3 points, got %d", len(points))
	}

	angle := geo.TurnAngle(points[0], points[1], points[2])
	turn := turns.SharpTurn{Location: points[1], AngleDegrees: angle}

	fmt.Printf("Turn at (%.6f, %.6f):\n", points[1].Latitude, points[1].Longitude)
	fmt.Printf("  Inbound bearing: %.1f°\n", geo.Bearing(points[0], points[1]))
	fmt.Printf("  Outbound bearing: %.1f°\n", geo.Bearing(points[1], points[2]))
	fmt.Printf("  Angle: %.1f°\n", angle)
	fmt.Printf("  Sharp (>= %.0f°): %t\n", turns.DefaultThreshold, angle >= turns.DefaultThreshold)
	fmt.Printf("  Blind spot (> %.0f°): %t\n", turns.BlindSpotThreshold, turn.IsBlindSpot())
}

func handleDecodePolyline() {
	fs := flag.NewFlagSet("decode-polyline", flag.ExitOnError)
	polylineStr := fs.String("polyline", "", "Encoded polyline string to decode")
	verbose := fs.Bool("verbose", false, "Show all decoded points")

	_ = fs.Parse(os.Args[2:])

	if *polylineStr == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils decode-polyline --polyline \"_p~iF~ps|U_ulLnnqC_mqNvxq`@\"")
		fmt.Println("  test-geo-utils decode-polyline --polyline \"encoded_string\" --verbose")
		os.Exit(1)
	}

	points, err := geo.DecodePolyline(*polylineStr)
	if err != nil {
		log.Fatalf("Error decoding polyline: %v", err)
	}

	fmt.Printf("Polyline decoded successfully:\n")
	fmt.Printf("  Input: %s\n", *polylineStr)
	fmt.Printf("  Points: %d\n", len(points))
	fmt.Printf("  Length: %.2f meters\n", geo.Route(points).Length())

	if len(points) > 0 {
		fmt.Printf("  Start: (%.6f, %.6f)\n", points[0].Latitude, points[0].Longitude)
		if len(points) > 1 {
			fmt.Printf("  End: (%.6f, %.6f)\n", points[len(points)-1].Latitude, points[len(points)-1].Longitude)
		}
	}

	if *verbose && len(points) > 0 {
		fmt.Printf("  All points:\n")
		for i, point := range points {
			fmt.Printf("    %d: (%.6f, %.6f)\n", i+1, point.Latitude, point.Longitude)
		}
	}
}

func handleDetectTurns() {
	fs := flag.NewFlagSet("detect-turns", flag.ExitOnError)
	polylineStr := fs.String("polyline", "", "Encoded polyline of an ordered route")
	interval := fs.Int("interval", 5, "Sampling window in points")
	threshold := fs.Float64("threshold", turns.DefaultThreshold, "Minimum turn angle in degrees")
	segmentLength := fs.Float64("segment-length", segment.DefaultLengthMeters, "Segment length in meters")

	_ = fs.Parse(os.Args[2:])

	if *polylineStr == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils detect-turns --polyline \"encoded_string\" --interval 3 --threshold 45")
		os.Exit(1)
	}

	points, err := geo.DecodePolyline(*polylineStr)
	if err != nil {
		log.Fatalf("Error decoding polyline: %v", err)
	}
	route := geo.Route(points)

	detected := turns.NewDetector(*interval, *threshold).Detect(route)
	segments := segment.Split(route, *segmentLength)

	fmt.Printf("Turn detection:\n")
	fmt.Printf("  Points: %d\n", len(route))
	fmt.Printf("  Length: %.2f meters in %d segments\n", route.Length(), len(segments))
	fmt.Printf("  Sharp turns: %d\n", len(detected))
	for i, t := range detected {
		marker := ""
		if t.IsBlindSpot() {
			marker = " (blind spot)"
		}
		fmt.Printf("    %d: index %d at (%.6f, %.6f) - %.1f°%s\n",
			i+1, t.SourceIndex, t.Location.Latitude, t.Location.Longitude, t.AngleDegrees, marker)
	}
}

func printUsage() {
	fmt.Printf(`test-geo-utils - Route geometry testing tool

USAGE:
    test-geo-utils <command> [options]

COMMANDS:
    point-distance      Calculate great-circle distance and bearing between two points
    turn-angle          Calculate the bearing change through three points
    decode-polyline     Decode Google polyline string to coordinates
    detect-turns        Find sharp turns and blind spots along a polyline
    help                Show this help message

EXAMPLES:
    # Distance between Angels Camp and Murphys
    test-geo-utils point-distance --lat1 38.0675 --lng1 -120.5436 --lat2 38.1391 --lng2 -120.4561

    # Angle of a single bend
    test-geo-utils turn-angle --points "38.0675,-120.5436;38.0700,-120.5400;38.0690,-120.5350"

    # Decode polyline to see coordinates
    test-geo-utils decode-polyline --polyline "encoded_string" --verbose

    # Sharp turns along a route
    test-geo-utils detect-turns --polyline "encoded_string" --interval 3
`)
}

// parseCoordinatePairs parses "lat,lng;lat,lng" into points
func parseCoordinatePairs(coordStr string) ([]geo.Point, error) {
	if coordStr == "" {
		return nil, fmt.Errorf("empty coordinate string")
	}

	pairs := strings.Split(coordStr, ";")
	points := make([]geo.Point, 0, len(pairs))

	for _, pair := range pairs {
		coords := strings.Split(strings.TrimSpace(pair), ",")
		if len(coords) != 2 {
			return nil, fmt.Errorf("invalid coordinate pair: %s", pair)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude: %s", coords[0])
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude: %s", coords[1])
		}

		points = append(points, geo.Point{Latitude: lat, Longitude: lng})
	}

	return points, nil
}
