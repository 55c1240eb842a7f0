package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dpup/routesafe/internal/lib/advisory"
	"github.com/dpup/routesafe/internal/lib/risk"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "advise":
		handleAdvise()
	case "hash":
		handleHash()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

type requestFlags struct {
	level    *string
	turns    *int
	climb    *float64
	weather  *string
	quality  *float64
	terrain  *string
	lengthKm *float64
}

func addRequestFlags(fs *flag.FlagSet) requestFlags {
	return requestFlags{
		level:    fs.String("level", "MEDIUM", "Risk level: MEDIUM or HIGH"),
		turns:    fs.Int("turns", 0, "Sharp turns in the segment"),
		climb:    fs.Float64("climb", 0, "Elevation change in meters"),
		weather:  fs.String("weather", "", "Adverse weather description, e.g. \"light rain\""),
		quality:  fs.Float64("quality", -1, "Road quality 0-10 (negative to omit)"),
		terrain:  fs.String("terrain", string(risk.Rural), "Terrain: urban, semi-urban or rural"),
		lengthKm: fs.Float64("length-km", 5, "Segment length in km"),
	}
}

// request assembles factors with the stock weights
func (f requestFlags) request() advisory.Request {
	weights := risk.DefaultConfig().Weights
	req := advisory.Request{
		Level:        risk.Level(strings.ToUpper(*f.level)),
		Terrain:      risk.Terrain(*f.terrain),
		LengthMeters: *f.lengthKm * 1000,
	}

	if *f.turns > 0 {
		req.Factors = append(req.Factors, risk.RiskFactor{Kind: risk.SharpTurns, Weight: weights.SharpTurn, Magnitude: float64(*f.turns)})
	}
	if *f.climb > 0 {
		req.Factors = append(req.Factors, risk.RiskFactor{Kind: risk.Elevation, Weight: weights.Elevation, Magnitude: *f.climb})
	}
	if *f.weather != "" {
		sample := risk.WeatherSample{Description: *f.weather}
		req.Factors = append(req.Factors, risk.RiskFactor{
			Kind: risk.Weather, Weight: weights.Weather, Magnitude: 1,
			Detail: risk.FactorDetail{Weather: &sample},
		})
	}
	if *f.quality >= 0 {
		q := *f.quality
		req.Factors = append(req.Factors, risk.RiskFactor{
			Kind: risk.RoadQuality, Weight: weights.RoadQuality, Magnitude: 10 - q,
			Detail: risk.FactorDetail{QualityScore: &q},
		})
	}

	for _, factor := range req.Factors {
		req.Score += factor.Contribution()
	}
	return req
}

func handleAdvise() {
	fs := flag.NewFlagSet("advise", flag.ExitOnError)
	rf := addRequestFlags(fs)
	apiKey := fs.String("api-key", os.Getenv("ROUTESAFE__ADVISORY__OPENAI_API_KEY"), "OpenAI API key (empty uses canned advice)")
	model := fs.String("model", advisory.DefaultModel, "OpenAI model to use")
	timeout := fs.Int("timeout", 30, "Timeout in seconds")

	_ = fs.Parse(os.Args[2:])

	req := rf.request()
	if len(req.Factors) == 0 {
		fmt.Println("Example usage:")
		fmt.Println("  test-advisory advise --level HIGH --turns 3 --weather \"light rain\"")
		fmt.Println("  test-advisory advise --level MEDIUM --climb 350 --quality 4 --api-key sk-xxx")
		os.Exit(1)
	}

	var advisor advisory.Advisor = advisory.NewCanned()
	if *apiKey != "" {
		advisor = advisory.WithFallback(advisory.NewOpenAIAdvisor(*apiKey, *model, ""), advisor)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeout)*time.Second)
	defer cancel()

	start := time.Now()
	adv, err := advisor.Advise(ctx, req)
	if err != nil {
		log.Fatalf("Advisory failed: %v", err)
	}

	fmt.Printf("✅ Advisory generated in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Source: %s\n", adv.Source)
	fmt.Printf("  Level: %s (score %.2f)\n", adv.Level, req.Score)
	fmt.Printf("  Summary: %s\n", adv.Summary)
	fmt.Printf("  Precautions:\n")
	for i, p := range adv.Precautions {
		fmt.Printf("    %d. %s\n", i+1, p)
	}
}

func handleHash() {
	fs := flag.NewFlagSet("hash", flag.ExitOnError)
	rf := addRequestFlags(fs)

	_ = fs.Parse(os.Args[2:])

	req := rf.request()
	hash1 := advisory.ContentHash(req)
	hash2 := advisory.ContentHash(req)
	if hash1 != hash2 {
		log.Fatal("Same request should produce same content hash")
	}

	fmt.Printf("✅ Hash generation working!\n")
	fmt.Printf("Content Hash: %s\n", hash1)
	fmt.Printf("Factors: %d\n", len(req.Factors))
}

func printUsage() {
	fmt.Printf(`test-advisory - Safety advisory testing tool

USAGE:
    test-advisory <command> [options]

COMMANDS:
    advise      Generate an advisory for a described segment
    hash        Show the cache content hash for a described segment
    help        Show this help message

EXAMPLES:
    # Canned advice for a wet, twisty segment
    test-advisory advise --level HIGH --turns 3 --weather "light rain"

    # OpenAI advice, falling back to canned on failure
    test-advisory advise --level MEDIUM --climb 350 --api-key sk-xxx

    # Requests that differ only slightly share a hash
    test-advisory hash --turns 3 --weather "Light Rain"
`)
}
