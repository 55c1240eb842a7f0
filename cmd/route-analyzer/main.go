package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/dpup/prefab/logging"

	"github.com/dpup/routesafe/internal/config"
	"github.com/dpup/routesafe/internal/export"
	"github.com/dpup/routesafe/internal/ingest"
	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/metrics"
	"github.com/dpup/routesafe/internal/services"
)

type options struct {
	configPath  string
	csvPath     string
	origin      string
	destination string
	bounds      string
	mode        string
	maxPoints   string
	vehicle     string
	format      string
	outPath     string
	metricsPath string
	estimate    bool
	noAdvisory  bool
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyOverrides(cfg, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logger := logging.NewDevLogger()
	if cfg.Logging.Format == "json" {
		logger = logging.NewProdLogger()
	}
	ctx = logging.With(ctx, logger)

	os.Exit(run(ctx, cfg, opts))
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to YAML configuration file")
	flag.StringVar(&opts.csvPath, "csv", "", "CSV file of lat,lng rows to analyze")
	flag.StringVar(&opts.origin, "origin", "", "Directions origin as lat,lng")
	flag.StringVar(&opts.destination, "destination", "", "Directions destination as lat,lng")
	flag.StringVar(&opts.bounds, "bounds", "", "Bounding box as lat1,lng1,lat2,lng2 (first corner anchors the route)")
	flag.StringVar(&opts.mode, "mode", "", "Processing mode: fast, standard or detailed")
	flag.StringVar(&opts.maxPoints, "max-points", "", "Maximum points to analyze, or \"all\"")
	flag.StringVar(&opts.vehicle, "vehicle", "", "Vehicle class: car, motorcycle, medium_truck, heavy_truck, bus, tanker")
	flag.StringVar(&opts.format, "format", "json", "Output format: json, geojson or kml")
	flag.StringVar(&opts.outPath, "out", "", "Output file (default stdout)")
	flag.StringVar(&opts.metricsPath, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	flag.BoolVar(&opts.estimate, "estimate", false, "Print the processing time estimate and exit")
	flag.BoolVar(&opts.noAdvisory, "no-advisory", false, "Skip safety advisories")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage:\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  route-analyzer -csv route.csv [flags]\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  route-analyzer -origin 38.0675,-120.5436 -destination 38.1391,-120.4561 [flags]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	return opts
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.mode != "" {
		cfg.Analysis.Mode = opts.mode
	}
	if opts.maxPoints != "" {
		cfg.Analysis.MaxPoints = opts.maxPoints
	}
	if opts.vehicle != "" {
		cfg.Analysis.VehicleClass = opts.vehicle
	}
	if opts.noAdvisory {
		cfg.Advisory.Enabled = false
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) int {
	if opts.metricsPath != "" {
		defer func() {
			if err := metrics.WriteTextfile(opts.metricsPath); err != nil {
				logging.Errorw(ctx, "Failed to write metrics", "path", opts.metricsPath, "error", err)
			}
		}()
	}

	req := services.Request{}
	if opts.bounds != "" {
		bounds, err := parseBounds(opts.bounds)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -bounds: %v\n", err)
			return 2
		}
		req.Bounds = &bounds
	}

	var (
		analysis *services.Analysis
		err      error
	)

	switch {
	case opts.csvPath != "":
		points, rerr := readCSV(ctx, opts.csvPath)
		if rerr != nil {
			return reportError(rerr)
		}
		req.Name = opts.csvPath
		req.Points = points

		if opts.estimate {
			return printJSON(os.Stdout, config.EstimateProcessingTime(len(points), cfg.Snapshot(ctx).Mode))
		}

		analyzer := services.NewRouteAnalyzer(cfg, newDependencies(ctx, cfg))
		analysis, err = analyzer.Analyze(ctx, req)

	case opts.origin != "" && opts.destination != "":
		origin, perr := parsePoint(opts.origin)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Invalid -origin: %v\n", perr)
			return 2
		}
		destination, perr := parsePoint(opts.destination)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Invalid -destination: %v\n", perr)
			return 2
		}
		req.Name = opts.origin + " to " + opts.destination

		analyzer := services.NewRouteAnalyzer(cfg, newDependencies(ctx, cfg))
		analysis, err = analyzer.AnalyzeDirections(ctx, origin, destination, req)

	default:
		flag.Usage()
		return 2
	}

	if err != nil {
		return reportError(err)
	}

	out := io.Writer(os.Stdout)
	if opts.outPath != "" {
		f, ferr := os.Create(opts.outPath)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", ferr)
			return 1
		}
		defer f.Close()
		out = f
	}

	if err := write(out, opts.format, analysis); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return 1
	}
	return 0
}

func readCSV(ctx context.Context, path string) ([]geo.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result, err := ingest.ReadCSV(f)
	if err != nil {
		return nil, err
	}
	logging.Infow(ctx, "CSV loaded", "path", path, "rows", result.Rows, "points", len(result.Points), "skipped", result.Skipped)
	return result.Points, nil
}

func reportError(err error) int {
	if services.IsInputError(err) {
		fmt.Fprintf(os.Stderr, "Invalid input: %v\n", err)
		return 2
	}
	fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
	return 1
}

func write(w io.Writer, format string, analysis *services.Analysis) error {
	m := export.Map{
		Name:    analysis.Name,
		Route:   analysis.Route,
		Turns:   analysis.SharpTurns,
		Records: analysis.Segments,
	}

	switch strings.ToLower(format) {
	case "json", "":
		if code := printJSON(w, analysis); code != 0 {
			return fmt.Errorf("failed to encode analysis")
		}
		return nil
	case "geojson":
		data, err := export.GeoJSON(m).MarshalJSON()
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case "kml":
		return export.WriteKML(w, m)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
		return 1
	}
	return 0
}

func parsePoint(s string) (geo.Point, error) {
	values, err := parseFloats(s, 2)
	if err != nil {
		return geo.Point{}, err
	}
	return geo.NewPoint(values[0], values[1])
}

func parseBounds(s string) (geo.Bounds, error) {
	values, err := parseFloats(s, 4)
	if err != nil {
		return geo.Bounds{}, err
	}
	from, err := geo.NewPoint(values[0], values[1])
	if err != nil {
		return geo.Bounds{}, err
	}
	to, err := geo.NewPoint(values[2], values[3])
	if err != nil {
		return geo.Bounds{}, err
	}
	return geo.Bounds{From: from, To: to}, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated numbers, got %d", n, len(parts))
	}

	values := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		values[i] = v
	}
	return values, nil
}
