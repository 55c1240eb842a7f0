// Package ingest turns uploaded coordinate files into route points.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dpup/prefab/errors"
	"google.golang.org/grpc/codes"

	"github.com/dpup/routesafe/internal/lib/geo"
)

var (
	// ErrNoValidCoordinates is returned when no row holds a usable lat,lng pair
	ErrNoValidCoordinates = errors.NewC("no valid coordinate pairs found", codes.InvalidArgument)

	// ErrTooFewColumns is returned when the file has fewer than two columns
	ErrTooFewColumns = errors.NewC("csv must have at least 2 columns (latitude, longitude)", codes.InvalidArgument)
)

// Result is the outcome of reading a coordinate file
type Result struct {
	Points  []geo.Point
	Rows    int
	Skipped int
}

// ReadCSV reads lat,lng from the first two columns of every row. Header rows,
// unparsable rows and out-of-range coordinates are skipped.
func ReadCSV(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		result  Result
		columns int
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read csv row %d: %w", result.Rows+1, err)
		}

		result.Rows++
		columns = max(columns, len(row))

		p, ok := parseRow(row)
		if !ok {
			result.Skipped++
			continue
		}
		result.Points = append(result.Points, p)
	}

	if result.Rows > 0 && columns < 2 {
		return result, ErrTooFewColumns
	}
	if len(result.Points) == 0 {
		return result, ErrNoValidCoordinates
	}
	return result, nil
}

func parseRow(row []string) (geo.Point, bool) {
	if len(row) < 2 {
		return geo.Point{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
	if err != nil {
		return geo.Point{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil {
		return geo.Point{}, false
	}

	p := geo.Point{Latitude: lat, Longitude: lng}
	return p, geo.IsValid(p)
}
