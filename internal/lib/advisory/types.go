// Package advisory produces driver safety guidance for risky route segments.
package advisory

import (
	"context"
	"time"

	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/lib/risk"
)

// Source values for Advisory.Source
const (
	SourceOpenAI = "openai"
	SourceCanned = "canned"
)

// Request describes one scored segment
type Request struct {
	Level        risk.Level        `json:"level"`
	Score        float64           `json:"score"`
	Terrain      risk.Terrain      `json:"terrain"`
	LengthMeters float64           `json:"length_meters"`
	Start        geo.Point         `json:"start"`
	End          geo.Point         `json:"end"`
	Factors      []risk.RiskFactor `json:"factors"`
}

// Advisory is the guidance for one segment
type Advisory struct {
	Level       risk.Level `json:"level"`
	Summary     string     `json:"summary"`
	Precautions []string   `json:"precautions"`
	Source      string     `json:"source"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Advisor turns a segment description into an Advisory
type Advisor interface {
	Advise(ctx context.Context, req Request) (Advisory, error)
}

// RequestFor builds the advisory request for a scored segment
func RequestFor(record *risk.RiskRecord) Request {
	return Request{
		Level:        record.Level(),
		Score:        record.Score(),
		Terrain:      record.Terrain,
		LengthMeters: record.Segment.LengthMeters,
		Start:        record.Segment.StartPoint,
		End:          record.Segment.EndPoint,
		Factors:      record.Factors(),
	}
}

// Eligible reports whether a segment warrants an advisory. Only MEDIUM and
// HIGH segments do.
func Eligible(record *risk.RiskRecord) bool {
	return record.Level() == risk.Medium || record.Level() == risk.High
}
