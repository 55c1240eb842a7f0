package advisory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dpup/routesafe/internal/lib/risk"
)

var factorPrecautions = map[risk.FactorKind]string{
	risk.SharpTurns:  "Approach turns at reduced speed, use hazard lights if stopping",
	risk.Elevation:   "Use engine braking on steep descents, check brakes regularly",
	risk.Weather:     "In %s, pull over to safe location if visibility is poor",
	risk.RoadQuality: "Drive slowly on poor road sections, be alert for sudden potholes",
}

var factorLabels = map[risk.FactorKind]string{
	risk.SharpTurns:  "sharp turns",
	risk.Elevation:   "elevation change",
	risk.Weather:     "adverse weather",
	risk.RoadQuality: "poor road surface",
}

var highRiskSteps = []string{
	"Reduce speed immediately",
	"Increase following distance",
	"Avoid sudden maneuvers",
	"Be prepared for adverse conditions",
	"Monitor surroundings continuously",
	"Consider alternative routes if conditions worsen",
}

// Canned produces advisories from a fixed table. It never fails.
type Canned struct {
	now func() time.Time
}

// NewCanned creates the table-driven advisor
func NewCanned() *Canned {
	return &Canned{now: time.Now}
}

// Advise implements Advisor
func (c *Canned) Advise(_ context.Context, req Request) (Advisory, error) {
	var (
		labels      []string
		precautions []string
	)
	for _, f := range req.Factors {
		labels = append(labels, factorLabels[f.Kind])

		precaution, ok := factorPrecautions[f.Kind]
		if !ok {
			continue
		}
		if f.Kind == risk.Weather {
			condition := "adverse weather"
			if f.Detail.Weather != nil && f.Detail.Weather.Description != "" {
				condition = f.Detail.Weather.Description
			}
			precaution = fmt.Sprintf(precaution, condition)
		}
		precautions = append(precautions, precaution)
	}

	if req.Level == risk.High {
		precautions = append(precautions, highRiskSteps...)
	}

	summary := fmt.Sprintf("%s risk segment", req.Level)
	if len(labels) > 0 {
		summary = fmt.Sprintf("%s risk segment: %s", req.Level, strings.Join(labels, ", "))
	}

	return Advisory{
		Level:       req.Level,
		Summary:     summary,
		Precautions: precautions,
		Source:      SourceCanned,
		GeneratedAt: c.now(),
	}, nil
}
