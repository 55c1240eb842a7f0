// Package export renders analyzed routes as GeoJSON and KML maps.
package export

import (
	"fmt"
	"image/color"

	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/lib/risk"
	"github.com/dpup/routesafe/internal/lib/turns"
)

// Map is everything drawn on an exported map
type Map struct {
	Name    string
	Route   geo.Route
	Turns   []turns.SharpTurn
	Records []*risk.RiskRecord
}

var levelColors = map[risk.Level]color.RGBA{
	risk.Low:    {R: 0x28, G: 0xa7, B: 0x45, A: 0xff},
	risk.Medium: {R: 0xfd, G: 0x7e, B: 0x14, A: 0xff},
	risk.High:   {R: 0xdc, G: 0x35, B: 0x45, A: 0xff},
}

// LevelColor returns the display colour for a risk level. Unknown levels
// are drawn as LOW.
func LevelColor(level risk.Level) color.RGBA {
	if c, ok := levelColors[level]; ok {
		return c
	}
	return levelColors[risk.Low]
}

// LevelHex returns the colour as #rrggbb
func LevelHex(level risk.Level) string {
	c := LevelColor(level)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func factorKinds(r *risk.RiskRecord) []string {
	factors := r.Factors()
	kinds := make([]string, len(factors))
	for i, f := range factors {
		kinds[i] = string(f.Kind)
	}
	return kinds
}
