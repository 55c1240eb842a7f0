package export

import (
	"fmt"
	"io"

	"github.com/twpayne/go-kml"

	"github.com/dpup/routesafe/internal/lib/geo"
	"github.com/dpup/routesafe/internal/lib/risk"
)

func coordinates(points []geo.Point) kml.Element {
	coords := make([]kml.Coordinate, len(points))
	for i, p := range points {
		coords[i] = kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude}
	}
	return kml.Coordinates(coords...)
}

// KML builds a document with one styled line per risk segment and a
// placemark per sharp turn
func KML(m Map) *kml.CompoundElement {
	styles := map[risk.Level]*kml.SharedElement{}
	var children []kml.Element
	if m.Name != "" {
		children = append(children, kml.Name(m.Name))
	}

	for _, level := range []risk.Level{risk.Low, risk.Medium, risk.High} {
		style := kml.SharedStyle(
			"risk-"+string(level),
			kml.LineStyle(
				kml.Color(LevelColor(level)),
				kml.Width(5),
			),
		)
		styles[level] = style
		children = append(children, style)
	}

	segments := []kml.Element{kml.Name("Risk segments")}
	for i, r := range m.Records {
		style, ok := styles[r.Level()]
		if !ok {
			style = styles[risk.Low]
		}
		segments = append(segments, kml.Placemark(
			kml.Name(fmt.Sprintf("Segment %d: %s", i+1, r.Level())),
			kml.Description(fmt.Sprintf("Score %.2f, %.1f km, %s", r.Score(), r.Segment.LengthMeters/1000, r.Terrain)),
			kml.StyleURL(style.URL()),
			kml.LineString(
				kml.Tessellate(true),
				coordinates(r.Segment.Points),
			),
		))
	}
	children = append(children, kml.Folder(segments...))

	turnMarks := []kml.Element{kml.Name("Sharp turns")}
	for _, t := range m.Turns {
		name := fmt.Sprintf("Sharp turn %.0f°", t.AngleDegrees)
		if t.IsBlindSpot() {
			name = fmt.Sprintf("Blind spot %.0f°", t.AngleDegrees)
		}
		turnMarks = append(turnMarks, kml.Placemark(
			kml.Name(name),
			kml.Point(coordinates([]geo.Point{t.Location})),
		))
	}
	children = append(children, kml.Folder(turnMarks...))

	return kml.KML(kml.Document(children...))
}

// WriteKML renders the map as indented KML
func WriteKML(w io.Writer, m Map) error {
	if err := KML(m).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("failed to write kml: %w", err)
	}
	return nil
}
