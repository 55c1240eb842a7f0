package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON builds a FeatureCollection with the route line, one line per risk
// segment and one point per sharp turn
func GeoJSON(m Map) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if len(m.Route) > 0 {
		route := geojson.NewFeature(m.Route.LineString())
		route.Properties["kind"] = "route"
		route.Properties["name"] = m.Name
		route.Properties["distance_meters"] = m.Route.Length()
		fc.Append(route)
	}

	for i, r := range m.Records {
		line := make(orb.LineString, len(r.Segment.Points))
		for j, p := range r.Segment.Points {
			line[j] = p.Orb()
		}

		f := geojson.NewFeature(line)
		f.Properties["kind"] = "risk_segment"
		f.Properties["index"] = i
		f.Properties["level"] = string(r.Level())
		f.Properties["score"] = r.Score()
		f.Properties["terrain"] = string(r.Terrain)
		f.Properties["factors"] = factorKinds(r)
		f.Properties["length_meters"] = r.Segment.LengthMeters
		f.Properties["stroke"] = LevelHex(r.Level())
		fc.Append(f)
	}

	for _, t := range m.Turns {
		f := geojson.NewFeature(t.Location.Orb())
		f.Properties["kind"] = "sharp_turn"
		f.Properties["angle_degrees"] = t.AngleDegrees
		f.Properties["blind_spot"] = t.IsBlindSpot()
		fc.Append(f)
	}

	return fc
}
