package advisory

import (
	"crypto/sha256"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ContentHash identifies requests that should share an advisory. Location is
// left out so identical hazards along different roads hit the same entry.
// Magnitudes are bucketed so small elevation differences do not miss.
func ContentHash(req Request) string {
	parts := make([]string, 0, len(req.Factors))
	for _, f := range req.Factors {
		part := fmt.Sprintf("%s:%g", f.Kind, bucket(f.Magnitude))
		if f.Detail.Weather != nil {
			part += ":" + normalizeText(f.Detail.Weather.Description)
		}
		parts = append(parts, part)
	}
	sort.Strings(parts)

	signature := fmt.Sprintf("%s|%s|%s", req.Level, req.Terrain, strings.Join(parts, ";"))
	hash := sha256.Sum256([]byte(signature))
	return fmt.Sprintf("%x", hash)
}

// bucket rounds large magnitudes to two significant figures
func bucket(v float64) float64 {
	if v < 10 {
		return math.Round(v)
	}
	scale := math.Pow(10, math.Floor(math.Log10(v))-1)
	return math.Round(v/scale) * scale
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
