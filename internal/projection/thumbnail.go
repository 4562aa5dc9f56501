package projection

import (
	"strconv"

	"github.com/paulmach/orb"

	"github.com/jung602/roro/internal/directions"
	"github.com/jung602/roro/internal/route"
	"github.com/jung602/roro/internal/shared/geo"
)

const (
	thumbWidth   = 1000.0
	thumbHeight  = 500.0
	thumbPadding = 50.0
)

// ThumbnailPath flattens an itinerary's leg steps into a deduplicated
// point sequence and projects it onto the fixed thumbnail canvas.
// An itinerary with no drawable points yields "".
func ThumbnailPath(it directions.Itinerary) string {
	points := stepPoints(it)
	if len(points) == 0 {
		return ""
	}
	bound := orb.MultiPoint(points).Bound()
	return geo.SVGPath(points, bound, thumbWidth, thumbHeight, thumbPadding)
}

// PointsPath projects a bare point sequence onto the thumbnail canvas.
// Used when no resolved itinerary is available for a saved route.
func PointsPath(points []route.Point) string {
	var pts []orb.Point
	seen := make(map[string]struct{})
	for _, p := range points {
		key := strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		pts = append(pts, orb.Point{p.Lng, p.Lat})
	}
	if len(pts) == 0 {
		return ""
	}
	return geo.SVGPath(pts, orb.MultiPoint(pts).Bound(), thumbWidth, thumbHeight, thumbPadding)
}

// stepPoints walks every step's start, dense path, and end, dropping
// exact repeats at leg boundaries while keeping first-seen order.
func stepPoints(it directions.Itinerary) []orb.Point {
	var out []orb.Point
	seen := make(map[string]struct{})
	push := func(p directions.Point) {
		key := strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, orb.Point{p.Lng, p.Lat})
	}
	for _, leg := range it.Legs {
		for _, step := range leg.Steps {
			push(step.Start)
			for _, p := range step.Path {
				push(p)
			}
			push(step.End)
		}
	}
	return out
}
