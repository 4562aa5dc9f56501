package projection

import (
	"math/rand"

	"github.com/jung602/roro/internal/route"
)

const (
	labelSize   = 0.3
	labelColor  = "white"
	viewerSize  = 1.5
	viewerColor = "red"
	viewerText  = "you"
)

// arcAlphaFn produces the translucency for one arc. The jitter is
// purely cosmetic; tests pin it to a constant.
var arcAlphaFn = func() float64 { return 0.3 + rand.Float64()*0.4 }

// Arc is one great-circle segment between two consecutive route points.
type Arc struct {
	StartLat float64 `json:"startLat"`
	StartLng float64 `json:"startLng"`
	EndLat   float64 `json:"endLat"`
	EndLng   float64 `json:"endLng"`
	Alpha    float64 `json:"alpha"`
}

// Label is a point marker on the globe.
type Label struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Text   string  `json:"text"`
	Size   float64 `json:"size"`
	Color  string  `json:"color"`
	Viewer bool    `json:"viewer,omitempty"`
}

// Coordinate is a bare geolocation fix.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Stats carries the aggregate counters shown beside the globe.
type Stats struct {
	Places int `json:"places"`
	Paths  int `json:"paths"`
}

// Arcs emits one segment per consecutive pair of points with usable
// coordinates, per route.
func Arcs(routes []route.SavedRoute) []Arc {
	var arcs []Arc
	for _, r := range routes {
		points := usablePoints(r.Points)
		for i := 0; i < len(points)-1; i++ {
			arcs = append(arcs, Arc{
				StartLat: points[i].Lat,
				StartLng: points[i].Lng,
				EndLat:   points[i+1].Lat,
				EndLng:   points[i+1].Lng,
				Alpha:    arcAlphaFn(),
			})
		}
	}
	return arcs
}

// Labels emits one marker per route point, plus a highlighted marker for
// the viewer's own position when one is known.
func Labels(routes []route.SavedRoute, viewer *Coordinate) []Label {
	var labels []Label
	for _, r := range routes {
		for _, p := range usablePoints(r.Points) {
			labels = append(labels, Label{
				Lat:   p.Lat,
				Lng:   p.Lng,
				Text:  p.Name,
				Size:  labelSize,
				Color: labelColor,
			})
		}
	}
	if viewer != nil {
		labels = append(labels, Label{
			Lat:    viewer.Lat,
			Lng:    viewer.Lng,
			Text:   viewerText,
			Size:   viewerSize,
			Color:  viewerColor,
			Viewer: true,
		})
	}
	return labels
}

// Counters sums mapped places and paths across all routes. A
// single-point route contributes no paths.
func Counters(routes []route.SavedRoute) Stats {
	var s Stats
	for _, r := range routes {
		n := len(usablePoints(r.Points))
		s.Places += n
		if n > 1 {
			s.Paths += n - 1
		}
	}
	return s
}

func usablePoints(points []route.Point) []route.Point {
	out := points[:0:0]
	for _, p := range points {
		if p.Lat != 0 && p.Lng != 0 {
			out = append(out, p)
		}
	}
	return out
}
