package directions

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Waypoint addresses one stop of a routing request. A resolved waypoint
// carries coordinates; an unresolved one carries only free text. The two
// never mix: geometry code runs on resolved waypoints only.
type Waypoint struct {
	Lat      float64
	Lng      float64
	Resolved bool
	Address  string
}

// Resolved constructs a coordinate-addressed waypoint.
func ResolvedWaypoint(lat, lng float64) Waypoint {
	return Waypoint{Lat: lat, Lng: lng, Resolved: true}
}

// Unresolved constructs an address-addressed waypoint.
func UnresolvedWaypoint(address string) Waypoint {
	return Waypoint{Address: address}
}

// Valid reports whether the waypoint can address a routing request:
// real coordinates or a non-empty address.
func (w Waypoint) Valid() bool {
	if w.Resolved {
		return !math.IsNaN(w.Lat) && !math.IsNaN(w.Lng)
	}
	return strings.TrimSpace(w.Address) != ""
}

// locationParam renders the waypoint for the provider. Addresses of the
// form "lat,lng" are promoted to coordinates, matching how map positions
// are smuggled through address fields upstream.
func (w Waypoint) locationParam() string {
	if w.Resolved {
		return fmt.Sprintf("%f,%f", w.Lat, w.Lng)
	}
	parts := strings.SplitN(w.Address, ",", 2)
	if len(parts) == 2 {
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 == nil && err2 == nil {
			return fmt.Sprintf("%f,%f", lat, lng)
		}
	}
	return w.Address
}

// Step is one routing instruction's geometry: a start, a dense
// intermediate path, and an end.
type Step struct {
	Start Point   `json:"start"`
	End   Point   `json:"end"`
	Path  []Point `json:"path"`
}

// Leg connects two consecutive waypoints.
type Leg struct {
	Start           Point   `json:"start"`
	End             Point   `json:"end"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
	Steps           []Step  `json:"steps"`
}

// Itinerary is one resolution result. It is transient: every reorder or
// waypoint change produces a fresh itinerary that fully replaces the old
// one, never a partial merge.
type Itinerary struct {
	Legs         []Leg   `json:"legs"`
	OverviewPath []Point `json:"overview_path"`
}

func (it Itinerary) TotalDistanceKm() float64 {
	var meters float64
	for _, leg := range it.Legs {
		meters += leg.DistanceMeters
	}
	return meters / 1000
}

func (it Itinerary) TotalDurationMinutes() int {
	var seconds float64
	for _, leg := range it.Legs {
		seconds += leg.DurationSeconds
	}
	return int(seconds) / 60
}

// PointCoordinates returns the persisted coordinate for waypoint index i
// of n, preferring the provider's per-leg snap-to-road locations over the
// requested coordinates: point i takes leg i's start, the last point
// takes the final leg's end.
func (it Itinerary) PointCoordinates(i, n int) (Point, bool) {
	if len(it.Legs) == 0 || i < 0 || i >= n {
		return Point{}, false
	}
	if i == n-1 {
		return it.Legs[len(it.Legs)-1].End, true
	}
	if i >= len(it.Legs) {
		return Point{}, false
	}
	return it.Legs[i].Start, true
}
