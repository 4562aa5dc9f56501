package directions

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	results []func() (Itinerary, error)
}

func (f *fakeProvider) Route(_ context.Context, _, _ Waypoint, _ []Waypoint) (Itinerary, error) {
	f.mu.Lock()
	idx := f.calls
	f.calls++
	f.mu.Unlock()
	if idx < len(f.results) {
		return f.results[idx]()
	}
	return Itinerary{}, errors.New("no scripted result")
}

func twoLegItinerary() Itinerary {
	return Itinerary{
		Legs: []Leg{
			{
				Start:           Point{37.50, 127.00},
				End:             Point{37.51, 127.01},
				DistanceMeters:  1200,
				DurationSeconds: 900,
			},
			{
				Start:           Point{37.51, 127.01},
				End:             Point{37.52, 127.02},
				DistanceMeters:  1500,
				DurationSeconds: 1100,
			},
		},
		OverviewPath: []Point{{37.50, 127.00}, {37.505, 127.005}, {37.52, 127.02}},
	}
}

func waypointsABC() []Waypoint {
	return []Waypoint{
		ResolvedWaypoint(37.50, 127.00),
		ResolvedWaypoint(37.51, 127.01),
		ResolvedWaypoint(37.52, 127.02),
	}
}

func TestResolveSuccess(t *testing.T) {
	provider := &fakeProvider{results: []func() (Itinerary, error){
		func() (Itinerary, error) { return twoLegItinerary(), nil },
	}}
	r := NewResolver(provider)

	it, err := r.Resolve(context.Background(), waypointsABC())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(it.Legs) != 2 || len(it.OverviewPath) == 0 {
		t.Fatalf("unexpected itinerary: %+v", it)
	}
	if it.TotalDurationMinutes() != 33 {
		t.Fatalf("2000s should floor to 33 minutes, got %d", it.TotalDurationMinutes())
	}
	if it.TotalDistanceKm() != 2.7 {
		t.Fatalf("unexpected distance %v", it.TotalDistanceKm())
	}
	if got, ok := r.Current(); !ok || len(got.Legs) != 2 {
		t.Fatalf("current must reflect the applied itinerary")
	}
}

func TestResolveTooFewWaypoints(t *testing.T) {
	r := NewResolver(&fakeProvider{})
	if _, err := r.Resolve(context.Background(), waypointsABC()[:1]); !errors.Is(err, ErrTooFewWaypoints) {
		t.Fatalf("expected ErrTooFewWaypoints, got %v", err)
	}
}

func TestResolveInvalidWaypoint(t *testing.T) {
	r := NewResolver(&fakeProvider{})
	wps := []Waypoint{ResolvedWaypoint(37.5, 127.0), UnresolvedWaypoint("   ")}
	if _, err := r.Resolve(context.Background(), wps); !errors.Is(err, ErrInvalidWaypoint) {
		t.Fatalf("expected ErrInvalidWaypoint, got %v", err)
	}
}

func TestFailurePreservesLastItinerary(t *testing.T) {
	provider := &fakeProvider{results: []func() (Itinerary, error){
		func() (Itinerary, error) { return twoLegItinerary(), nil },
		func() (Itinerary, error) {
			return Itinerary{}, errors.New("ZERO_RESULTS")
		},
	}}
	r := NewResolver(provider)

	if _, err := r.Resolve(context.Background(), waypointsABC()); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if _, err := r.Resolve(context.Background(), waypointsABC()); err == nil {
		t.Fatalf("expected provider failure")
	}
	if got, ok := r.Current(); !ok || len(got.Legs) != 2 {
		t.Fatalf("failed resolution must not clear the last good itinerary")
	}
}

func TestStaleResolutionIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	firstStarted := make(chan struct{})

	slow := twoLegItinerary()
	fast := twoLegItinerary()
	fast.Legs = fast.Legs[:1]

	provider := &fakeProvider{results: []func() (Itinerary, error){
		func() (Itinerary, error) {
			close(firstStarted)
			<-release
			return slow, nil
		},
		func() (Itinerary, error) { return fast, nil },
	}}
	r := NewResolver(provider)

	errCh := make(chan error, 1)
	go func() {
		_, err := r.Resolve(context.Background(), waypointsABC())
		errCh <- err
	}()
	<-firstStarted

	// a newer request supersedes the in-flight one
	if _, err := r.Resolve(context.Background(), waypointsABC()); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	close(release)

	if err := <-errCh; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("stale completion must return ErrSuperseded, got %v", err)
	}
	got, ok := r.Current()
	if !ok || len(got.Legs) != 1 {
		t.Fatalf("newest resolution must win, got %+v", got)
	}
	if r.Generation() != 2 {
		t.Fatalf("expected 2 generations, got %d", r.Generation())
	}
}

func TestPointCoordinatesSnapToRoad(t *testing.T) {
	it := twoLegItinerary()

	first, ok := it.PointCoordinates(0, 3)
	if !ok || first != it.Legs[0].Start {
		t.Fatalf("first point takes leg 0 start, got %+v", first)
	}
	mid, ok := it.PointCoordinates(1, 3)
	if !ok || mid != it.Legs[1].Start {
		t.Fatalf("interior point takes its leg start, got %+v", mid)
	}
	last, ok := it.PointCoordinates(2, 3)
	if !ok || last != it.Legs[1].End {
		t.Fatalf("last point takes final leg end, got %+v", last)
	}
	if _, ok := it.PointCoordinates(3, 3); ok {
		t.Fatalf("out-of-range index must not resolve")
	}
}

func TestWaypointLocationParam(t *testing.T) {
	if got := ResolvedWaypoint(37.5, 127.0).locationParam(); got != "37.500000,127.000000" {
		t.Fatalf("unexpected coordinate param %q", got)
	}
	if got := UnresolvedWaypoint("37.5, 127.0").locationParam(); got != "37.500000,127.000000" {
		t.Fatalf("lat,lng address must promote to coordinates, got %q", got)
	}
	if got := UnresolvedWaypoint("Seoul City Hall").locationParam(); got != "Seoul City Hall" {
		t.Fatalf("free-text address must pass through, got %q", got)
	}
}
