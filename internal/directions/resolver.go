package directions

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrDirections wraps a provider non-OK status. The last successful
	// itinerary stays visible to callers; only the new request failed.
	ErrDirections = errors.New("directions request failed")

	// ErrSuperseded marks a resolution whose result arrived after a newer
	// request was issued. The result is discarded, not applied.
	ErrSuperseded = errors.New("resolution superseded")

	ErrTooFewWaypoints = errors.New("at least two waypoints required")
	ErrInvalidWaypoint = errors.New("waypoint has neither coordinates nor address")
)

// Provider is the external routing collaborator: given origin,
// destination and stopover waypoints it returns a walking itinerary.
type Provider interface {
	Route(ctx context.Context, origin, destination Waypoint, via []Waypoint) (Itinerary, error)
}

// Resolver serializes directions resolution for one route-editing
// session. Issuing a new Resolve while an earlier one is in flight
// supersedes it: each request takes a generation number and a completion
// is applied only if its generation is still the newest. Stale
// completions return ErrSuperseded and leave state untouched, and a
// failed resolution never clears the last successful itinerary.
type Resolver struct {
	provider Provider

	mu   sync.Mutex
	gen  uint64
	last *Itinerary
}

func NewResolver(provider Provider) *Resolver {
	return &Resolver{provider: provider}
}

func (r *Resolver) Resolve(ctx context.Context, waypoints []Waypoint) (Itinerary, error) {
	if len(waypoints) < 2 {
		return Itinerary{}, ErrTooFewWaypoints
	}
	for _, w := range waypoints {
		if !w.Valid() {
			return Itinerary{}, ErrInvalidWaypoint
		}
	}

	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	origin := waypoints[0]
	destination := waypoints[len(waypoints)-1]
	via := waypoints[1 : len(waypoints)-1]

	it, err := r.provider.Route(ctx, origin, destination, via)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return Itinerary{}, ErrSuperseded
	}
	if err != nil {
		return Itinerary{}, err
	}
	r.last = &it
	return it, nil
}

// Current returns the itinerary of the newest applied resolution, if any.
func (r *Resolver) Current() (Itinerary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Itinerary{}, false
	}
	return *r.last, true
}

// Generation reports how many resolutions have been issued.
func (r *Resolver) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}
