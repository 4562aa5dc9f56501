package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/jung602/roro/internal/directions"
	"github.com/jung602/roro/internal/route"
	"github.com/jung602/roro/internal/shared/geo"

	"github.com/google/uuid"
)

// MaxImagesPerLocation caps photo attachments per itinerary entry.
const MaxImagesPerLocation = 5

var (
	ErrTooManyImages    = errors.New("too many images for location")
	ErrLocationNotFound = errors.New("location not found")
	ErrNotResolved      = errors.New("session has no resolved itinerary")
	ErrAlreadyConfirmed = errors.New("session already confirmed")
)

type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateResolved  State = "resolved"
	StateConfirmed State = "confirmed"
)

// Location is an in-progress waypoint. Identity is the ID assigned at
// creation, never the display name: two cafes called "Starbucks" in one
// session stay distinct through every reorder.
type Location struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	Lat      float64       `json:"lat,omitempty"`
	Lng      float64       `json:"lng,omitempty"`
	Resolved bool          `json:"resolved"`
	Images   []route.Image `json:"images,omitempty"`
}

func (l Location) waypoint() directions.Waypoint {
	if l.Resolved {
		return directions.ResolvedWaypoint(l.Lat, l.Lng)
	}
	return directions.UnresolvedWaypoint(l.Address)
}

// Uploader is the slice of the storage layer the session needs.
type Uploader interface {
	UploadAll(ctx context.Context, prefix string, files [][]byte, onProgress func(pct float64)) ([]route.Image, error)
}

// Session holds one route-editing flow from first location to
// confirmation. The location list is the source of truth: resolution
// failures invalidate only the derived itinerary, never the ordering.
type Session struct {
	ID string

	mu        sync.Mutex
	state     State
	locations []Location
	itinerary *directions.Itinerary
	resolver  *directions.Resolver
	uploader  Uploader
}

func New(provider directions.Provider, uploader Uploader) *Session {
	return &Session{
		ID:       uuid.NewString(),
		state:    StateIdle,
		resolver: directions.NewResolver(provider),
		uploader: uploader,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Locations() []Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Location, len(s.locations))
	copy(out, s.locations)
	return out
}

func (s *Session) Itinerary() (directions.Itinerary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.itinerary == nil {
		return directions.Itinerary{}, false
	}
	return *s.itinerary, true
}

// AddLocation appends a location, assigning its stable ID, and
// re-resolves once two or more locations exist.
func (s *Session) AddLocation(ctx context.Context, loc Location) (Location, error) {
	s.mu.Lock()
	if s.state == StateConfirmed {
		s.mu.Unlock()
		return Location{}, ErrAlreadyConfirmed
	}
	if loc.ID == "" {
		loc.ID = uuid.NewString()
	}
	s.locations = append(s.locations, loc)
	shouldResolve := len(s.locations) >= 2
	s.mu.Unlock()

	if !shouldResolve {
		return loc, nil
	}
	if err := s.resolve(ctx); err != nil {
		return loc, err
	}
	return loc, nil
}

// Reorder relocates the location identified by srcID to the position of
// dstID, then triggers a full re-resolution. The reordered list survives
// a resolution failure untouched.
func (s *Session) Reorder(ctx context.Context, srcID, dstID string) error {
	s.mu.Lock()
	if s.state == StateConfirmed {
		s.mu.Unlock()
		return ErrAlreadyConfirmed
	}
	src := s.indexOfLocked(srcID)
	dst := s.indexOfLocked(dstID)
	if src < 0 || dst < 0 {
		s.mu.Unlock()
		return ErrLocationNotFound
	}
	if src != dst {
		moved := s.locations[src]
		s.locations = append(s.locations[:src], s.locations[src+1:]...)
		rest := make([]Location, 0, len(s.locations)+1)
		rest = append(rest, s.locations[:dst]...)
		rest = append(rest, moved)
		rest = append(rest, s.locations[dst:]...)
		s.locations = rest
	}
	s.mu.Unlock()

	return s.resolve(ctx)
}

func (s *Session) indexOfLocked(id string) int {
	for i, loc := range s.locations {
		if loc.ID == id {
			return i
		}
	}
	return -1
}

// resolve re-requests directions for the current ordering. The
// itinerary reference is detached before the request goes out; on
// failure the last successful resolution is restored from the resolver,
// which keeps it across overlapping requests. A superseded completion
// changes nothing.
func (s *Session) resolve(ctx context.Context) error {
	s.mu.Lock()
	if len(s.locations) < 2 {
		s.mu.Unlock()
		return directions.ErrTooFewWaypoints
	}
	waypoints := make([]directions.Waypoint, len(s.locations))
	for i, loc := range s.locations {
		waypoints[i] = loc.waypoint()
	}
	s.itinerary = nil
	s.state = StateResolving
	s.mu.Unlock()

	it, err := s.resolver.Resolve(ctx, waypoints)

	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(err, directions.ErrSuperseded) {
		// a newer resolve owns the state now
		return nil
	}
	if err != nil {
		if last, ok := s.resolver.Current(); ok {
			s.itinerary = &last
			s.state = StateResolved
		} else {
			s.itinerary = nil
			s.state = StateIdle
		}
		return err
	}
	s.itinerary = &it
	s.state = StateResolved
	return nil
}

// AttachImages uploads files for the location at index. The 5-image cap
// is checked against the whole batch before any upload starts. A
// per-file failure does not abort its siblings: whatever uploaded
// successfully is attached, and the joined error is returned alongside.
func (s *Session) AttachImages(ctx context.Context, index int, files [][]byte, onProgress func(float64)) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.locations) {
		s.mu.Unlock()
		return ErrLocationNotFound
	}
	loc := s.locations[index]
	if len(loc.Images)+len(files) > MaxImagesPerLocation {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d existing + %d new exceeds %d",
			ErrTooManyImages, len(loc.Images), len(files), MaxImagesPerLocation)
	}
	prefix := "place-" + loc.ID + "-" + strconv.Itoa(index)
	s.mu.Unlock()

	uploaded, uploadErr := s.uploader.UploadAll(ctx, prefix, files, onProgress)

	s.mu.Lock()
	defer s.mu.Unlock()
	// the location may have moved while uploading; find it by ID
	i := s.indexOfLocked(loc.ID)
	if i < 0 {
		return ErrLocationNotFound
	}
	s.locations[i].Images = append(s.locations[i].Images, uploaded...)
	return uploadErr
}

// Confirm serializes the session into persistable route data: per-leg
// snap-to-road coordinates, floor-minutes duration, km distance, and a
// 3D path centered on the route's first point.
func (s *Session) Confirm(title, userID string) (route.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateConfirmed {
		return route.Data{}, ErrAlreadyConfirmed
	}
	if s.state != StateResolved || s.itinerary == nil {
		return route.Data{}, ErrNotResolved
	}

	it := *s.itinerary
	n := len(s.locations)
	points := make([]route.Point, n)
	for i, loc := range s.locations {
		p, ok := it.PointCoordinates(i, n)
		if !ok {
			// geocoding snap unavailable: fall back to the resolved input
			p = directions.Point{Lat: loc.Lat, Lng: loc.Lng}
		}
		points[i] = route.Point{
			ID:     loc.ID,
			Name:   loc.Name,
			Lat:    p.Lat,
			Lng:    p.Lng,
			Order:  i,
			Images: loc.Images,
		}
	}

	var path3D []geo.Vec3
	if len(it.OverviewPath) > 0 {
		center := it.OverviewPath[0]
		raw := make([][2]float64, len(it.OverviewPath))
		for i, p := range it.OverviewPath {
			raw[i] = [2]float64{p.Lat, p.Lng}
		}
		path3D = geo.Path3D(raw, center.Lat, center.Lng)
	}

	s.state = StateConfirmed
	return route.Data{
		Title:    title,
		Points:   points,
		Duration: it.TotalDurationMinutes(),
		Distance: it.TotalDistanceKm(),
		Path3D:   path3D,
		UserID:   userID,
	}, nil
}
