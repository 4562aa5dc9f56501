// Package photoflow binds a batch of photos to locations before they
// enter a route-editing session. Every photo must end up with exactly
// one location; the flow refuses to hand off otherwise.
package photoflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jung602/roro/internal/places"
)

var (
	ErrMissingLocation = errors.New("photo has no location")
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrTooFewPhotos    = errors.New("too few photos")
)

// MinPhotos is the smallest batch that makes a route worth saving.
const MinPhotos = 2

// Photo is one batch entry. GPS fields are populated from EXIF when the
// image carried them.
type Photo struct {
	Data   []byte
	Lat    float64
	Lng    float64
	HasGPS bool

	location *Location
}

// Location is the place a photo was taken, chosen by the user from a
// suggestion, a search result, or a custom title plus a map point.
type Location struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Assignment pairs a photo's index with its confirmed location.
type Assignment struct {
	PhotoIndex int      `json:"photoIndex"`
	Location   Location `json:"location"`
	Image      []byte   `json:"-"`
}

// Batch drives one photo-to-location assignment round. Handlers share
// one batch across requests, so every access to the photo slice is
// mutex-guarded.
type Batch struct {
	mu     sync.Mutex
	photos []Photo
	places places.Provider
}

// NewBatch extracts GPS metadata from each image and prepares the
// batch. Fewer than MinPhotos images is rejected up front.
func NewBatch(images [][]byte, provider places.Provider) (*Batch, error) {
	if len(images) < MinPhotos {
		return nil, fmt.Errorf("%w: got %d, need at least %d", ErrTooFewPhotos, len(images), MinPhotos)
	}
	photos := make([]Photo, len(images))
	for i, img := range images {
		p := Photo{Data: img}
		p.Lat, p.Lng, p.HasGPS = ExtractGPS(img)
		photos[i] = p
	}
	return &Batch{photos: photos, places: provider}, nil
}

func (b *Batch) Photos() []Photo {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Photo, len(b.photos))
	copy(out, b.photos)
	return out
}

// Suggestions lists nearby places for one photo. The search centers on
// the photo's GPS point, or on a manually chosen point when the photo
// has none; a GPS-less photo with no manual point yields no
// suggestions.
func (b *Batch) Suggestions(ctx context.Context, index int, manual *places.LatLng) ([]places.Place, error) {
	b.mu.Lock()
	if index < 0 || index >= len(b.photos) {
		b.mu.Unlock()
		return nil, ErrPhotoNotFound
	}
	at := manual
	if at == nil && b.photos[index].HasGPS {
		at = &places.LatLng{Lat: b.photos[index].Lat, Lng: b.photos[index].Lng}
	}
	b.mu.Unlock()
	if at == nil {
		return nil, nil
	}
	return b.places.NearbySearch(ctx, *at, places.NearbyRadiusMeters, places.NearbyCategory)
}

// Assign sets the location for one photo, replacing any prior choice.
func (b *Batch) Assign(index int, loc Location) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.photos) {
		return ErrPhotoNotFound
	}
	b.photos[index].location = &loc
	return nil
}

// AssignPlace records a suggestion or search result as the photo's
// location.
func (b *Batch) AssignPlace(index int, p places.Place) error {
	return b.Assign(index, Location{Name: p.Name, Address: p.Address, Lat: p.Lat, Lng: p.Lng})
}

// Location returns the current choice for one photo.
func (b *Batch) Location(index int) (Location, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.photos) || b.photos[index].location == nil {
		return Location{}, false
	}
	return *b.photos[index].location, true
}

// Confirm hands the batch off once every photo has a location. On
// failure the error names the first unassigned photo and nothing is
// returned.
func (b *Batch) Confirm() ([]Assignment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.photos {
		if p.location == nil {
			return nil, fmt.Errorf("%w: photo %d", ErrMissingLocation, i)
		}
	}
	out := make([]Assignment, len(b.photos))
	for i, p := range b.photos {
		out[i] = Assignment{PhotoIndex: i, Location: *p.location, Image: p.Data}
	}
	return out, nil
}
