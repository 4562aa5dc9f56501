// Package places wraps the place-search provider: autocomplete,
// place details, and nearby search around a point.
package places

import (
	"context"
	"errors"
)

var ErrPlaces = errors.New("place search failed")

// NearbyRadiusMeters is the search radius used when suggesting places
// around a photo's GPS point.
const NearbyRadiusMeters = 500

// NearbyCategory restricts nearby search to places worth labelling.
const NearbyCategory = "point_of_interest"

// Prediction is one autocomplete suggestion.
type Prediction struct {
	PlaceID     string `json:"placeId"`
	Description string `json:"description"`
}

// Place is a resolved place with coordinates.
type Place struct {
	PlaceID string  `json:"placeId"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Provider is the slice of the search backend the photo flow and the
// session builder need.
type Provider interface {
	Autocomplete(ctx context.Context, input string, near *LatLng) ([]Prediction, error)
	PlaceDetails(ctx context.Context, placeID string) (Place, error)
	NearbySearch(ctx context.Context, at LatLng, radiusMeters int, category string) ([]Place, error)
}

// LatLng is a bare coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
