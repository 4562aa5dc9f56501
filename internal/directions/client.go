package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client resolves walking itineraries against a Google-style directions
// REST endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

type wireLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type wireValue struct {
	Value float64 `json:"value"`
}

type wireStep struct {
	StartLocation wireLatLng `json:"start_location"`
	EndLocation   wireLatLng `json:"end_location"`
	Polyline      struct {
		Points string `json:"points"`
	} `json:"polyline"`
}

type wireLeg struct {
	StartLocation wireLatLng `json:"start_location"`
	EndLocation   wireLatLng `json:"end_location"`
	Distance      wireValue  `json:"distance"`
	Duration      wireValue  `json:"duration"`
	Steps         []wireStep `json:"steps"`
}

type wireResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs             []wireLeg `json:"legs"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
}

// Route requests a walking itinerary. Travel mode is fixed: this service
// only ever builds walking routes.
func (c *Client) Route(ctx context.Context, origin, destination Waypoint, via []Waypoint) (Itinerary, error) {
	params := url.Values{}
	params.Set("origin", origin.locationParam())
	params.Set("destination", destination.locationParam())
	params.Set("mode", "walking")
	if len(via) > 0 {
		stops := make([]string, len(via))
		for i, w := range via {
			stops[i] = w.locationParam()
		}
		params.Set("waypoints", strings.Join(stops, "|"))
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/directions/json?"+params.Encode(), nil)
	if err != nil {
		return Itinerary{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Itinerary{}, fmt.Errorf("%w: %v", ErrDirections, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Itinerary{}, fmt.Errorf("%w: http %d", ErrDirections, resp.StatusCode)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return Itinerary{}, fmt.Errorf("%w: %v", ErrDirections, err)
	}
	if wire.Status != "OK" || len(wire.Routes) == 0 {
		return Itinerary{}, fmt.Errorf("%w: status %s", ErrDirections, wire.Status)
	}

	route := wire.Routes[0]
	it := Itinerary{
		Legs:         make([]Leg, len(route.Legs)),
		OverviewPath: DecodePolyline(route.OverviewPolyline.Points),
	}
	for i, wl := range route.Legs {
		leg := Leg{
			Start:           Point(wl.StartLocation),
			End:             Point(wl.EndLocation),
			DistanceMeters:  wl.Distance.Value,
			DurationSeconds: wl.Duration.Value,
			Steps:           make([]Step, len(wl.Steps)),
		}
		for j, ws := range wl.Steps {
			leg.Steps[j] = Step{
				Start: Point(ws.StartLocation),
				End:   Point(ws.EndLocation),
				Path:  DecodePolyline(ws.Polyline.Points),
			}
		}
		it.Legs[i] = leg
	}
	return it, nil
}
