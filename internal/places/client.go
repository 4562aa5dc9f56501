package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client talks to a Places-style HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type wireLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type wirePrediction struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

type wirePlace struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
	Geometry struct {
		Location wireLatLng `json:"location"`
	} `json:"geometry"`
}

func (c *Client) Autocomplete(ctx context.Context, input string, near *LatLng) ([]Prediction, error) {
	q := url.Values{}
	q.Set("input", input)
	if near != nil {
		q.Set("location", formatLatLng(near.Lat, near.Lng))
	}

	var body struct {
		Status      string           `json:"status"`
		Predictions []wirePrediction `json:"predictions"`
	}
	if err := c.get(ctx, "/place/autocomplete/json", q, &body, func() string { return body.Status }); err != nil {
		return nil, err
	}
	out := make([]Prediction, len(body.Predictions))
	for i, p := range body.Predictions {
		out[i] = Prediction{PlaceID: p.PlaceID, Description: p.Description}
	}
	return out, nil
}

func (c *Client) PlaceDetails(ctx context.Context, placeID string) (Place, error) {
	q := url.Values{}
	q.Set("place_id", placeID)

	var body struct {
		Status string `json:"status"`
		Result struct {
			PlaceID          string `json:"place_id"`
			Name             string `json:"name"`
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location wireLatLng `json:"location"`
			} `json:"geometry"`
		} `json:"result"`
	}
	err := c.get(ctx, "/place/details/json", q, &body, func() string { return body.Status })
	if err != nil {
		return Place{}, err
	}
	return Place{
		PlaceID: body.Result.PlaceID,
		Name:    body.Result.Name,
		Address: body.Result.FormattedAddress,
		Lat:     body.Result.Geometry.Location.Lat,
		Lng:     body.Result.Geometry.Location.Lng,
	}, nil
}

func (c *Client) NearbySearch(ctx context.Context, at LatLng, radiusMeters int, category string) ([]Place, error) {
	q := url.Values{}
	q.Set("location", formatLatLng(at.Lat, at.Lng))
	q.Set("radius", strconv.Itoa(radiusMeters))
	q.Set("type", category)

	var body struct {
		Status  string      `json:"status"`
		Results []wirePlace `json:"results"`
	}
	err := c.get(ctx, "/place/nearbysearch/json", q, &body, func() string { return body.Status })
	if err != nil {
		return nil, err
	}
	out := make([]Place, len(body.Results))
	for i, p := range body.Results {
		out[i] = Place{
			PlaceID: p.PlaceID,
			Name:    p.Name,
			Address: p.Vicinity,
			Lat:     p.Geometry.Location.Lat,
			Lng:     p.Geometry.Location.Lng,
		}
	}
	return out, nil
}

// get performs a provider request, decodes into dst, and checks the
// provider's status field via statusFn after decoding.
func (c *Client) get(ctx context.Context, path string, q url.Values, dst any, statusFn func() string) error {
	q.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlaces, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlaces, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http %d", ErrPlaces, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrPlaces, err)
	}
	if status := statusFn(); status != "OK" && status != "ZERO_RESULTS" {
		return fmt.Errorf("%w: status %s", ErrPlaces, status)
	}
	return nil
}

func formatLatLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}
