// Package geolocate resolves the viewer's current position. A failed or
// timed-out lookup degrades to a no-highlight view upstream, it is never
// retried in the background.
package geolocate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrLocationUnavailable = errors.New("location unavailable")

// Timeout bounds a single position lookup.
const Timeout = 10 * time.Second

// Position is a geolocation fix.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Locator obtains the caller's current position.
type Locator interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// Client resolves positions through a geolocation HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: Timeout},
	}
}

func (c *Client) CurrentPosition(ctx context.Context) (Position, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/geolocation/v1/geolocate?key="+c.apiKey, bytes.NewReader([]byte("{}")))
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Position{}, fmt.Errorf("%w: http %d", ErrLocationUnavailable, resp.StatusCode)
	}

	var body struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Position{}, fmt.Errorf("%w: decode: %v", ErrLocationUnavailable, err)
	}
	return Position{Lat: body.Location.Lat, Lng: body.Location.Lng}, nil
}
