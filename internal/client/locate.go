package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	DefaultGeolocateURL = "http://ip-api.com/json"
	GeolocationTimeout  = 10 * time.Second
)

var ErrLocationUnavailable = errors.New("could not retrieve location")

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Locator finds the device's current position.
type Locator interface {
	Locate(ctx context.Context) (*Coordinates, error)
}

// IPLocator approximates the position from the caller's public IP.
type IPLocator struct {
	url  string
	http *http.Client
}

func NewIPLocator(endpoint string, hc *http.Client) *IPLocator {
	if endpoint == "" {
		endpoint = DefaultGeolocateURL
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &IPLocator{url: endpoint, http: hc}
}

func (l *IPLocator) Locate(ctx context.Context) (*Coordinates, error) {
	ctx, cancel := context.WithTimeout(ctx, GeolocationTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: status %d", ErrLocationUnavailable, resp.StatusCode)
	}
	var body struct {
		Status string  `json:"status"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	if body.Status != "" && body.Status != "success" {
		return nil, fmt.Errorf("%w: lookup status %q", ErrLocationUnavailable, body.Status)
	}
	return &Coordinates{Latitude: body.Lat, Longitude: body.Lon}, nil
}

// Autofill locates the device, then reverse-geocodes it into the form. A failed
// geocode keeps the coordinates and returns the error so the caller can ask for
// the city manually.
func Autofill(ctx context.Context, f ReportForm, loc Locator, geo Geocoder) (ReportForm, error) {
	c, err := loc.Locate(ctx)
	if err != nil {
		return f, err
	}
	f = f.Apply(SetCoordinates(c.Latitude, c.Longitude))
	p, err := geo.Reverse(ctx, c.Latitude, c.Longitude)
	if err != nil {
		return f, err
	}
	return f.Apply(SetPlace(*p)), nil
}
