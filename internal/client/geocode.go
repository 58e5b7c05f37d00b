package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	userAgent           = "ReConnect Lost and Found App / v1.0"
)

// Place is a reverse-geocoded location.
type Place struct {
	City        string `json:"city" yaml:"city"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*Place, error)
}

type NominatimGeocoder struct {
	baseURL string
	http    *http.Client
}

func NewNominatimGeocoder(baseURL string, hc *http.Client) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &NominatimGeocoder{baseURL: baseURL, http: hc}
}

func (g *NominatimGeocoder) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("reverse geocode: status %d", resp.StatusCode)
	}
	var body struct {
		DisplayName string `json:"display_name"`
		Address     struct {
			City    string `json:"city"`
			Town    string `json:"town"`
			Village string `json:"village"`
			County  string `json:"county"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}

	p := &Place{DisplayName: body.DisplayName}
	for _, c := range []string{body.Address.City, body.Address.Town, body.Address.Village, body.Address.County} {
		if c != "" {
			p.City = c
			break
		}
	}
	if p.DisplayName == "" {
		p.DisplayName = fmt.Sprintf("%.4f, %.4f", lat, lon)
	}
	return p, nil
}
