package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shinyyama/reconnect/internal/match"
	"github.com/shinyyama/reconnect/internal/media"
	"github.com/shinyyama/reconnect/internal/server"
	"github.com/shinyyama/reconnect/internal/testutil"
	"github.com/shinyyama/reconnect/internal/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "wallet.png")
	require.NoError(t, os.WriteFile(p, testutil.PNG, 0o644))
	return p
}

func TestSubmitSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/found/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Red wallet", r.FormValue("description"))
		assert.Equal(t, "18.52", r.FormValue("latitude"))
		_, hasLoc := r.MultipartForm.Value["location_desc"]
		assert.False(t, hasLoc, "empty fields are not sent")
		_, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		assert.Equal(t, "wallet.png", hdr.Filename)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "Found item successfully posted!", "image_path": "uploads/found_images/x.png"})
	}))
	defer srv.Close()

	f := filledForm().Apply(SetImage(writeImage(t)), SetCoordinates(18.52, 73.85))
	res, err := New(srv.URL, nil).Submit(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "uploads/found_images/x.png", res.ImagePath)
}

func TestSubmitValidatesLocally(t *testing.T) {
	_, err := New("http://127.0.0.1:0", nil).Submit(context.Background(), ReportForm{})
	assert.ErrorIs(t, err, ErrRequiredFields)
}

func TestAPIErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Item not found."}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Contact(context.Background(), 999999)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Item not found.", apiErr.Message)
}

// Runs the client against the real router backed by in-memory fakes.
func TestClientAgainstServer(t *testing.T) {
	root := t.TempDir()
	store, err := media.NewLocalStore(filepath.Join(root, "found_images"), "uploads/found_images")
	require.NoError(t, err)
	s := server.New(server.Options{
		Repo:           testutil.NewMemoryRepo(),
		Media:          store,
		Publisher:      &testutil.RecordingPublisher{},
		StaticRoot:     root,
		MaxUploadBytes: 1 << 20,
	})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c := New(srv.URL, nil)
	ctx := context.Background()

	up, err := c.Submit(ctx, filledForm().Apply(SetImage(writeImage(t))))
	require.NoError(t, err)

	found, err := c.Search(ctx, "wallet", "", "")
	require.NoError(t, err)
	require.Len(t, found.Results, 1)
	assert.Equal(t, up.ImagePath, found.Results[0].ImagePath)
	assert.WithinDuration(t, time.Date(2025, 9, 1, 8, 1, 0, 0, time.UTC), found.Results[0].FoundDate, time.Second)

	data, ct, err := c.FetchImage(ctx, found.Results[0].ImagePath)
	require.NoError(t, err)
	assert.Equal(t, testutil.PNG, data)
	assert.Equal(t, "image/png", ct)

	contact, err := c.Contact(ctx, found.Results[0].ItemID)
	require.NoError(t, err)
	assert.Equal(t, "+911234567890", contact)

	_, err = c.Search(ctx, "", "", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestNominatimReverse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCity string
		wantName string
	}{
		{"city", `{"display_name":"MG Road, Pune","address":{"city":"Pune","county":"Haveli"}}`, "Pune", "MG Road, Pune"},
		{"town fallback", `{"display_name":"X","address":{"town":"Lonavala"}}`, "Lonavala", "X"},
		{"village fallback", `{"display_name":"Y","address":{"village":"Wai"}}`, "Wai", "Y"},
		{"county fallback", `{"display_name":"Z","address":{"county":"Haveli"}}`, "Haveli", "Z"},
		{"no name", `{"address":{}}`, "", "18.5204, 73.8567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/reverse", r.URL.Path)
				assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
				assert.Equal(t, "ReConnect Lost and Found App / v1.0", r.Header.Get("User-Agent"))
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, err := NewNominatimGeocoder(srv.URL, nil).Reverse(context.Background(), 18.52039, 73.85670)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCity, p.City)
			assert.Equal(t, tt.wantName, p.DisplayName)
		})
	}
}

func TestIPLocator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","lat":18.52,"lon":73.85}`))
	}))
	defer srv.Close()

	c, err := NewIPLocator(srv.URL, nil).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Coordinates{Latitude: 18.52, Longitude: 73.85}, c)

	fail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail"}`))
	}))
	defer fail.Close()
	_, err = NewIPLocator(fail.URL, nil).Locate(context.Background())
	assert.ErrorIs(t, err, ErrLocationUnavailable)
}

type fixedLocator struct{ c *Coordinates }

func (l fixedLocator) Locate(context.Context) (*Coordinates, error) { return l.c, nil }

type failingGeocoder struct{}

func (failingGeocoder) Reverse(context.Context, float64, float64) (*Place, error) {
	return nil, errors.New("offline")
}

func TestAutofillKeepsCoordinatesOnGeocodeFailure(t *testing.T) {
	f, err := Autofill(context.Background(), ReportForm{}, fixedLocator{&Coordinates{1, 2}}, failingGeocoder{})
	require.Error(t, err)
	require.NotNil(t, f.Latitude)
	assert.Equal(t, 1.0, *f.Latitude)
	assert.Empty(t, f.City)
}

func TestContactAllowed(t *testing.T) {
	high := &match.Result{Likelihood: match.High}
	medium := &match.Result{Likelihood: match.Medium}
	ok := &verify.Result{Verified: true}
	bad := &verify.Result{Reason: verify.MsgUnreadable}

	assert.True(t, ContactAllowed(high, ok))
	assert.False(t, ContactAllowed(medium, ok))
	assert.False(t, ContactAllowed(high, bad))
	assert.False(t, ContactAllowed(nil, ok))
	assert.False(t, ContactAllowed(high, nil))
}
