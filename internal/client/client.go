// Package client talks to the lost-and-found API and carries the reporting and
// claiming logic used by the lostfound command.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const defaultTimeout = 30 * time.Second

// APIError is any non-2xx reply. Message is the server's "message" field when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %d", e.Status)
	}
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// FoundItem mirrors one search result.
type FoundItem struct {
	ItemID       uint64    `json:"item_id" yaml:"item_id"`
	Description  string    `json:"description" yaml:"description"`
	LocationDesc *string   `json:"location_desc" yaml:"location_desc,omitempty"`
	City         string    `json:"city" yaml:"city"`
	Category     string    `json:"category" yaml:"category"`
	Latitude     *float64  `json:"latitude" yaml:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude" yaml:"longitude,omitempty"`
	ImagePath    string    `json:"image_path" yaml:"image_path"`
	FoundDate    time.Time `json:"found_date" yaml:"found_date"`
}

type SearchResult struct {
	Message string      `json:"message" yaml:"message"`
	Results []FoundItem `json:"results" yaml:"results"`
}

type UploadResult struct {
	Message   string `json:"message" yaml:"message"`
	ImagePath string `json:"image_path" yaml:"image_path"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: hc}
}

// Submit posts a validated report. Empty optional fields are not sent.
func (c *Client) Submit(ctx context.Context, f ReportForm) (*UploadResult, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	img, err := os.ReadFile(f.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, kv := range f.fields() {
		if kv[1] == "" {
			continue
		}
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}
	fw, err := w.CreateFormFile("image", filepath.Base(f.ImagePath))
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(img); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/found/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	var out UploadResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Search(ctx context.Context, product, category, location string) (*SearchResult, error) {
	q := url.Values{}
	q.Set("product", product)
	q.Set("category", category)
	q.Set("location", location)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out SearchResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		out.Results = []FoundItem{}
	}
	return &out, nil
}

func (c *Client) Contact(ctx context.Context, itemID uint64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/contact/"+strconv.FormatUint(itemID, 10), nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Contact string `json:"contact"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Contact, nil
}

// FetchImage downloads a stored image. Relative paths resolve against the API
// base URL; absolute URLs (remote media backends) are fetched as-is.
func (c *Client) FetchImage(ctx context.Context, imagePath string) ([]byte, string, error) {
	target := imagePath
	if !strings.HasPrefix(imagePath, "http://") && !strings.HasPrefix(imagePath, "https://") {
		target = c.baseURL + "/" + strings.TrimPrefix(imagePath, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, "", &APIError{Status: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = mimetype.Detect(data).String()
	}
	return data, ct, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
