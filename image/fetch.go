package image

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Scale selects how the Core should fit an image into width x height.
type Scale string

const (
	ScaleFit     Scale = "fit"
	ScaleFill    Scale = "fill"
	ScaleStretch Scale = "stretch"
)

// Format selects the Core's response encoding.
type Format string

const (
	FormatJPEG Format = "image/jpeg"
	FormatPNG  Format = "image/png"
)

// ErrInvalidImageKey is returned when Fetch is called with an empty key.
var ErrInvalidImageKey = errors.New("image: invalid image key")

// ErrMissingScaleDimensions is returned when a Scale is requested
// without both Width and Height set.
var ErrMissingScaleDimensions = errors.New("image: scale requires width and height")

// HTTPError reports a non-2xx response from the Core's image service.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("image: http error: %d", e.StatusCode)
}

// Request describes one image fetch.
type Request struct {
	ImageKey string
	Scale    Scale
	Width    int
	Height   int
	Format   Format
}

// Result is the fetched image and the Content-Type the Core reported.
type Result struct {
	Data        []byte
	ContentType string
}

// Client fetches images from a Roon Core's HTTP image service.
type Client struct {
	Host       string
	Port       int
	HTTPClient *http.Client
}

// New builds a Client targeting the given Core host:port.
func New(host string, port int) *Client {
	return &Client{Host: host, Port: port, HTTPClient: &http.Client{}}
}

// Fetch performs the GET against /api/image/<imageKey>.
func (c *Client) Fetch(req Request) (Result, error) {
	if req.ImageKey == "" {
		return Result{}, ErrInvalidImageKey
	}
	if req.Scale != "" && (req.Width <= 0 || req.Height <= 0) {
		return Result{}, ErrMissingScaleDimensions
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	u := url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/api/image/" + req.ImageKey,
	}
	q := url.Values{}
	if req.Scale != "" {
		q.Set("scale", string(req.Scale))
	}
	if req.Width > 0 {
		q.Set("width", strconv.Itoa(req.Width))
	}
	if req.Height > 0 {
		q.Set("height", strconv.Itoa(req.Height))
	}
	if req.Format != "" {
		q.Set("format", string(req.Format))
	}
	u.RawQuery = q.Encode()

	resp, err := httpClient.Get(u.String())
	if err != nil {
		return Result{}, fmt.Errorf("image: network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &HTTPError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("image: invalid response: %w", err)
	}

	return Result{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}
