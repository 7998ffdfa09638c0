package image

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchRejectsEmptyImageKey(t *testing.T) {
	c := New("localhost", 9100)
	if _, err := c.Fetch(Request{}); err != ErrInvalidImageKey {
		t.Fatalf("expected ErrInvalidImageKey, got %v", err)
	}
}

func TestFetchRejectsScaleWithoutDimensions(t *testing.T) {
	c := New("localhost", 9100)
	_, err := c.Fetch(Request{ImageKey: "abc", Scale: ScaleFit})
	if err != ErrMissingScaleDimensions {
		t.Fatalf("expected ErrMissingScaleDimensions, got %v", err)
	}
}

func TestFetchSuccess(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("fake-jpeg-bytes"))
	}))
	defer server.Close()

	host, portStr, _ := strings.Cut(strings.TrimPrefix(server.URL, "http://"), ":")
	port := 0
	for _, ch := range portStr {
		port = port*10 + int(ch-'0')
	}

	c := New(host, port)
	result, err := c.Fetch(Request{
		ImageKey: "img1",
		Scale:    ScaleFit,
		Width:    300,
		Height:   300,
		Format:   FormatJPEG,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(result.Data) != "fake-jpeg-bytes" {
		t.Errorf("unexpected data: %q", result.Data)
	}
	if result.ContentType != "image/jpeg" {
		t.Errorf("unexpected content type: %q", result.ContentType)
	}
	if gotPath != "/api/image/img1" {
		t.Errorf("unexpected path: %q", gotPath)
	}
	if !strings.Contains(gotQuery, "scale=fit") || !strings.Contains(gotQuery, "width=300") {
		t.Errorf("unexpected query: %q", gotQuery)
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	host, portStr, _ := strings.Cut(strings.TrimPrefix(server.URL, "http://"), ":")
	port := 0
	for _, ch := range portStr {
		port = port*10 + int(ch-'0')
	}

	c := New(host, port)
	_, err := c.Fetch(Request{ImageKey: "missing"})
	httpErr, ok := err.(*HTTPError)
	if !ok {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("unexpected status: %d", httpErr.StatusCode)
	}
}
