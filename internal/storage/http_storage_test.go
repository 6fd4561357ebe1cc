package storage

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestHTTPFetcher_Success(t *testing.T) {
	payload := encodePNG(t, 64, 48)

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if got := r.Header.Get("Accept"); !strings.Contains(got, "image/jpeg") {
			t.Errorf("Accept header = %q, want image types", got)
		}
		w.Write(payload)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5 * time.Second)
	data, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("fetched bytes differ from served payload")
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
}

func TestHTTPFetcher_ClientErrorNotRetried(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5 * time.Second)
	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected an error for 404")
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("server saw %d requests, want 1 (4xx must not be retried)", n)
	}
}

func TestHTTPFetcher_ServerErrorRetried(t *testing.T) {
	if testing.Short() {
		t.Skip("retry backoff sleeps between attempts")
	}

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) < 3 {
			http.Error(w, "flaky upstream", http.StatusBadGateway)
			return
		}
		w.Write([]byte("image bytes"))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5 * time.Second)
	data, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error after retries: %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("data = %q", data)
	}
	if n := atomic.LoadInt32(&requests); n != 3 {
		t.Errorf("server saw %d requests, want 3", n)
	}
}

func TestHTTPFetcher_ContextCanceledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	fetcher := NewHTTPFetcher(5 * time.Second)
	start := time.Now()
	_, err := fetcher.Fetch(ctx, server.URL)
	if err == nil {
		t.Fatal("expected an error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Fetch took %v, should abort backoff when context ends", elapsed)
	}
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	fetcher := NewHTTPFetcher(time.Second)
	if _, err := fetcher.Fetch(context.Background(), "http://[::1]:namedport/img"); err == nil {
		t.Error("expected an error for a malformed URL")
	}
}

func TestDimensions(t *testing.T) {
	data := encodePNG(t, 1500, 900)

	width, height, err := Dimensions(data)
	if err != nil {
		t.Fatalf("Dimensions returned error: %v", err)
	}
	if width != 1500 || height != 900 {
		t.Errorf("Dimensions = %dx%d, want 1500x900", width, height)
	}
}

func TestDimensions_InvalidData(t *testing.T) {
	if _, _, err := Dimensions([]byte("definitely not an image")); err == nil {
		t.Error("expected an error for undecodable bytes")
	}
}
