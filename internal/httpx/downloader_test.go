package httpx

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDownloaderDownloadSuccess(t *testing.T) {
	t.Parallel()

	payload := []byte("zig-0.13.0 archive bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	dl := NewWithClient(server.Client())
	var buf bytes.Buffer
	if err := dl.Download(context.Background(), server.URL, &buf); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if buf.String() != string(payload) {
		t.Fatalf("got %q, want %q", buf.String(), payload)
	}
}

func TestDownloaderNon2xxIsDownloadFailed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dl := NewWithClient(server.Client())
	var buf bytes.Buffer
	err := dl.Download(context.Background(), server.URL, &buf)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestDownloaderParseURLError(t *testing.T) {
	t.Parallel()

	dl := New()
	var buf bytes.Buffer
	err := dl.Download(context.Background(), "://not-a-url", &buf)
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDownloadToStringSuccess(t *testing.T) {
	t.Parallel()

	const body = `{"master":{"version":"0.14.0-dev.1+aaa"}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	dl := NewWithClient(server.Client())
	got, err := dl.DownloadToString(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("DownloadToString failed: %v", err)
	}
	if got != body {
		t.Fatalf("got %q, want %q", got, body)
	}
}
