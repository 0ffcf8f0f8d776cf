package downloader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProbeRangeCapableServer(t *testing.T) {
	data := make([]byte, 1234)
	server := serveData(t, data, nil)

	info, err := Probe(context.Background(), testClient(), server.URL)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Size != 1234 {
		t.Errorf("size = %d, want 1234", info.Size)
	}
	if !info.RangeSupport {
		t.Error("range support not detected")
	}
}

func TestProbeHeadUnhelpfulFallsBackToRangedGet(t *testing.T) {
	// HEAD gives nothing useful; the ranged GET answers 206 with the total
	// in Content-Range.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Header.Get("Range") == "bytes=0-0" {
			w.Header().Set("Content-Range", "bytes 0-0/5000")
			w.Header().Set("Content-Length", "1")
			w.WriteHeader(http.StatusPartialContent)
			w.Write([]byte{0})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	info, err := Probe(context.Background(), testClient(), server.URL)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Size != 5000 {
		t.Errorf("size = %d, want 5000", info.Size)
	}
	if !info.RangeSupport {
		t.Error("range support not detected from 206 fallback")
	}
}

func TestProbeNoRangeSupport(t *testing.T) {
	body := []byte("full content only")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			w.Write(body)
		}
	}))
	t.Cleanup(server.Close)

	info, err := Probe(context.Background(), testClient(), server.URL)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.RangeSupport {
		t.Error("range support reported for a server that ignores ranges")
	}
	if info.Size != int64(len(body)) {
		t.Errorf("size = %d, want %d", info.Size, len(body))
	}
}

func TestProbeSizeUnknown(t *testing.T) {
	// WriteHeader before any body write suppresses Content-Length entirely.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			w.Write([]byte("streamed"))
		}
	}))
	t.Cleanup(server.Close)

	_, err := Probe(context.Background(), testClient(), server.URL)
	if !errors.Is(err, ErrSizeUnknown) {
		t.Fatalf("got %v, want ErrSizeUnknown", err)
	}
}

func TestProbeContentDispositionFilename(t *testing.T) {
	data := make([]byte, 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="archive.tar.gz"`)
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Length", "10")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			w.Write(data)
		}
	}))
	t.Cleanup(server.Close)

	info, err := Probe(context.Background(), testClient(), server.URL)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Filename != "archive.tar.gz" {
		t.Errorf("filename = %q, want archive.tar.gz", info.Filename)
	}
}

func TestParseContentRangeTotal(t *testing.T) {
	tests := []struct {
		header string
		want   int64
		ok     bool
	}{
		{"bytes 0-0/12345", 12345, true},
		{"bytes 0-499/500", 500, true},
		{"bytes 0-0/*", 0, false},
		{"bytes 0-0", 0, false},
		{"", 0, false},
		{"bytes 0-0/", 0, false},
		{"bytes 0-0/-3", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseContentRangeTotal(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseContentRangeTotal(%q) = (%d, %v), want (%d, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
