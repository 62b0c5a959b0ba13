package httpx

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveCompressed(t *testing.T, cfg CompressionConfig, req *http.Request, h http.HandlerFunc) *http.Response {
	t.Helper()
	rec := httptest.NewRecorder()
	Compression(cfg)(h).ServeHTTP(rec, req)
	resp := rec.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func gunzip(t *testing.T, r io.Reader) string {
	t.Helper()
	gr, err := gzip.NewReader(r)
	require.NoError(t, err)
	defer gr.Close()
	b, err := io.ReadAll(gr)
	require.NoError(t, err)
	return string(b)
}

func htmlBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}
}

func TestCompression_NegotiatesGzip(t *testing.T) {
	body := strings.Repeat("<p>signed in</p>", 200)

	tests := []struct {
		name           string
		acceptEncoding string
		level          int
		wantGzip       bool
	}{
		{"gzip listed", "gzip, deflate, br", 0, true},
		{"fastest level", "gzip", 1, true},
		{"best level", "gzip", 9, true},
		{"gzip refused by q=0", "gzip;q=0, deflate", 0, false},
		{"gzip not listed", "deflate", 0, false},
		{"no header", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			resp := serveCompressed(t, CompressionConfig{Level: tt.level}, req, htmlBody(body))

			if !tt.wantGzip {
				assert.Empty(t, resp.Header.Get("Content-Encoding"))
				got, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, body, string(got))
				return
			}
			assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
			assert.Equal(t, "Accept-Encoding", resp.Header.Get("Vary"))
			assert.Empty(t, resp.Header.Get("Content-Length"))
			assert.Equal(t, body, gunzip(t, resp.Body))
		})
	}
}

func TestCompression_SkipsIncompressibleResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"image", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(bytes.Repeat([]byte{0x89}, 4096))
		}},
		{"already encoded", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/css")
			w.Header().Set("Content-Encoding", "br")
			_, _ = w.Write([]byte("opaque"))
		}},
		{"no content", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}},
		{"not modified", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotModified)
		}},
		{"redirect", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Encoding", "gzip")
			resp := serveCompressed(t, CompressionConfig{MinSize: 32}, req, tt.handler)
			assert.NotEqual(t, "gzip", resp.Header.Get("Content-Encoding"))
		})
	}
}

func TestCompression_MinSize(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	resp := serveCompressed(t, CompressionConfig{MinSize: 1024}, req, htmlBody("short"))

	assert.Empty(t, resp.Header.Get("Content-Encoding"))
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "short", string(got))
}

func TestCompression_HeadPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	resp := serveCompressed(t, CompressionConfig{}, req, htmlBody(strings.Repeat("x", 4096)))

	assert.Empty(t, resp.Header.Get("Content-Encoding"))
}

func TestCompression_StreamedWritesAreReassembled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	resp := serveCompressed(t, CompressionConfig{MinSize: 64}, req, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		for range 10 {
			_, _ = w.Write([]byte(`{"authorized":false}`))
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	})

	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	assert.Equal(t, strings.Repeat(`{"authorized":false}`, 10), gunzip(t, resp.Body))
}

func TestAcceptsGzip(t *testing.T) {
	assert.True(t, acceptsGzip("gzip"))
	assert.True(t, acceptsGzip("deflate, GZIP;q=0.5"))
	assert.False(t, acceptsGzip("gzip;q=0"))
	assert.False(t, acceptsGzip("gzip;q=0.0"))
	assert.False(t, acceptsGzip("br"))
	assert.False(t, acceptsGzip(""))
}
