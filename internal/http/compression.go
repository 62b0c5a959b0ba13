package httpx

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// CompressionConfig holds configuration for the compression middleware.
type CompressionConfig struct {
	Level   int // 1-9; zero means gzip.DefaultCompression
	MinSize int // responses shorter than this are sent uncompressed
	Logger  *slog.Logger
}

var compressibleTypes = map[string]bool{ //nolint:gochecknoglobals // read-only lookup
	"text/html":              true,
	"text/css":               true,
	"text/plain":             true,
	"text/javascript":        true,
	"application/javascript": true,
	"application/json":       true,
	"image/svg+xml":          true,
}

// Compression gzips compressible responses for clients that accept it.
// HEAD requests, 1xx/204/304 responses and already-encoded bodies pass through untouched.
func Compression(cfg CompressionConfig) func(http.Handler) http.Handler {
	level := cfg.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pool := &sync.Pool{New: func() any {
		w, err := gzip.NewWriterLevel(io.Discard, level)
		if err != nil {
			return gzip.NewWriter(io.Discard)
		}
		return w
	}}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !acceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Accept-Encoding")

			gzw := &gzipResponseWriter{ResponseWriter: w, pool: pool, minSize: cfg.MinSize}
			next.ServeHTTP(gzw, r)
			if err := gzw.finish(); err != nil {
				logger.ErrorContext(r.Context(), "closing gzip writer failed", "error", err)
			}
		})
	}
}

// acceptsGzip reports whether gzip is listed in Accept-Encoding with a non-zero q-value.
func acceptsGzip(acceptEncoding string) bool {
	for _, part := range strings.Split(acceptEncoding, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), "gzip") {
			continue
		}
		k, v, ok := strings.Cut(strings.TrimSpace(params), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), "q") {
			return true
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err != nil || q > 0
	}
	return false
}

func isCompressibleContentType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && compressibleTypes[mt]
}

// gzipResponseWriter buffers up to minSize bytes before deciding whether to compress.
type gzipResponseWriter struct {
	http.ResponseWriter
	pool    *sync.Pool
	minSize int

	status  int
	decided bool
	gz      *gzip.Writer
	buf     []byte
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	if status < 200 || status == http.StatusNoContent || status == http.StatusNotModified {
		w.decide(false)
	}
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", http.DetectContentType(b))
	}
	if !w.decided {
		if w.Header().Get("Content-Encoding") != "" || !isCompressibleContentType(w.Header().Get("Content-Type")) {
			w.decide(false)
		} else if len(w.buf)+len(b) < w.minSize {
			w.buf = append(w.buf, b...)
			return len(b), nil
		} else {
			w.decide(true)
		}
	}
	if w.gz != nil {
		return w.gz.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// decide writes the header, flushing any buffered bytes through the chosen writer.
func (w *gzipResponseWriter) decide(compress bool) {
	if w.decided {
		return
	}
	w.decided = true
	if compress {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
		w.gz, _ = w.pool.Get().(*gzip.Writer)
		w.gz.Reset(w.ResponseWriter)
	}
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.ResponseWriter.WriteHeader(w.status)
	if len(w.buf) > 0 {
		buf := w.buf
		w.buf = nil
		if w.gz != nil {
			_, _ = w.gz.Write(buf)
		} else {
			_, _ = w.ResponseWriter.Write(buf)
		}
	}
}

func (w *gzipResponseWriter) finish() error {
	if !w.decided {
		if w.status == 0 && len(w.buf) == 0 {
			return nil
		}
		w.decide(false)
	}
	if w.gz == nil {
		return nil
	}
	err := w.gz.Close()
	w.gz.Reset(io.Discard)
	w.pool.Put(w.gz)
	w.gz = nil
	return err
}

// Flush implements http.Flusher for streaming support.
func (w *gzipResponseWriter) Flush() {
	if !w.decided {
		w.decide(w.Header().Get("Content-Encoding") == "" && isCompressibleContentType(w.Header().Get("Content-Type")))
	}
	if w.gz != nil {
		_ = w.gz.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements http.Hijacker.
func (w *gzipResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("http.Hijacker not supported")
}
