package http

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/ekisa-team/whisperd/internal/requestlog"
)

// captureLimit bounds how much of a request or response body the audit
// middleware buffers. The audit log truncates further on its own.
const captureLimit = 64 << 10

// corsMiddleware answers preflight requests and stamps the allow
// headers on everything else. A "*" entry allows any origin; otherwise
// the request origin must match the configured list.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	wildcard := slices.Contains(origins, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case wildcard:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case slices.Contains(origins, r.Header.Get("Origin")):
			w.Header().Set("Access-Control-Allow-Origin", r.Header.Get("Origin"))
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// auditMiddleware records every request and its response in the audit
// log. Bodies are captured only up to captureLimit, and request bodies
// only for textual content types so audio uploads are not buffered.
func auditMiddleware(audit *requestlog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var reqBody *bodyCapture
		if r.Body != nil && capturable(r.Header.Get("Content-Type")) {
			reqBody = &bodyCapture{rc: r.Body}
			r.Body = reqBody
		}

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		record := requestlog.Record{
			Method:          r.Method,
			Path:            r.URL.Path,
			QueryParams:     firstValues(r.URL.Query()),
			Headers:         flattenHeader(r.Header),
			ResponseStatus:  rec.status,
			ResponseBody:    rec.body.String(),
			ResponseHeaders: flattenHeader(rec.Header()),
			ProcessingTime:  time.Since(start),
			ClientIP:        clientIP(r),
			UserAgent:       r.UserAgent(),
		}
		if reqBody != nil {
			record.RequestBody = reqBody.buf.String()
		}
		audit.Log(record)
	})
}

// capturable reports whether a request body of the given content type
// is worth recording verbatim.
func capturable(contentType string) bool {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))

	switch {
	case mediaType == "application/json",
		mediaType == "application/x-www-form-urlencoded",
		strings.HasPrefix(mediaType, "text/"):
		return true
	}
	return false
}

// bodyCapture tees the first captureLimit bytes of a body while the
// handler consumes it.
type bodyCapture struct {
	rc  io.ReadCloser
	buf bytes.Buffer
}

func (b *bodyCapture) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if n > 0 && b.buf.Len() < captureLimit {
		room := captureLimit - b.buf.Len()
		if room > n {
			room = n
		}
		b.buf.Write(p[:room])
	}
	return n, err
}

func (b *bodyCapture) Close() error {
	return b.rc.Close()
}

// responseRecorder captures the status code and the first
// captureLimit bytes of the response body.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.body.Len() < captureLimit {
		room := captureLimit - w.body.Len()
		if room > len(p) {
			room = len(p)
		}
		w.body.Write(p[:room])
	}
	return w.ResponseWriter.Write(p)
}

// Flush passes streaming writes through to the wrapped writer.
func (w *responseRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func firstValues(values map[string][]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			out[key] = vals[0]
		}
	}
	return out
}

func flattenHeader(h http.Header) map[string]string {
	return firstValues(h)
}

// clientIP prefers the first hop of X-Forwarded-For and falls back to
// the connection peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
