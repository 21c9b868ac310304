// Package requestlog keeps an in-memory ring of recent HTTP request and
// response records for the inspection endpoints. Entries are redacted
// and truncated at insert time, so nothing sensitive or oversized is
// ever retained.
package requestlog

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultCapacity bounds how many entries the ring retains.
	DefaultCapacity = 1000

	// maxBodyBytes bounds how much of one body an entry stores.
	maxBodyBytes = 10000
)

// sensitiveHeaders are replaced with a redaction marker before an entry
// is stored.
var sensitiveHeaders = map[string]struct{}{
	"authorization":  {},
	"cookie":         {},
	"x-api-key":      {},
	"x-auth-token":   {},
	"x-access-token": {},
	"x-csrf-token":   {},
	"x-session-id":   {},
}

// Entry is one recorded request/response pair.
type Entry struct {
	Timestamp        time.Time         `json:"timestamp"`
	Method           string            `json:"method"`
	Path             string            `json:"path"`
	QueryParams      map[string]string `json:"query_params"`
	Headers          map[string]string `json:"headers"`
	RequestBody      string            `json:"request_body,omitempty"`
	ResponseStatus   int               `json:"response_status"`
	ResponseBody     string            `json:"response_body,omitempty"`
	ResponseHeaders  map[string]string `json:"response_headers"`
	ProcessingTimeMS float64           `json:"processing_time_ms"`
	ClientIP         string            `json:"client_ip"`
	UserAgent        string            `json:"user_agent"`
	RequestID        string            `json:"request_id"`
}

// Record is the raw input for one entry. The logger assigns the id and
// timestamp and applies redaction and truncation.
type Record struct {
	Method          string
	Path            string
	QueryParams     map[string]string
	Headers         map[string]string
	RequestBody     string
	ResponseStatus  int
	ResponseBody    string
	ResponseHeaders map[string]string
	ProcessingTime  time.Duration
	ClientIP        string
	UserAgent       string
}

// Filter narrows List results.
type Filter struct {
	Method string // exact match, case-insensitive
	Path   string // substring match
	Status int    // exact match; zero matches all
	Limit  int    // newest-first cap; zero means no cap
}

// Stats summarizes the retained entries.
type Stats struct {
	TotalRequests       int            `json:"total_requests"`
	AvgProcessingTimeMS float64        `json:"avg_processing_time_ms"`
	StatusCodes         map[int]int    `json:"status_codes"`
	Methods             map[string]int `json:"methods"`
	Paths               map[string]int `json:"paths"`
}

// Logger is a bounded, concurrency-safe request log.
type Logger struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

// New creates a logger retaining at most capacity entries. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Logger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Logger{capacity: capacity}
}

// Log stores one request/response pair and returns its assigned id. The
// oldest entry is dropped once the ring is full.
func (l *Logger) Log(rec Record) string {
	entry := Entry{
		Timestamp:        time.Now(),
		Method:           rec.Method,
		Path:             rec.Path,
		QueryParams:      rec.QueryParams,
		Headers:          redactHeaders(rec.Headers),
		RequestBody:      truncateBody(rec.RequestBody),
		ResponseStatus:   rec.ResponseStatus,
		ResponseBody:     truncateBody(rec.ResponseBody),
		ResponseHeaders:  redactHeaders(rec.ResponseHeaders),
		ProcessingTimeMS: float64(rec.ProcessingTime.Microseconds()) / 1000.0,
		ClientIP:         rec.ClientIP,
		UserAgent:        rec.UserAgent,
		RequestID:        "req_" + uuid.NewString(),
	}

	l.mu.Lock()
	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:l.capacity-1]
	}
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	slog.Debug("Logged request", "request_id", entry.RequestID, "method", entry.Method, "path", entry.Path, "status", entry.ResponseStatus)
	return entry.RequestID
}

// List returns entries newest first, filtered.
func (l *Logger) List(f Filter) []Entry {
	l.mu.RLock()
	snapshot := make([]Entry, len(l.entries))
	copy(snapshot, l.entries)
	l.mu.RUnlock()

	out := make([]Entry, 0, len(snapshot))
	for _, e := range snapshot {
		if f.Method != "" && !strings.EqualFold(e.Method, f.Method) {
			continue
		}
		if f.Path != "" && !strings.Contains(e.Path, f.Path) {
			continue
		}
		if f.Status != 0 && e.ResponseStatus != f.Status {
			continue
		}
		out = append(out, e)
	}

	// Entries are stored in arrival order; newest first means reversed.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// Get returns the entry with the given request id.
func (l *Logger) Get(requestID string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, e := range l.entries {
		if e.RequestID == requestID {
			return e, true
		}
	}
	return Entry{}, false
}

// Stats aggregates the retained entries. Paths keeps only the ten most
// frequent.
func (l *Logger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Stats{
		StatusCodes: map[int]int{},
		Methods:     map[string]int{},
		Paths:       map[string]int{},
	}
	if len(l.entries) == 0 {
		return stats
	}

	var totalMS float64
	pathCounts := map[string]int{}
	for _, e := range l.entries {
		totalMS += e.ProcessingTimeMS
		stats.StatusCodes[e.ResponseStatus]++
		stats.Methods[e.Method]++
		pathCounts[e.Path]++
	}

	stats.TotalRequests = len(l.entries)
	stats.AvgProcessingTimeMS = math.Round(totalMS/float64(len(l.entries))*100) / 100
	stats.Paths = topPaths(pathCounts, 10)
	return stats
}

// Clear drops all entries and returns how many were dropped.
func (l *Logger) Clear() int {
	l.mu.Lock()
	count := len(l.entries)
	l.entries = nil
	l.mu.Unlock()

	slog.Info("Cleared request logs", "count", count)
	return count
}

func redactHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string, len(headers))
	for key, value := range headers {
		if _, sensitive := sensitiveHeaders[strings.ToLower(key)]; sensitive {
			filtered[key] = "[REDACTED]"
		} else {
			filtered[key] = value
		}
	}
	return filtered
}

func truncateBody(body string) string {
	if len(body) <= maxBodyBytes {
		return body
	}
	return body[:maxBodyBytes] + fmt.Sprintf("... [TRUNCATED - Original length: %d chars]", len(body))
}

func topPaths(counts map[string]int, n int) map[string]int {
	if len(counts) <= n {
		return counts
	}

	type pathCount struct {
		path  string
		count int
	}
	ranked := make([]pathCount, 0, len(counts))
	for path, count := range counts {
		ranked = append(ranked, pathCount{path, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].path < ranked[j].path
	})

	top := make(map[string]int, n)
	for _, pc := range ranked[:n] {
		top[pc.path] = pc.count
	}
	return top
}
