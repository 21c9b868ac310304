package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logsPage struct {
	Logs []struct {
		Method         string            `json:"method"`
		Path           string            `json:"path"`
		ResponseStatus int               `json:"response_status"`
		Headers        map[string]string `json:"headers"`
		RequestID      string            `json:"request_id"`
		ClientIP       string            `json:"client_ip"`
	} `json:"logs"`
	Count int `json:"count"`
}

func TestLogsEndpoint_RecordsTraffic(t *testing.T) {
	ts := newTestServer(t)

	getJSON(t, ts, "/v1/health", nil)
	getJSON(t, ts, "/v1/models", nil)

	var page logsPage
	resp := getJSON(t, ts, "/v1/logs", &page)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 2, page.Count)
	// Newest first.
	assert.Equal(t, "/v1/models", page.Logs[0].Path)
	assert.Equal(t, "/v1/health", page.Logs[1].Path)
	assert.Equal(t, http.StatusOK, page.Logs[0].ResponseStatus)
	assert.True(t, strings.HasPrefix(page.Logs[0].RequestID, "req_"))
	assert.NotEmpty(t, page.Logs[0].ClientIP)
}

func TestLogsEndpoint_Filters(t *testing.T) {
	ts := newTestServer(t)

	getJSON(t, ts, "/v1/health", nil)
	getJSON(t, ts, "/v1/models", nil)
	resp, err := http.Post(ts.URL+"/v1/models/nope/download", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	var page logsPage
	getJSON(t, ts, "/v1/logs?method=post", &page)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "POST", page.Logs[0].Method)

	getJSON(t, ts, "/v1/logs?path=/v1/health", &page)
	require.Equal(t, 1, page.Count)

	getJSON(t, ts, "/v1/logs?status=400", &page)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, http.StatusBadRequest, page.Logs[0].ResponseStatus)

	getJSON(t, ts, "/v1/logs?limit=2", &page)
	assert.Equal(t, 2, page.Count)
}

func TestLogsEndpoint_RedactsSensitiveHeaders(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	var page logsPage
	getJSON(t, ts, "/v1/logs?path=/v1/health", &page)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "[REDACTED]", page.Logs[0].Headers["Authorization"])
}

func TestGetLogEndpoint(t *testing.T) {
	ts := newTestServer(t)
	getJSON(t, ts, "/v1/health", nil)

	var page logsPage
	getJSON(t, ts, "/v1/logs", &page)
	require.Equal(t, 1, page.Count)

	var entry struct {
		RequestID string `json:"request_id"`
		Path      string `json:"path"`
	}
	resp := getJSON(t, ts, "/v1/logs/"+page.Logs[0].RequestID, &entry)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, page.Logs[0].RequestID, entry.RequestID)
	assert.Equal(t, "/v1/health", entry.Path)
}

func TestGetLogEndpoint_NotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/logs/req_missing")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "request log not found")
}

func TestLogsStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	getJSON(t, ts, "/v1/health", nil)
	getJSON(t, ts, "/v1/health", nil)
	getJSON(t, ts, "/v1/models", nil)

	var stats struct {
		TotalRequests       int            `json:"total_requests"`
		AvgProcessingTimeMS float64        `json:"avg_processing_time_ms"`
		StatusCodes         map[string]int `json:"status_codes"`
		Methods             map[string]int `json:"methods"`
		Paths               map[string]int `json:"paths"`
	}
	resp := getJSON(t, ts, "/v1/logs/stats", &stats)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, stats.TotalRequests)
	assert.Equal(t, 3, stats.StatusCodes["200"])
	assert.Equal(t, 3, stats.Methods["GET"])
	assert.Equal(t, 2, stats.Paths["/v1/health"])
	assert.GreaterOrEqual(t, stats.AvgProcessingTimeMS, float64(0))
}

func TestClearLogsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	getJSON(t, ts, "/v1/health", nil)
	getJSON(t, ts, "/v1/models", nil)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/logs", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Cleared int `json:"cleared"`
	}
	require.NoError(t, jsonDecode(resp, &body))
	assert.Equal(t, 2, body.Cleared)

	// The DELETE itself is recorded after its handler ran, so exactly
	// one entry remains.
	var page logsPage
	getJSON(t, ts, "/v1/logs", &page)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, http.MethodDelete, page.Logs[0].Method)
}
