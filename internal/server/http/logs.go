package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/whisperd/internal/requestlog"
)

type (
	LogsResponseDTO struct {
		Logs  []requestlog.Entry `json:"logs"`
		Count int                `json:"count"`
	}

	LogStatsDTO struct {
		TotalRequests       int            `json:"total_requests"`
		AvgProcessingTimeMS float64        `json:"avg_processing_time_ms"`
		StatusCodes         map[string]int `json:"status_codes"`
		Methods             map[string]int `json:"methods"`
		Paths               map[string]int `json:"paths"`
	}

	ClearLogsResponseDTO struct {
		Cleared int `json:"cleared"`
	}
)

type (
	ListLogsInput struct {
		Method string `query:"method"`
		Path   string `query:"path"`
		Status int    `query:"status"`
		Limit  int    `query:"limit" minimum:"0"`
	}

	ListLogsOutput struct {
		Body LogsResponseDTO
	}

	GetLogInput struct {
		ID string `path:"id"`
	}

	GetLogOutput struct {
		Body requestlog.Entry
	}

	LogStatsOutput struct {
		Body LogStatsDTO
	}

	ClearLogsOutput struct {
		Body ClearLogsResponseDTO
	}
)

// LogsHandler handles HTTP requests for the request audit log.
type LogsHandler struct {
	audit *requestlog.Logger
}

// NewLogsHandler creates a new LogsHandler instance.
func NewLogsHandler(api huma.API, audit *requestlog.Logger) *LogsHandler {
	h := &LogsHandler{audit: audit}

	huma.Register(api, huma.Operation{
		OperationID:   "list-request-logs",
		Method:        http.MethodGet,
		Path:          "/v1/logs",
		Summary:       "List recorded requests, newest first",
		Tags:          []string{"logs"},
		DefaultStatus: http.StatusOK,
	}, h.handleList)

	huma.Register(api, huma.Operation{
		OperationID:   "get-request-log",
		Method:        http.MethodGet,
		Path:          "/v1/logs/{id}",
		Summary:       "Get one recorded request by id",
		Tags:          []string{"logs"},
		DefaultStatus: http.StatusOK,
	}, h.handleGet)

	huma.Register(api, huma.Operation{
		OperationID:   "request-log-stats",
		Method:        http.MethodGet,
		Path:          "/v1/logs/stats",
		Summary:       "Aggregate statistics over recorded requests",
		Tags:          []string{"logs"},
		DefaultStatus: http.StatusOK,
	}, h.handleStats)

	huma.Register(api, huma.Operation{
		OperationID:   "clear-request-logs",
		Method:        http.MethodDelete,
		Path:          "/v1/logs",
		Summary:       "Clear all recorded requests",
		Tags:          []string{"logs"},
		DefaultStatus: http.StatusOK,
	}, h.handleClear)

	return h
}

// handleList handles the list-request-logs operation.
func (h *LogsHandler) handleList(ctx context.Context, input *ListLogsInput) (*ListLogsOutput, error) {
	entries := h.audit.List(requestlog.Filter{
		Method: input.Method,
		Path:   input.Path,
		Status: input.Status,
		Limit:  input.Limit,
	})

	return &ListLogsOutput{
		Body: LogsResponseDTO{Logs: entries, Count: len(entries)},
	}, nil
}

// handleGet handles the get-request-log operation.
func (h *LogsHandler) handleGet(ctx context.Context, input *GetLogInput) (*GetLogOutput, error) {
	entry, ok := h.audit.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("request log not found", nil)
	}
	return &GetLogOutput{Body: entry}, nil
}

// handleStats handles the request-log-stats operation.
func (h *LogsHandler) handleStats(ctx context.Context, _ *struct{}) (*LogStatsOutput, error) {
	stats := h.audit.Stats()

	statusCodes := make(map[string]int, len(stats.StatusCodes))
	for code, n := range stats.StatusCodes {
		statusCodes[strconv.Itoa(code)] = n
	}

	return &LogStatsOutput{
		Body: LogStatsDTO{
			TotalRequests:       stats.TotalRequests,
			AvgProcessingTimeMS: stats.AvgProcessingTimeMS,
			StatusCodes:         statusCodes,
			Methods:             stats.Methods,
			Paths:               stats.Paths,
		},
	}, nil
}

// handleClear handles the clear-request-logs operation.
func (h *LogsHandler) handleClear(ctx context.Context, _ *struct{}) (*ClearLogsOutput, error) {
	return &ClearLogsOutput{
		Body: ClearLogsResponseDTO{Cleared: h.audit.Clear()},
	}, nil
}
