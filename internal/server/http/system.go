package http

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/whisperd/internal/catalog"
	"github.com/ekisa-team/whisperd/internal/config"
	"github.com/ekisa-team/whisperd/internal/models"
)

//go:embed dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "dashboard.html"))

type (
	StorageStatusDTO struct {
		ExternalStorageEnabled bool    `json:"external_storage_enabled"`
		EffectiveCacheDir      *string `json:"effective_cache_dir"`
	}

	HealthResponseDTO struct {
		Status          string           `json:"status"`
		Device          string           `json:"device"`
		Version         string           `json:"version"`
		AvailableModels []string         `json:"available_models"`
		Storage         StorageStatusDTO `json:"storage"`
	}

	APIInfoDTO struct {
		Message         string               `json:"message"`
		Version         string               `json:"version"`
		Status          string               `json:"status"`
		Device          string               `json:"device"`
		AvailableModels []catalog.Descriptor `json:"available_models,omitempty"`
		Docs            string               `json:"docs"`
		HealthCheck     string               `json:"health_check"`
		Transcribe      string               `json:"transcribe"`
	}
)

type HealthOutput struct {
	Body HealthResponseDTO
}

type dashboardData struct {
	Title   string
	Version string
	Status  string
	Device  string
	Port    int
	Models  []models.ModelStatus
}

// SystemHandler handles the health check, the HTML dashboard and the
// JSON API info.
type SystemHandler struct {
	manager *models.Manager
	cfg     *config.Config
}

// NewSystemHandler creates a new SystemHandler instance. The health
// check is a huma operation; the dashboard and info endpoints are
// plain handlers on the mux.
func NewSystemHandler(api huma.API, mux *http.ServeMux, manager *models.Manager, cfg *config.Config) *SystemHandler {
	h := &SystemHandler{manager: manager, cfg: cfg}

	huma.Register(api, huma.Operation{
		OperationID:   "health-check",
		Method:        http.MethodGet,
		Path:          "/v1/health",
		Summary:       "Check service health",
		Tags:          []string{"system"},
		DefaultStatus: http.StatusOK,
	}, h.handleHealth)

	mux.HandleFunc("GET /{$}", h.handleDashboard)
	mux.HandleFunc("GET /api/info", h.handleInfo)

	return h
}

// handleHealth handles the health-check operation.
func (h *SystemHandler) handleHealth(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	descriptors := h.manager.List()
	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name
	}

	storageStatus := StorageStatusDTO{
		ExternalStorageEnabled: h.cfg.Storage.ExternalEnabled,
	}
	if h.cfg.Storage.ExternalEnabled {
		dir := h.cfg.Storage.View().Effective()
		storageStatus.EffectiveCacheDir = &dir
	}

	return &HealthOutput{
		Body: HealthResponseDTO{
			Status:          "ok",
			Device:          h.cfg.Whisper.Device,
			Version:         h.cfg.API.Version,
			AvailableModels: names,
			Storage:         storageStatus,
		},
	}, nil
}

// handleDashboard renders the HTML dashboard. If rendering fails the
// response degrades to the JSON info body.
func (h *SystemHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{
		Title:   h.cfg.API.Title,
		Version: h.cfg.API.Version,
		Status:  "Online",
		Device:  strings.ToUpper(h.cfg.Whisper.Device),
		Port:    h.cfg.Server.Port,
		Models:  h.manager.ListWithStatus(),
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		slog.Error("Failed to render dashboard", "error", err)
		writeJSON(w, http.StatusOK, h.infoBody(false))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("Failed to write dashboard response", "error", err)
	}
}

// handleInfo serves the API information for programmatic access.
func (h *SystemHandler) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.infoBody(true))
}

func (h *SystemHandler) infoBody(withModels bool) APIInfoDTO {
	info := APIInfoDTO{
		Message:     h.cfg.API.Title,
		Version:     h.cfg.API.Version,
		Status:      "Online",
		Device:      h.cfg.Whisper.Device,
		Docs:        "/docs",
		HealthCheck: "/v1/health",
		Transcribe:  "/v1/audio/transcriptions",
	}
	if withModels {
		info.AvailableModels = h.manager.List()
	}
	return info
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}
