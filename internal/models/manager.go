// Package models coordinates the static catalog, on-disk presence and
// artifact acquisition. Acquisition has no dedicated download API: the
// only supported mechanism is constructing a throwaway engine, whose
// loader fetches and caches the artifact as a side effect.
package models

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ekisa-team/whisperd/internal/catalog"
	"github.com/ekisa-team/whisperd/internal/engine"
	"github.com/ekisa-team/whisperd/internal/storage"
)

// settleDelay is the grace period between loader construction and the
// presence re-check. Loaders may still be flushing artifacts to disk
// when construction returns.
const settleDelay = 2 * time.Second

// DownloadOutcome reports one acquisition attempt. It is returned per
// request and never persisted.
type DownloadOutcome struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Downloaded bool   `json:"downloaded"`
}

// ModelStatus is a catalog descriptor joined with on-disk presence.
type ModelStatus struct {
	catalog.Descriptor
	Downloaded bool `json:"downloaded"`
}

// Manager coordinates catalog reads, presence checks and acquisition.
type Manager struct {
	locator *storage.Locator
	loader  engine.Loader
	settle  time.Duration
}

// NewManager creates a manager acquiring artifacts through the loader.
func NewManager(locator *storage.Locator, loader engine.Loader) *Manager {
	return &Manager{
		locator: locator,
		loader:  loader,
		settle:  settleDelay,
	}
}

// List returns the full catalog.
func (m *Manager) List() []catalog.Descriptor {
	return catalog.List()
}

// ListWithStatus joins the catalog with per-model presence checks. Every
// model probes its full candidate list, so this is the expensive read.
func (m *Manager) ListWithStatus() []ModelStatus {
	descriptors := catalog.List()
	statuses := make([]ModelStatus, 0, len(descriptors))
	for _, d := range descriptors {
		statuses = append(statuses, ModelStatus{
			Descriptor: d,
			Downloaded: m.locator.IsPresent(d.Name),
		})
	}
	return statuses
}

// Downloaded returns the catalog models present on disk.
func (m *Manager) Downloaded() []string {
	return m.locator.DownloadedModels(catalog.Names())
}

// Describe looks up one catalog entry.
func (m *Manager) Describe(name string) (catalog.Descriptor, bool) {
	return catalog.Describe(name)
}

// Recommend maps a use case tag to a model name.
func (m *Manager) Recommend(useCase string) string {
	return catalog.Recommend(useCase)
}

// IsDownloaded reports whether a model's artifact is on disk.
func (m *Manager) IsDownloaded(name string) bool {
	return m.locator.IsPresent(name)
}

// EnsurePresent makes sure a model's artifact is in the local cache,
// acquiring it through a throwaway engine when missing. Failures come
// back as a structured outcome, never as an error: acquisition problems
// are an expected answer, not a fault.
func (m *Manager) EnsurePresent(ctx context.Context, name, device, computeType string) DownloadOutcome {
	if !catalog.IsKnown(name) {
		return DownloadOutcome{
			Success:    false,
			Message:    fmt.Sprintf("Model '%s' is not available", name),
			Downloaded: false,
		}
	}

	if m.locator.IsPresent(name) {
		return DownloadOutcome{
			Success:    true,
			Message:    fmt.Sprintf("Model '%s' is already downloaded", name),
			Downloaded: true,
		}
	}

	slog.Info("Starting model download", "model", name, "device", device, "compute_type", computeType)

	eng, err := m.loader.Load(ctx, name, device, computeType)
	if err != nil {
		slog.Error("Failed to download model", "model", name, "error", err)
		return DownloadOutcome{
			Success:    false,
			Message:    fmt.Sprintf("Error downloading model '%s': %s", name, err),
			Downloaded: false,
		}
	}

	// The throwaway engine exists only to trigger fetch-and-cache.
	if err := eng.Close(); err != nil {
		slog.Warn("Failed to close throwaway engine", "model", name, "error", err)
	}

	// Artifacts may still be in flight to disk right after construction.
	time.Sleep(m.settle)

	if m.locator.IsPresent(name) {
		slog.Info("Model downloaded", "model", name)
		return DownloadOutcome{
			Success:    true,
			Message:    fmt.Sprintf("Model '%s' downloaded successfully", name),
			Downloaded: true,
		}
	}

	// The loader's own cache is authoritative over the candidate-path
	// probe, whose layout table is necessarily incomplete. Later
	// presence reads may disagree with this outcome.
	slog.Info("Model loaded but presence probe missed it, trusting the engine cache", "model", name)
	return DownloadOutcome{
		Success:    true,
		Message:    fmt.Sprintf("Model '%s' downloaded successfully (cached by faster-whisper)", name),
		Downloaded: true,
	}
}
