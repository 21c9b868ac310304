// Package service holds the transcription orchestrator and the active
// model binding it serves requests from.
package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ekisa-team/whisperd/internal/catalog"
	"github.com/ekisa-team/whisperd/internal/engine"
)

// Defaults are the fallback parameters applied when a request leaves
// them unset.
type Defaults struct {
	Model       string
	Language    string
	Device      string
	ComputeType string
	TempSuffix  string
}

// Params are the per-request transcription inputs. Zero values fall
// back to the configured defaults.
type Params struct {
	Language   string
	Model      string
	Device     string
	Parameters map[string]any
}

// Result is the normalized transcription handed to the transport layer.
type Result struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// Segment is one timed span with a zero-based sequential id.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcriber owns the single mutable model binding and orchestrates
// transcription requests against it. The binding has exactly one writer
// at a time: ensureBound takes the write lock to swap engines, and
// requests hold the read lock through the whole inference call, so a
// switch can never close an engine out from under an in-flight request.
type Transcriber struct {
	mu    sync.RWMutex
	model string
	eng   engine.Engine

	loader   engine.Loader
	defaults Defaults
}

// NewTranscriber builds the orchestrator and binds the configured
// default model. Failure here is fatal to the caller: the service
// cannot answer requests without a bound engine.
func NewTranscriber(ctx context.Context, loader engine.Loader, defaults Defaults) (*Transcriber, error) {
	if !catalog.IsKnown(defaults.Model) {
		return nil, fmt.Errorf("failed to bind default model: %w: %q", catalog.ErrUnknownModel, defaults.Model)
	}

	eng, err := loader.Load(ctx, defaults.Model, defaults.Device, defaults.ComputeType)
	if err != nil {
		return nil, fmt.Errorf("failed to bind default model %q: %w", defaults.Model, err)
	}

	slog.Info("Default model bound", "model", defaults.Model, "device", defaults.Device, "compute_type", defaults.ComputeType)

	return &Transcriber{
		model:    defaults.Model,
		eng:      eng,
		loader:   loader,
		defaults: defaults,
	}, nil
}

// Current returns the model name the binding currently holds.
func (t *Transcriber) Current() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.model
}

// Close releases the bound engine.
func (t *Transcriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.eng == nil {
		return nil
	}
	err := t.eng.Close()
	t.eng = nil
	t.model = ""
	return err
}

// Transcribe resolves effective parameters, ensures the requested model
// is bound and runs inference over the audio bytes. The audio lands in
// a scoped temp file because the engine operates on a file path; the
// temp file is released on every exit path before the caller observes
// the outcome.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, p Params) (*Result, error) {
	language := p.Language
	if language == "" {
		language = t.defaults.Language
	}
	model := p.Model
	if model == "" {
		model = t.defaults.Model
	}
	device := p.Device
	if device == "" {
		device = t.defaults.Device
	}

	if err := t.ensureBound(ctx, model, device, t.defaults.ComputeType); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "whisperd-*"+t.defaults.TempSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp audio file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Failed to remove temp audio file", "path", tmpPath, "error", err)
		}
	}()

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp audio file: %w", err)
	}

	// Hold the binding shared for the whole inference call. A request
	// racing a switch transcribes on whichever engine is bound when it
	// acquires the lock; either answer is valid.
	t.mu.RLock()
	res, err := t.eng.Transcribe(ctx, &engine.Request{
		AudioPath:  tmpPath,
		Language:   language,
		VADFilter:  true,
		Parameters: p.Parameters,
	})
	t.mu.RUnlock()

	if err != nil {
		slog.Error("Transcription failed", "model", model, "error", err)
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	return normalize(res), nil
}

// ensureBound is the sole mutator of the binding. The fast path reuses
// the bound engine without reconstruction cost; the slow path swaps in
// a new engine under the write lock and closes the old one. A failed
// construction leaves the old binding untouched and usable. Identifiers
// the catalog does not know are rejected before any storage or loader
// work happens.
func (t *Transcriber) ensureBound(ctx context.Context, model, device, computeType string) error {
	if !catalog.IsKnown(model) {
		return fmt.Errorf("%w: %q", catalog.ErrUnknownModel, model)
	}

	t.mu.RLock()
	bound := t.model == model
	t.mu.RUnlock()
	if bound {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Another request may have completed the same switch while this one
	// waited for the write lock.
	if t.model == model {
		return nil
	}

	slog.Info("Switching model", "from", t.model, "to", model)

	eng, err := t.loader.Load(ctx, model, device, computeType)
	if err != nil {
		return fmt.Errorf("failed to load model %q: %w", model, err)
	}

	old := t.eng
	t.model = model
	t.eng = eng

	if old != nil {
		if err := old.Close(); err != nil {
			slog.Warn("Failed to close replaced engine", "model", model, "error", err)
		}
	}
	return nil
}

// normalize renumbers segments with zero-based sequential ids and joins
// their text with single spaces, in segment order.
func normalize(res *engine.Result) *Result {
	segments := make([]Segment, 0, len(res.Segments))
	texts := make([]string, 0, len(res.Segments))
	for i, s := range res.Segments {
		segments = append(segments, Segment{ID: i, Start: s.Start, End: s.End, Text: s.Text})
		texts = append(texts, s.Text)
	}

	return &Result{
		Text:     strings.Join(texts, " "),
		Segments: segments,
		Language: res.Language,
	}
}
