package whisper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ekisa-team/whisperd/internal/engine"
	"github.com/ekisa-team/whisperd/internal/storage"
)

// LoaderConfig carries the knobs for constructing engines.
type LoaderConfig struct {
	// BinPath is the whisper-server binary spawned per loaded model.
	BinPath string

	// Port pins the engine server port. Zero picks a free loopback port
	// per engine, which keeps a new engine from colliding with the old
	// one during a model switch.
	Port int

	// ReadyTimeout bounds the wait for a spawned server to answer.
	ReadyTimeout time.Duration

	// RequestTimeout bounds one inference call.
	RequestTimeout time.Duration
}

// Loader implements engine.Loader with whisper-server processes.
type Loader struct {
	binPath        string
	locator        *storage.Locator
	fetcher        *fetcher
	port           int
	readyTimeout   time.Duration
	requestTimeout time.Duration
}

// NewLoader creates a loader resolving artifacts through the locator.
func NewLoader(cfg LoaderConfig, locator *storage.Locator) *Loader {
	return NewLoaderWithRunner(cfg, locator, engine.ExecCommandRunner{})
}

// NewLoaderWithRunner creates a loader with a custom command runner.
func NewLoaderWithRunner(cfg LoaderConfig, locator *storage.Locator, runner engine.CommandRunner) *Loader {
	if cfg.ReadyTimeout == 0 {
		cfg.ReadyTimeout = defaultReadyTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	return &Loader{
		binPath:        cfg.BinPath,
		locator:        locator,
		fetcher:        newFetcher(runner, locator.Config().Effective()),
		port:           cfg.Port,
		readyTimeout:   cfg.ReadyTimeout,
		requestTimeout: cfg.RequestTimeout,
	}
}

// Load implements engine.Loader. It materializes the model artifact when
// missing, resolves the weights file inside it and spawns a dedicated
// server bound to those weights.
func (l *Loader) Load(ctx context.Context, model, device, computeType string) (engine.Engine, error) {
	cand, ok := l.locator.Find(model)
	if !ok {
		if err := l.fetcher.fetch(ctx, model); err != nil {
			return nil, fmt.Errorf("failed to fetch model %q: %w", model, err)
		}
		if cand, ok = l.locator.Find(model); !ok {
			return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, model)
		}
	}

	weights, err := resolveWeights(cand.Path)
	if err != nil {
		return nil, err
	}

	port := l.port
	if port == 0 {
		if port, err = pickFreePort(); err != nil {
			return nil, fmt.Errorf("failed to pick engine port: %w", err)
		}
	}

	args := []string{
		"--model", weights,
		"--host", "127.0.0.1",
		"--port", fmt.Sprintf("%d", port),
	}
	if device != "" {
		args = append(args, "--device", device)
	}
	if computeType != "" {
		args = append(args, "--compute-type", computeType)
	}

	proc, err := startServer(l.binPath, args, port, l.readyTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to start engine for model %q: %w", model, err)
	}

	slog.Info("Model loaded", "model", model, "device", device, "compute_type", computeType, "weights", weights, "port", port)

	return &Engine{
		model:       model,
		device:      device,
		computeType: computeType,
		weightsPath: weights,
		proc:        proc,
		client:      &http.Client{Timeout: l.requestTimeout},
		baseURL:     proc.baseURL,
	}, nil
}
