package whisper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ekisa-team/whisperd/internal/engine"
)

const (
	defaultRetryDelay   = 2 * time.Second
	defaultMaxRetries   = 3
	defaultFetchTimeout = 5 * time.Minute

	// artifactRepoOwner publishes the CTranslate2 conversions of the
	// Whisper checkpoints this service loads.
	artifactRepoOwner = "Systran"
)

// fetcher pulls model artifacts into the local hub cache with the hf CLI.
type fetcher struct {
	runner     engine.CommandRunner
	cacheDir   string // HF_HOME handed to the hf process; empty inherits
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

func newFetcher(runner engine.CommandRunner, cacheDir string) *fetcher {
	return &fetcher{
		runner:     runner,
		cacheDir:   cacheDir,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		timeout:    defaultFetchTimeout,
	}
}

// fetch downloads the artifact repository for a model into the hub
// cache. The hub cache is the idempotency mechanism: repeating a fetch
// of an already cached repo is a no-op on the CLI side.
func (f *fetcher) fetch(ctx context.Context, model string) error {
	repo := fmt.Sprintf("%s/faster-whisper-%s", artifactRepoOwner, model)
	args := []string{"download", repo}

	var extraEnv []string
	if f.cacheDir != "" {
		extraEnv = append(extraEnv, "HF_HOME="+f.cacheDir)
	}

	var lastErr error
	for attempt := range f.maxRetries {
		if attempt > 0 {
			slog.Info("Retrying model fetch", "repo", repo, "attempt", attempt+1, "last_error", lastErr)
			time.Sleep(f.retryDelay)
		} else {
			slog.Info("Fetching model artifact", "repo", repo, "cache_dir", f.cacheDir)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
		output, err := f.runner.Run(attemptCtx, "hf", args, extraEnv)
		timedOut := attemptCtx.Err() == context.DeadlineExceeded
		cancel()

		if err == nil {
			slog.Info("Model artifact fetched", "repo", repo, "attempt", attempt+1)
			return nil
		}

		lastErr = err
		slog.Error("Failed to fetch model artifact", "repo", repo, "attempt", attempt+1, "error", err, "output", string(output))

		if timedOut {
			slog.Warn("Model fetch timed out", "repo", repo, "attempt", attempt+1)
		} else if ctx.Err() != nil {
			return fmt.Errorf("fetch canceled: %w", ctx.Err())
		}
	}

	return lastErr
}
