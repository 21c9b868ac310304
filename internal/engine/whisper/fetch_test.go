package whisper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls    int
	failures int
	lastName string
	lastArgs []string
	lastEnv  []string
}

func (r *fakeRunner) Run(_ context.Context, name string, args []string, extraEnv []string) ([]byte, error) {
	r.calls++
	r.lastName = name
	r.lastArgs = args
	r.lastEnv = extraEnv

	if r.calls <= r.failures {
		return []byte("boom"), errors.New("exit status 1")
	}
	return nil, nil
}

func TestFetch_InvokesCLIWithHubCacheEnv(t *testing.T) {
	runner := &fakeRunner{}
	f := newFetcher(runner, "/srv/models")
	f.retryDelay = 0

	err := f.fetch(context.Background(), "base")

	require.NoError(t, err)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "hf", runner.lastName)
	assert.Equal(t, []string{"download", "Systran/faster-whisper-base"}, runner.lastArgs)
	assert.Equal(t, []string{"HF_HOME=/srv/models"}, runner.lastEnv)
}

func TestFetch_EmptyCacheDirInheritsEnvironment(t *testing.T) {
	runner := &fakeRunner{}
	f := newFetcher(runner, "")
	f.retryDelay = 0

	require.NoError(t, f.fetch(context.Background(), "tiny"))
	assert.Empty(t, runner.lastEnv)
}

func TestFetch_RetriesUntilSuccess(t *testing.T) {
	runner := &fakeRunner{failures: 2}
	f := newFetcher(runner, "")
	f.retryDelay = time.Millisecond

	err := f.fetch(context.Background(), "small")

	require.NoError(t, err)
	assert.Equal(t, 3, runner.calls)
}

func TestFetch_GivesUpAfterMaxRetries(t *testing.T) {
	runner := &fakeRunner{failures: 10}
	f := newFetcher(runner, "")
	f.retryDelay = time.Millisecond

	err := f.fetch(context.Background(), "small")

	require.Error(t, err)
	assert.Equal(t, defaultMaxRetries, runner.calls)
}

func TestFetch_StopsWhenCallerContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{failures: 10}
	f := newFetcher(runner, "")
	f.retryDelay = time.Millisecond

	err := f.fetch(ctx, "small")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, runner.calls)
}
