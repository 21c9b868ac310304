package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/whisperd/internal/catalog"
	"github.com/ekisa-team/whisperd/internal/engine"
)

// --- Mock types ---

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, model, device, computeType string) (engine.Engine, error) {
	args := m.Called(ctx, model, device, computeType)
	if eng, ok := args.Get(0).(engine.Engine); ok {
		return eng, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Transcribe(ctx context.Context, req *engine.Request) (*engine.Result, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(*engine.Result); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEngine) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Helpers ---

var testDefaults = Defaults{
	Model:       "base",
	Language:    "en",
	Device:      "cpu",
	ComputeType: "int8",
	TempSuffix:  ".wav",
}

func newBoundTranscriber(t *testing.T) (*Transcriber, *MockLoader, *MockEngine) {
	t.Helper()

	loader := new(MockLoader)
	eng := new(MockEngine)
	loader.On("Load", mock.Anything, "base", "cpu", "int8").Return(eng, nil).Once()

	tr, err := NewTranscriber(context.Background(), loader, testDefaults)
	require.NoError(t, err)
	return tr, loader, eng
}

func simpleResult() *engine.Result {
	return &engine.Result{
		Text:     " hello world",
		Language: "en",
		Segments: []engine.Segment{
			{ID: 4, Start: 0, End: 1.2, Text: " hello"},
			{ID: 9, Start: 1.2, End: 2.0, Text: " world"},
		},
	}
}

// --- Tests ---

func TestNewTranscriber_BindsDefaultModel(t *testing.T) {
	tr, loader, _ := newBoundTranscriber(t)

	assert.Equal(t, "base", tr.Current())
	loader.AssertExpectations(t)
}

func TestNewTranscriber_FailureIsFatal(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "base", "cpu", "int8").
		Return(nil, errors.New("no binary")).
		Once()

	_, err := NewTranscriber(context.Background(), loader, testDefaults)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to bind default model "base"`)
}

func TestNewTranscriber_UnknownDefaultModelRejected(t *testing.T) {
	loader := new(MockLoader)

	defaults := testDefaults
	defaults.Model = "bogus"
	_, err := NewTranscriber(context.Background(), loader, defaults)

	require.ErrorIs(t, err, catalog.ErrUnknownModel)
	loader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTranscribe_UnknownModelRejectedBeforeLoad(t *testing.T) {
	tr, loader, _ := newBoundTranscriber(t)

	_, err := tr.Transcribe(context.Background(), []byte("a"), Params{Model: "nope"})

	require.ErrorIs(t, err, catalog.ErrUnknownModel)
	assert.Equal(t, "base", tr.Current())
	loader.AssertNumberOfCalls(t, "Load", 1)
}

func TestTranscribe_ReusesBoundEngine(t *testing.T) {
	tr, loader, eng := newBoundTranscriber(t)

	var gotReq *engine.Request
	eng.On("Transcribe", mock.Anything, mock.AnythingOfType("*engine.Request")).
		Run(func(args mock.Arguments) {
			gotReq = args.Get(1).(*engine.Request)
			data, err := os.ReadFile(gotReq.AudioPath)
			require.NoError(t, err)
			assert.Equal(t, []byte("audio-bytes"), data)
		}).
		Return(simpleResult(), nil).
		Once()

	res, err := tr.Transcribe(context.Background(), []byte("audio-bytes"), Params{})

	require.NoError(t, err)
	assert.Equal(t, "en", gotReq.Language)
	assert.True(t, gotReq.VADFilter)
	assert.Equal(t, " hello  world", res.Text)
	require.Len(t, res.Segments, 2)
	assert.Equal(t, 0, res.Segments[0].ID)
	assert.Equal(t, 1, res.Segments[1].ID)
	assert.Equal(t, "en", res.Language)

	// Only the initial bind loaded a model.
	loader.AssertExpectations(t)
	eng.AssertExpectations(t)
}

func TestTranscribe_ExplicitParamsWinOverDefaults(t *testing.T) {
	tr, _, eng := newBoundTranscriber(t)

	var gotReq *engine.Request
	eng.On("Transcribe", mock.Anything, mock.AnythingOfType("*engine.Request")).
		Run(func(args mock.Arguments) { gotReq = args.Get(1).(*engine.Request) }).
		Return(simpleResult(), nil).
		Once()

	_, err := tr.Transcribe(context.Background(), []byte("a"), Params{Language: "fr"})

	require.NoError(t, err)
	assert.Equal(t, "fr", gotReq.Language)
}

func TestTranscribe_SwitchReplacesBindingAndClosesOld(t *testing.T) {
	tr, loader, oldEng := newBoundTranscriber(t)

	newEng := new(MockEngine)
	loader.On("Load", mock.Anything, "small", "cpu", "int8").Return(newEng, nil).Once()
	oldEng.On("Close").Return(nil).Once()
	newEng.On("Transcribe", mock.Anything, mock.AnythingOfType("*engine.Request")).
		Return(simpleResult(), nil).
		Once()

	res, err := tr.Transcribe(context.Background(), []byte("a"), Params{Model: "small"})

	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, "small", tr.Current())

	loader.AssertExpectations(t)
	oldEng.AssertExpectations(t)
	newEng.AssertExpectations(t)
}

func TestTranscribe_FailedSwitchLeavesOldBindingUsable(t *testing.T) {
	tr, loader, eng := newBoundTranscriber(t)

	loader.On("Load", mock.Anything, "small", "cpu", "int8").
		Return(nil, errors.New("fetch failed")).
		Once()

	_, err := tr.Transcribe(context.Background(), []byte("a"), Params{Model: "small"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to load model "small"`)
	assert.Equal(t, "base", tr.Current())

	// The old engine still serves requests.
	eng.On("Transcribe", mock.Anything, mock.AnythingOfType("*engine.Request")).
		Return(simpleResult(), nil).
		Once()

	_, err = tr.Transcribe(context.Background(), []byte("a"), Params{})
	require.NoError(t, err)

	loader.AssertExpectations(t)
	eng.AssertExpectations(t)
}

func TestTranscribe_TempFileRemovedOnSuccess(t *testing.T) {
	tr, _, eng := newBoundTranscriber(t)

	var tmpPath string
	eng.On("Transcribe", mock.Anything, mock.AnythingOfType("*engine.Request")).
		Run(func(args mock.Arguments) { tmpPath = args.Get(1).(*engine.Request).AudioPath }).
		Return(simpleResult(), nil).
		Once()

	_, err := tr.Transcribe(context.Background(), []byte("a"), Params{})

	require.NoError(t, err)
	require.NotEmpty(t, tmpPath)
	_, statErr := os.Stat(tmpPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTranscribe_TempFileRemovedOnFailure(t *testing.T) {
	tr, _, eng := newBoundTranscriber(t)

	var tmpPath string
	eng.On("Transcribe", mock.Anything, mock.AnythingOfType("*engine.Request")).
		Run(func(args mock.Arguments) { tmpPath = args.Get(1).(*engine.Request).AudioPath }).
		Return(nil, errors.New("inference blew up")).
		Once()

	_, err := tr.Transcribe(context.Background(), []byte("a"), Params{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription failed")
	require.NotEmpty(t, tmpPath)
	_, statErr := os.Stat(tmpPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTranscribe_ConcurrentSwitchesSettle(t *testing.T) {
	tr, loader, baseEng := newBoundTranscriber(t)

	largeEng := new(MockEngine)
	loader.On("Load", mock.Anything, "large", "cpu", "int8").Return(largeEng, nil).Maybe()
	loader.On("Load", mock.Anything, "base", "cpu", "int8").Return(baseEng, nil).Maybe()

	baseEng.On("Transcribe", mock.Anything, mock.Anything).Return(simpleResult(), nil).Maybe()
	baseEng.On("Close").Return(nil).Maybe()
	largeEng.On("Transcribe", mock.Anything, mock.Anything).Return(simpleResult(), nil).Maybe()
	largeEng.On("Close").Return(nil).Maybe()

	var wg sync.WaitGroup
	for _, model := range []string{"base", "large", "base", "large"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := tr.Transcribe(context.Background(), []byte("a"), Params{Model: model})
			assert.NoError(t, err)
			assert.NotNil(t, res)
		}()
	}
	wg.Wait()

	// The binding settled on whichever switch completed last.
	assert.Contains(t, []string{"base", "large"}, tr.Current())
}

func TestClose_ReleasesEngine(t *testing.T) {
	tr, _, eng := newBoundTranscriber(t)
	eng.On("Close").Return(nil).Once()

	require.NoError(t, tr.Close())
	assert.Empty(t, tr.Current())
	eng.AssertExpectations(t)
}
