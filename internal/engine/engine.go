// Package engine defines the inference engine contract. An Engine is an
// opaque transcription capability bound to one loaded model; a Loader
// builds engines and, as a side effect, materializes the model artifact
// in the local cache when it is not already there.
package engine

import "context"

// Engine is the core interface every inference engine implements.
type Engine interface {
	// Transcribe runs speech-to-text over one audio file and returns the
	// complete result.
	Transcribe(ctx context.Context, req *Request) (*Result, error)

	// Close releases the resources held by the engine.
	Close() error
}

// Loader constructs engines for named models.
type Loader interface {
	// Load builds an engine bound to the named model. Loading fetches
	// the model artifact into the cache when it is missing, so a loaded
	// engine always has its weights on disk.
	Load(ctx context.Context, model, device, computeType string) (Engine, error)
}

// Request encapsulates all parameters for a transcription call.
type Request struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string

	// Language is the spoken language hint. Empty lets the engine detect it.
	Language string

	// VADFilter enables voice activity filtering before inference.
	VADFilter bool

	// Parameters contains engine-specific inference parameters
	// (temperature, beam_size, best_of, translate, prompt).
	Parameters map[string]any
}

// Result contains the outcome of a transcription.
type Result struct {
	// Text is the full transcript as reported by the engine.
	Text string

	// Segments are the timed spans of the transcript, in engine order.
	Segments []Segment

	// Language is the language the engine detected, or the hint it was
	// given when detection is off.
	Language string

	// Duration is the audio duration in seconds when the engine reports it.
	Duration float64
}

// Segment is a single timed span of the transcript.
type Segment struct {
	ID    int
	Start float64
	End   float64
	Text  string
}
