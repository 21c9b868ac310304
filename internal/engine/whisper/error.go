package whisper

import "errors"

// Error definitions for the whisper package.
var (
	ErrArtifactMissing = errors.New("model artifact not in cache after fetch")
	ErrNoWeights       = errors.New("no weights file in model directory")
	ErrServerNotReady  = errors.New("whisper server did not become ready")
)
