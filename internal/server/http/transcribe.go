package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/whisperd/internal/service"
)

type (
	// TranscriptionSegmentDTO is one timed span in the OpenAI-style
	// response envelope. Seek, tokens and temperature are carried for
	// client compatibility and always hold their zero values.
	TranscriptionSegmentDTO struct {
		ID          int     `json:"id"`
		Seek        int     `json:"seek"`
		Start       float64 `json:"start"`
		End         float64 `json:"end"`
		Text        string  `json:"text"`
		Tokens      []int   `json:"tokens"`
		Temperature float64 `json:"temperature"`
	}

	TranscriptionResponseDTO struct {
		Text     string                    `json:"text"`
		Segments []TranscriptionSegmentDTO `json:"segments"`
		Language string                    `json:"language"`
	}
)

type (
	TranscribeInput struct {
		RawBody huma.MultipartFormFiles[struct {
			File       huma.FormFile `form:"file" contentType:"audio/*,video/*,application/octet-stream" required:"true"`
			Model      string        `form:"model"`
			Language   string        `form:"language"`
			Parameters string        `form:"parameters"` // JSON-encoded optional engine parameters
		}]
	}

	TranscribeOutput struct {
		Body TranscriptionResponseDTO
	}
)

// TranscribeHandler handles HTTP requests for transcription.
type TranscribeHandler struct {
	transcriber *service.Transcriber
}

// NewTranscribeHandler creates a new TranscribeHandler instance.
func NewTranscribeHandler(api huma.API, transcriber *service.Transcriber) *TranscribeHandler {
	h := &TranscribeHandler{transcriber: transcriber}

	huma.Register(api, huma.Operation{
		OperationID:   "transcribe-audio",
		Method:        http.MethodPost,
		Path:          "/v1/audio/transcriptions",
		Summary:       "Transcribe an audio file to text",
		Tags:          []string{"transcription"},
		DefaultStatus: http.StatusOK,
	}, h.handleTranscribe)

	return h
}

// handleTranscribe handles the transcribe operation.
func (h *TranscribeHandler) handleTranscribe(ctx context.Context, input *TranscribeInput) (*TranscribeOutput, error) {
	formData := input.RawBody.Data()
	audioFile := formData.File

	if !audioFile.IsSet {
		return nil, huma.Error400BadRequest("audio file is required", nil)
	}

	audioBytes, err := io.ReadAll(audioFile)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to read audio file", err)
	}
	if len(audioBytes) == 0 {
		return nil, huma.Error400BadRequest("Empty file provided", nil)
	}

	var parameters map[string]any
	if formData.Parameters != "" {
		if err := json.Unmarshal([]byte(formData.Parameters), &parameters); err != nil {
			return nil, huma.Error400BadRequest("invalid parameters JSON", err)
		}
	}

	slog.Info("Processing transcription request",
		"filename", audioFile.Filename,
		"size_bytes", len(audioBytes),
		"model", formData.Model,
		"language", formData.Language,
	)

	result, err := h.transcriber.Transcribe(ctx, audioBytes, service.Params{
		Language:   formData.Language,
		Model:      formData.Model,
		Parameters: parameters,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("Transcription failed", err)
	}

	segments := make([]TranscriptionSegmentDTO, len(result.Segments))
	for i, seg := range result.Segments {
		segments[i] = TranscriptionSegmentDTO{
			ID:     seg.ID,
			Start:  seg.Start,
			End:    seg.End,
			Text:   seg.Text,
			Tokens: []int{},
		}
	}

	return &TranscribeOutput{
		Body: TranscriptionResponseDTO{
			Text:     result.Text,
			Segments: segments,
			Language: result.Language,
		},
	}, nil
}
