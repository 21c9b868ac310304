// Package whisper implements the engine contract on top of a
// whisper-server process. Loading a model spawns a dedicated server
// bound to its weights; transcription is a multipart POST against that
// server's /inference endpoint.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ekisa-team/whisperd/internal/engine"
)

// defaultRequestTimeout bounds one inference call. Transcription of long
// audio is slow.
const defaultRequestTimeout = 5 * time.Minute

// Engine implements engine.Engine against one owned whisper-server.
type Engine struct {
	model       string
	device      string
	computeType string
	weightsPath string
	proc        *serverProcess
	client      *http.Client
	baseURL     string
}

// inferenceResponse mirrors the verbose_json document whisper-server
// returns from /inference.
type inferenceResponse struct {
	Task                        string             `json:"task,omitempty"`
	Language                    string             `json:"language,omitempty"`
	Duration                    float64            `json:"duration,omitempty"`
	Text                        string             `json:"text,omitempty"`
	Segments                    []inferenceSegment `json:"segments,omitempty"`
	DetectedLanguage            string             `json:"detected_language,omitempty"`
	DetectedLanguageProbability float64            `json:"detected_language_probability,omitempty"`
}

// inferenceSegment is a single segment in the verbose_json document.
type inferenceSegment struct {
	ID           int     `json:"id"`
	Text         string  `json:"text"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Temperature  float64 `json:"temperature,omitempty"`
	AvgLogprob   float64 `json:"avg_logprob,omitempty"`
	NoSpeechProb float64 `json:"no_speech_prob,omitempty"`
}

func (r *inferenceResponse) toResult(languageHint string) *engine.Result {
	segments := make([]engine.Segment, 0, len(r.Segments))
	for _, s := range r.Segments {
		segments = append(segments, engine.Segment{ID: s.ID, Start: s.Start, End: s.End, Text: s.Text})
	}

	language := r.DetectedLanguage
	if language == "" {
		language = r.Language
	}
	if language == "" {
		language = languageHint
	}

	return &engine.Result{
		Text:     r.Text,
		Segments: segments,
		Language: language,
		Duration: r.Duration,
	}
}

// Transcribe implements engine.Engine.
func (e *Engine) Transcribe(ctx context.Context, req *engine.Request) (*engine.Result, error) {
	audio, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer audio.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}

	if err := writeInferenceFields(writer, req); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/inference", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return nil, fmt.Errorf("inference failed with status code %d: %s", resp.StatusCode, respBody)
	}

	var infResp inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&infResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return infResp.toResult(req.Language), nil
}

// Close implements engine.Engine.
func (e *Engine) Close() error {
	return e.proc.Stop()
}

// writeInferenceFields writes the form fields whisper-server expects
// alongside the audio part. Unset optional knobs are omitted so the
// server applies its own defaults.
func writeInferenceFields(w *multipart.Writer, req *engine.Request) error {
	params := extractParams(req.Parameters)

	fields := map[string]string{
		"response_format": "verbose_json",
		"temperature":     fmt.Sprintf("%.2f", params.Temperature),
		"translate":       fmt.Sprintf("%t", params.Translate),
		"no_timestamps":   fmt.Sprintf("%t", params.NoTimestamps),
	}

	if req.Language != "" {
		fields["language"] = req.Language
	}
	if req.VADFilter {
		fields["vad_filter"] = "true"
	}
	if params.BeamSize >= 0 {
		fields["beam_size"] = fmt.Sprintf("%d", params.BeamSize)
	}
	if params.BestOf > 0 {
		fields["best_of"] = fmt.Sprintf("%d", params.BestOf)
	}
	if params.Prompt != "" {
		fields["prompt"] = params.Prompt
	}

	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	return nil
}
