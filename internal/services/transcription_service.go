package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MaxAudioBytes is the transcription API's payload ceiling. Clips over it
// are rejected locally, before any request is attempted.
const MaxAudioBytes = 25 << 20

const (
	defaultTranscriptionEndpoint = "https://api.groq.com/openai/v1/audio/transcriptions"
	defaultTranscriptionModel    = "whisper-large-v3"
)

// TranscriptionError covers locally rejected audio (empty, oversized) and
// upstream transcription failures. It is surfaced to the user synchronously
// because the input buffer needs a decisive resolution.
type TranscriptionError struct {
	Reason string
	Err    error
}

func (e *TranscriptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transcription failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("transcription failed: %s", e.Reason)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// Transcriber converts a recorded audio clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type TranscriptionConfig struct {
	Endpoint string
	Model    string
	APIKey   string
}

// TranscriptionService implements Transcriber against an OpenAI-compatible
// audio transcription endpoint.
type TranscriptionService struct {
	cfg    TranscriptionConfig
	client *http.Client
	logger *zap.Logger
}

func NewTranscriptionService(cfg TranscriptionConfig, logger *zap.Logger) *TranscriptionService {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultTranscriptionEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultTranscriptionModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptionService{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

func validateClip(size int) *TranscriptionError {
	if size == 0 {
		return &TranscriptionError{Reason: "recorded clip is empty"}
	}
	if size > MaxAudioBytes {
		return &TranscriptionError{Reason: fmt.Sprintf("recorded clip is %d bytes; the limit is %d", size, MaxAudioBytes)}
	}
	return nil
}

func (s *TranscriptionService) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if err := validateClip(len(audio)); err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "recording.webm")
	if err != nil {
		return "", &TranscriptionError{Reason: "build request", Err: err}
	}
	if _, err := part.Write(audio); err != nil {
		return "", &TranscriptionError{Reason: "build request", Err: err}
	}
	if err := mw.WriteField("model", s.cfg.Model); err != nil {
		return "", &TranscriptionError{Reason: "build request", Err: err}
	}
	if err := mw.Close(); err != nil {
		return "", &TranscriptionError{Reason: "build request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, &body)
	if err != nil {
		return "", &TranscriptionError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &TranscriptionError{Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TranscriptionError{Reason: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("transcription API rejected request",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", data))
		return "", &TranscriptionError{Reason: fmt.Sprintf("transcription API returned status %d", resp.StatusCode)}
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &TranscriptionError{Reason: "decode response", Err: err}
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return "", &TranscriptionError{Reason: "transcription API returned no text"}
	}
	return parsed.Text, nil
}
