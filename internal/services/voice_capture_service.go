package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TranscribingPlaceholder appears in the input buffer while a recorded clip
// is being transcribed. It is the only text ever removed from the buffer.
const TranscribingPlaceholder = "Transcribing..."

const defaultInactivityWindow = 20 * time.Second

// ErrCaptureActive rejects a second capture while one is already running.
var ErrCaptureActive = errors.New("a recording is already active")

// InputBuffer is the pending-input text the user is composing. Recognized
// speech is appended to whatever is already typed, never replacing it. The
// transcribing placeholder is tracked as a separate trailing segment rather
// than spliced into the text, so typing while a clip is in flight cannot
// strand the placeholder literal in the composed input.
type InputBuffer struct {
	mu          sync.Mutex
	text        string
	placeholder bool
}

// Append adds recognized text, space-joined to the existing content.
func (b *InputBuffer) Append(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = join(b.text, text)
}

// SetPlaceholder shows the transcribing placeholder. No-op if it is
// already showing.
func (b *InputBuffer) SetPlaceholder() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.placeholder = true
}

// ResolvePlaceholder swaps the placeholder for the transcribed text.
func (b *InputBuffer) ResolvePlaceholder(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.placeholder {
		return
	}
	b.placeholder = false
	b.text = join(b.text, strings.TrimSpace(text))
}

// ClearPlaceholder removes the placeholder, keeping the user's own text.
func (b *InputBuffer) ClearPlaceholder() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.placeholder = false
}

// Text returns the current buffer content, placeholder included while a
// transcription is in flight.
func (b *InputBuffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.placeholder {
		return join(b.text, TranscribingPlaceholder)
	}
	return b.text
}

// Clear empties the buffer, typically after the text was submitted.
func (b *InputBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = ""
	b.placeholder = false
}

func join(existing, addition string) string {
	if existing == "" {
		return addition
	}
	if addition == "" {
		return existing
	}
	return existing + " " + addition
}

// SpeechRecognizer is a live speech-to-text source. Utterances arrive on the
// channel returned by Start; the channel closes when recognition ends. Stop
// must release the device and is safe to call after the channel has closed.
type SpeechRecognizer interface {
	Start(ctx context.Context) (<-chan string, error)
	Stop() error
}

// AudioRecorder captures raw audio chunks. The channel returned by Start
// closes when recording ends. Stop must release the device and is safe to
// call after the channel has closed.
type AudioRecorder interface {
	Start(ctx context.Context) (<-chan []byte, error)
	Stop() error
}

// VoiceCaptureService runs the two capture strategies. At most one capture
// is active per service; both strategies only ever add text to the buffer.
type VoiceCaptureService struct {
	transcriber Transcriber
	logger      *zap.Logger
	inactivity  time.Duration

	mu     sync.Mutex
	active bool
}

func NewVoiceCaptureService(transcriber Transcriber, logger *zap.Logger) *VoiceCaptureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoiceCaptureService{
		transcriber: transcriber,
		logger:      logger,
		inactivity:  defaultInactivityWindow,
	}
}

// SetInactivityWindow overrides the continuous strategy's auto-stop window.
func (s *VoiceCaptureService) SetInactivityWindow(d time.Duration) {
	if d > 0 {
		s.inactivity = d
	}
}

func (s *VoiceCaptureService) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrCaptureActive
	}
	s.active = true
	return nil
}

func (s *VoiceCaptureService) release() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// CaptureContinuous runs the live-recognition strategy until the recognizer
// stops, ctx is cancelled, or no speech arrives within the inactivity
// window. Each utterance is appended to buf as it arrives. The recognizer is
// stopped on every exit path.
func (s *VoiceCaptureService) CaptureContinuous(ctx context.Context, rec SpeechRecognizer, buf *InputBuffer) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	utterances, err := rec.Start(ctx)
	if err != nil {
		return fmt.Errorf("start recognizer: %w", err)
	}
	defer func() {
		if err := rec.Stop(); err != nil {
			s.logger.Warn("recognizer stop failed", zap.Error(err))
		}
	}()

	timer := time.NewTimer(s.inactivity)
	defer timer.Stop()

	for {
		select {
		case utterance, ok := <-utterances:
			if !ok {
				return nil
			}
			buf.Append(utterance)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.inactivity)
		case <-timer.C:
			s.logger.Info("voice capture auto-stopped after inactivity")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// CaptureRecorded runs the record-then-transcribe strategy: audio is
// buffered until the recorder stops (channel close) or ctx is cancelled,
// then the assembled clip is transcribed and the text lands in buf. While
// the request is in flight buf shows the transcribing placeholder; on
// failure the placeholder is cleared and the error returned.
func (s *VoiceCaptureService) CaptureRecorded(ctx context.Context, rec AudioRecorder, buf *InputBuffer) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	chunks, err := rec.Start(ctx)
	if err != nil {
		return fmt.Errorf("start recorder: %w", err)
	}
	defer func() {
		if err := rec.Stop(); err != nil {
			s.logger.Warn("recorder stop failed", zap.Error(err))
		}
	}()

	var clip bytes.Buffer
recording:
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				break recording
			}
			clip.Write(chunk)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := validateClip(clip.Len()); err != nil {
		return err
	}

	buf.SetPlaceholder()
	text, err := s.transcriber.Transcribe(ctx, clip.Bytes())
	if err != nil {
		buf.ClearPlaceholder()
		return err
	}
	buf.ResolvePlaceholder(text)
	return nil
}
