package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eys-55/StillPoint-sub000/internal/tests/mocks"
)

type fakeRecognizer struct {
	utterances chan string
	stopped    bool
}

func (f *fakeRecognizer) Start(ctx context.Context) (<-chan string, error) {
	return f.utterances, nil
}

func (f *fakeRecognizer) Stop() error {
	f.stopped = true
	return nil
}

type fakeRecorder struct {
	chunks  chan []byte
	stopped bool
}

func (f *fakeRecorder) Start(ctx context.Context) (<-chan []byte, error) {
	return f.chunks, nil
}

func (f *fakeRecorder) Stop() error {
	f.stopped = true
	return nil
}

func TestInputBuffer(t *testing.T) {
	var buf InputBuffer

	buf.Append("I keep thinking")
	buf.Append("about work")
	buf.Append("   ")
	assert.Equal(t, "I keep thinking about work", buf.Text())

	buf.SetPlaceholder()
	buf.SetPlaceholder()
	assert.Equal(t, "I keep thinking about work "+TranscribingPlaceholder, buf.Text())

	buf.ResolvePlaceholder("and can't sleep")
	assert.Equal(t, "I keep thinking about work and can't sleep", buf.Text())

	// Resolving without a placeholder showing is a no-op.
	buf.ResolvePlaceholder("ignored")
	assert.Equal(t, "I keep thinking about work and can't sleep", buf.Text())

	buf.Clear()
	assert.Empty(t, buf.Text())

	// Clearing the placeholder keeps only the user's own text.
	buf.Append("typed by hand")
	buf.SetPlaceholder()
	buf.ClearPlaceholder()
	assert.Equal(t, "typed by hand", buf.Text())
}

func TestInputBuffer_TypingWhileTranscribing(t *testing.T) {
	var buf InputBuffer

	buf.Append("typed before")
	buf.SetPlaceholder()
	buf.Append("typed during")
	assert.Equal(t, "typed before typed during "+TranscribingPlaceholder, buf.Text())

	buf.ResolvePlaceholder("spoken words")
	assert.Equal(t, "typed before typed during spoken words", buf.Text())
	assert.NotContains(t, buf.Text(), TranscribingPlaceholder)

	// Same interleaving on the failure path: the placeholder vanishes and
	// everything typed survives.
	buf.Clear()
	buf.Append("typed before")
	buf.SetPlaceholder()
	buf.Append("typed during")
	buf.ClearPlaceholder()
	assert.Equal(t, "typed before typed during", buf.Text())
}

func TestVoiceCapture_ContinuousAppendsUtterances(t *testing.T) {
	rec := &fakeRecognizer{utterances: make(chan string, 3)}
	rec.utterances <- "hello"
	rec.utterances <- "world"
	close(rec.utterances)

	svc := NewVoiceCaptureService(&mocks.TranscriberMock{}, nil)
	var buf InputBuffer
	require.NoError(t, svc.CaptureContinuous(context.Background(), rec, &buf))

	assert.Equal(t, "hello world", buf.Text())
	assert.True(t, rec.stopped, "the recognizer is released on exit")
}

func TestVoiceCapture_ContinuousAutoStopsAfterInactivity(t *testing.T) {
	rec := &fakeRecognizer{utterances: make(chan string)}
	svc := NewVoiceCaptureService(&mocks.TranscriberMock{}, nil)
	svc.SetInactivityWindow(10 * time.Millisecond)

	var buf InputBuffer
	start := time.Now()
	require.NoError(t, svc.CaptureContinuous(context.Background(), rec, &buf))

	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, rec.stopped)
	assert.Empty(t, buf.Text())
}

func TestVoiceCapture_SingleActiveCapture(t *testing.T) {
	rec := &fakeRecognizer{utterances: make(chan string)}
	svc := NewVoiceCaptureService(&mocks.TranscriberMock{}, nil)
	svc.SetInactivityWindow(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf InputBuffer
	done := make(chan error, 1)
	go func() {
		done <- svc.CaptureContinuous(ctx, rec, &buf)
	}()

	// A probe that would otherwise fail fast on an empty clip; while the
	// continuous capture holds the slot it fails with ErrCaptureActive.
	require.Eventually(t, func() bool {
		probe := &fakeRecorder{chunks: make(chan []byte)}
		close(probe.chunks)
		return errors.Is(svc.CaptureRecorded(ctx, probe, &buf), ErrCaptureActive)
	}, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// Once the first capture exits the slot frees up.
	rec2 := &fakeRecognizer{utterances: make(chan string)}
	close(rec2.utterances)
	assert.NoError(t, svc.CaptureContinuous(context.Background(), rec2, &buf))
}

func TestVoiceCapture_RecordedTranscribesClip(t *testing.T) {
	rec := &fakeRecorder{chunks: make(chan []byte, 2)}
	rec.chunks <- []byte("part1-")
	rec.chunks <- []byte("part2")
	close(rec.chunks)

	var got []byte
	transcriber := &mocks.TranscriberMock{
		TranscribeFunc: func(ctx context.Context, audio []byte) (string, error) {
			got = audio
			return "spoken words", nil
		},
	}

	svc := NewVoiceCaptureService(transcriber, nil)
	var buf InputBuffer
	buf.Append("typed first")
	require.NoError(t, svc.CaptureRecorded(context.Background(), rec, &buf))

	assert.Equal(t, []byte("part1-part2"), got, "chunks are assembled in order")
	assert.Equal(t, "typed first spoken words", buf.Text())
	assert.True(t, rec.stopped)
}

func TestVoiceCapture_RecordedFailureClearsPlaceholder(t *testing.T) {
	rec := &fakeRecorder{chunks: make(chan []byte, 1)}
	rec.chunks <- []byte("clip")
	close(rec.chunks)

	boom := &TranscriptionError{Reason: "upstream down", Err: errors.New("503")}
	transcriber := &mocks.TranscriberMock{
		TranscribeFunc: func(ctx context.Context, audio []byte) (string, error) {
			return "", boom
		},
	}

	svc := NewVoiceCaptureService(transcriber, nil)
	var buf InputBuffer
	buf.Append("typed text")
	err := svc.CaptureRecorded(context.Background(), rec, &buf)

	var terr *TranscriptionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "typed text", buf.Text(), "the placeholder never survives a failure")
}

func TestVoiceCapture_RecordedEmptyClipRejected(t *testing.T) {
	rec := &fakeRecorder{chunks: make(chan []byte)}
	close(rec.chunks)

	called := false
	transcriber := &mocks.TranscriberMock{
		TranscribeFunc: func(ctx context.Context, audio []byte) (string, error) {
			called = true
			return "", nil
		},
	}

	svc := NewVoiceCaptureService(transcriber, nil)
	var buf InputBuffer
	err := svc.CaptureRecorded(context.Background(), rec, &buf)

	var terr *TranscriptionError
	require.ErrorAs(t, err, &terr)
	assert.False(t, called, "empty clips are rejected before transcription")
	assert.Empty(t, buf.Text())
}
