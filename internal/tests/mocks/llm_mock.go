package mocks

import (
	"context"
	"io"

	"github.com/Eys-55/StillPoint-sub000/internal/llm/client"
	"github.com/Eys-55/StillPoint-sub000/internal/models"
)

type LLMClientMock struct {
	BuildModelFunc func(ctx context.Context, profile models.ProfileContext, mode client.ModelMode) (client.Model, error)
}

func (m *LLMClientMock) BuildModel(ctx context.Context, profile models.ProfileContext, mode client.ModelMode) (client.Model, error) {
	if m.BuildModelFunc != nil {
		return m.BuildModelFunc(ctx, profile, mode)
	}
	return &LLMModelMock{}, nil
}

type LLMModelMock struct {
	StartSessionFunc func(history []models.Message) client.Session
	GenerateOnceFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *LLMModelMock) StartSession(history []models.Message) client.Session {
	if m.StartSessionFunc != nil {
		return m.StartSessionFunc(history)
	}
	return &LLMSessionMock{}
}

func (m *LLMModelMock) GenerateOnce(ctx context.Context, prompt string) (string, error) {
	if m.GenerateOnceFunc != nil {
		return m.GenerateOnceFunc(ctx, prompt)
	}
	return "", nil
}

type LLMSessionMock struct {
	StreamMessageFunc func(ctx context.Context, text string) (client.TurnStream, error)
}

func (m *LLMSessionMock) StreamMessage(ctx context.Context, text string) (client.TurnStream, error) {
	if m.StreamMessageFunc != nil {
		return m.StreamMessageFunc(ctx, text)
	}
	return ScriptedStream(), nil
}

// ScriptedStream builds a TurnStream that replays the given cumulative
// fragments before finishing. With no fragments the stream ends immediately.
func ScriptedStream(fragments ...string) client.TurnStream {
	return &scriptedStream{fragments: fragments}
}

// ScriptedStreamError builds a TurnStream that replays fragments and then
// fails with err instead of finishing.
func ScriptedStreamError(err error, fragments ...string) client.TurnStream {
	return &scriptedStream{fragments: fragments, err: err}
}

type scriptedStream struct {
	fragments []string
	pos       int
	err       error
}

func (s *scriptedStream) Recv() (string, error) {
	if s.pos < len(s.fragments) {
		s.pos++
		return s.fragments[s.pos-1], nil
	}
	if s.err != nil {
		return "", s.err
	}
	final := ""
	if len(s.fragments) > 0 {
		final = s.fragments[len(s.fragments)-1]
	}
	return final, io.EOF
}

func (s *scriptedStream) Close() {}
