package mocks

import "context"

type TranscriberMock struct {
	TranscribeFunc func(ctx context.Context, audio []byte) (string, error)
}

func (m *TranscriberMock) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio)
	}
	return "", nil
}
