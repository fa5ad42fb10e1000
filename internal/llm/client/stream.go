package client

import (
	"errors"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"
)

type turnStream struct {
	reader  *schema.StreamReader[*schema.Message]
	session *geminiSession
	buf     strings.Builder
	done    bool
}

// Recv returns the cumulative assistant text after each fragment. When the
// model finishes it returns the final text together with io.EOF and commits
// the turn to the session history; any other error is a GenerationError.
func (t *turnStream) Recv() (string, error) {
	if t.done {
		return t.buf.String(), io.EOF
	}
	msg, err := t.reader.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			t.done = true
			t.session.commit(t.buf.String())
			return t.buf.String(), io.EOF
		}
		return "", &GenerationError{Op: "stream recv", Err: err}
	}
	if msg != nil {
		t.buf.WriteString(msg.Content)
	}
	return t.buf.String(), nil
}

func (t *turnStream) Close() {
	t.reader.Close()
}
