package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Eys-55/StillPoint-sub000/internal/models"
)

// FormatTranscript renders messages as "role: text" lines joined by newlines,
// the shape the summarizer prompt expects.
func FormatTranscript(msgs []models.Message) string {
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Text))
	}
	return strings.Join(lines, "\n")
}

// SummaryPrompt templates the summarizer prompt with the full transcript.
func SummaryPrompt(transcript string) string {
	return strings.ReplaceAll(summarizerTemplate(), "{{transcript}}", transcript)
}

// ParseSummary splits raw summarizer output into a title and a prose
// summary: the first non-blank line, stripped of markdown emphasis and
// heading markers, becomes the title; the remaining non-blank lines joined
// become the summary. Unusable output is a GenerationError.
func ParseSummary(raw string) (title, summary string, err error) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return "", "", &GenerationError{Op: "summarize", Err: errors.New("summarizer returned no text")}
	}
	title = stripEmphasis(lines[0])
	if title == "" {
		return "", "", &GenerationError{Op: "summarize", Err: errors.New("summarizer returned no usable title")}
	}
	summary = strings.Join(lines[1:], "\n")
	return title, summary, nil
}

func stripEmphasis(line string) string {
	return strings.TrimSpace(strings.Trim(line, "#*_` "))
}
