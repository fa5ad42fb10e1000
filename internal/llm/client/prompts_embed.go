package client

import (
	"embed"
	"strings"
)

// embeddedPrompts holds the built-in prompt templates so packaged executables
// can load them without needing access to the source tree.
//
//go:embed prompts/*.txt
var embeddedPrompts embed.FS

func loadPrompt(name string) string {
	data, err := embeddedPrompts.ReadFile("prompts/" + name)
	if err != nil {
		// The templates are compiled in; a missing one is a build defect.
		panic("missing embedded prompt: " + name)
	}
	return strings.TrimSpace(string(data))
}

// SystemPrompt returns the static system-instruction template.
func SystemPrompt() string {
	return loadPrompt("system_prompt.txt")
}

func summarizerTemplate() string {
	return loadPrompt("summarizer_prompt.txt")
}
