package client

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eys-55/StillPoint-sub000/internal/models"
)

func TestValidateHistory(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleUser, Text: "hello"},
		{Role: models.RoleUser, Text: "anyone there?"}, // dropped: user after user
		{Role: models.RoleAssistant, Text: "   "},      // dropped: blank
		{Role: models.RoleAssistant, Text: "I'm here"},
		{Role: models.RoleAssistant, Text: "Still here"}, // kept: assistant runs are legal
		{Role: models.RoleUser, Text: "good"},
	}

	out := ValidateHistory(history, nil)
	require.Len(t, out, 4)
	assert.Equal(t, "hello", out[0].Text)
	assert.Equal(t, "I'm here", out[1].Text)
	assert.Equal(t, "Still here", out[2].Text)
	assert.Equal(t, "good", out[3].Text)
}

func TestValidateHistory_BlankBetweenUserTurnsStillDrops(t *testing.T) {
	// A blank entry does not reset the adjacency check; the two user turns
	// are still consecutive once it is removed.
	history := []models.Message{
		{Role: models.RoleUser, Text: "first"},
		{Role: models.RoleAssistant, Text: ""},
		{Role: models.RoleUser, Text: "second"},
	}
	out := ValidateHistory(history, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "first", out[0].Text)
}

func TestFormatHistory(t *testing.T) {
	out := FormatHistory([]models.Message{
		{Role: models.RoleUser, Text: "hi"},
		{Role: models.RoleAssistant, Text: "hello"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, schema.User, out[0].Role)
	assert.Equal(t, "hi", out[0].Content)
	assert.Equal(t, schema.Assistant, out[1].Role)
	assert.Equal(t, "hello", out[1].Content)
}

func TestBuildSystemInstruction(t *testing.T) {
	full := BuildSystemInstruction(models.ProfileContext{
		SystemPrompt:   "Be kind.",
		PriorSummaries: "Sleep: trouble sleeping.",
		PreferenceText: "The user prefers short replies.",
	})
	assert.Equal(t,
		"Be kind.\n\nContext from previous conversations:\nSleep: trouble sleeping.\n\nUser preferences:\nThe user prefers short replies.",
		full)

	// Empty sections leave no trace, so a new user gets the bare prompt.
	bare := BuildSystemInstruction(models.ProfileContext{SystemPrompt: "Be kind.", PriorSummaries: "  "})
	assert.Equal(t, "Be kind.", bare)

	// Same inputs, same instruction.
	assert.Equal(t, full, BuildSystemInstruction(models.ProfileContext{
		SystemPrompt:   "Be kind.",
		PriorSummaries: "Sleep: trouble sleeping.",
		PreferenceText: "The user prefers short replies.",
	}))
}
