package client

import (
	"strings"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/Eys-55/StillPoint-sub000/internal/models"
)

// ValidateHistory filters a stored message list down to what the model can
// accept: entries with empty or whitespace-only text are dropped, and a user
// turn directly following another user turn is dropped. Consecutive
// assistant turns are preserved; they show up when a previous session ended
// before the user replied, and are a data-quality warning rather than an
// error.
func ValidateHistory(history []models.Message, logger *zap.Logger) []models.Message {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make([]models.Message, 0, len(history))
	var prev models.Role
	for _, msg := range history {
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		if msg.Role == models.RoleUser && prev == models.RoleUser {
			logger.Warn("dropping consecutive user message from session history")
			continue
		}
		if msg.Role == models.RoleAssistant && prev == models.RoleAssistant {
			logger.Warn("consecutive assistant messages in stored history")
		}
		out = append(out, msg)
		prev = msg.Role
	}
	return out
}

// FormatHistory maps validated messages to the model's wire format. The
// assistant role translates to the model-side role; everything else is sent
// as a user turn.
func FormatHistory(history []models.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case models.RoleAssistant:
			out = append(out, schema.AssistantMessage(msg.Text, nil))
		default:
			out = append(out, schema.UserMessage(msg.Text))
		}
	}
	return out
}

// BuildSystemInstruction concatenates the static prompt with the labeled
// profile sections. Output is deterministic for identical inputs.
func BuildSystemInstruction(profile models.ProfileContext) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(profile.SystemPrompt))
	if s := strings.TrimSpace(profile.PriorSummaries); s != "" {
		b.WriteString("\n\nContext from previous conversations:\n")
		b.WriteString(s)
	}
	if s := strings.TrimSpace(profile.PreferenceText); s != "" {
		b.WriteString("\n\nUser preferences:\n")
		b.WriteString(s)
	}
	return b.String()
}
