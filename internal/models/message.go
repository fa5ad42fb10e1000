package models

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn as rendered and persisted. Pending is true
// only while the assistant's text is still streaming; it is stripped before
// any write, so a persisted message never carries it.
type Message struct {
	Role    Role   `json:"role"`
	Text    string `json:"text"`
	Pending bool   `json:"pending,omitempty"`
}
