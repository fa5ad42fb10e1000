package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultConversationTitle is the placeholder title a conversation carries
// until summarization rewrites it.
const DefaultConversationTitle = "New Conversation"

// Conversation is one persisted chat. The message list is stored serialized
// in MessagesJSON, insertion order significant. Summary, Ended and
// SummarizedAt are written only by the summarization step.
type Conversation struct {
	ID           string `gorm:"primaryKey;size:36"`
	UserID       string `gorm:"size:128;not null;index"`
	Title        string `gorm:"size:255;not null"`
	MessagesJSON string `gorm:"type:text"`
	Summary      string `gorm:"type:text"`
	Ended        bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	SummarizedAt *time.Time
}

// Messages decodes the stored message list. An empty column decodes to nil.
func (c *Conversation) Messages() ([]Message, error) {
	if strings.TrimSpace(c.MessagesJSON) == "" {
		return nil, nil
	}
	var msgs []Message
	if err := json.Unmarshal([]byte(c.MessagesJSON), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SetMessages serializes msgs into MessagesJSON.
func (c *Conversation) SetMessages(msgs []Message) error {
	encoded, err := EncodeMessages(msgs)
	if err != nil {
		return err
	}
	c.MessagesJSON = encoded
	return nil
}

// EncodeMessages serializes a message list the way Conversation stores it.
func EncodeMessages(msgs []Message) (string, error) {
	if msgs == nil {
		msgs = []Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
