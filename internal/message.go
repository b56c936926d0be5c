package internal

import (
	"encoding/json"
	"fmt"
	"time"
)

// Sender identifies who wrote a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"

	// senderBot is the legacy name for the assistant in older snapshots
	senderBot Sender = "bot"
)

// Message is one turn in the conversation
type Message struct {
	Sender  Sender `json:"sender" yaml:"sender"`
	Text    string `json:"text" yaml:"text"`
	Pending bool   `json:"pending,omitempty" yaml:"pending,omitempty"`
	Failed  bool   `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// UnmarshalJSON accepts the legacy "bot" sender and rejects unknown ones.
func (s *Sender) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Sender(raw) {
	case SenderUser:
		*s = SenderUser
	case SenderAssistant, senderBot:
		*s = SenderAssistant
	default:
		return fmt.Errorf("unknown sender %q", raw)
	}
	return nil
}

// Label returns a display label for the sender
func (s Sender) Label() string {
	if s == SenderUser {
		return "User"
	}
	return "Assistant"
}

// Transcript is the exportable view of a conversation
type Transcript struct {
	Title      string    `json:"title" yaml:"title"`
	Persona    string    `json:"persona,omitempty" yaml:"persona,omitempty"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Messages   []Message `json:"messages" yaml:"messages"`
}

// NewTranscript builds a transcript from a message list, skipping any
// placeholder that is still waiting for a reply.
func NewTranscript(persona string, messages []Message) *Transcript {
	out := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Pending {
			continue
		}
		out = append(out, msg)
	}
	return &Transcript{
		Title:      "Chat Session",
		Persona:    persona,
		ExportedAt: time.Now(),
		Messages:   out,
	}
}
