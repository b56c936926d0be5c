package internal

import "time"

// CreateTestMessages returns n completed user/assistant exchanges
func CreateTestMessages(n int) []Message {
	messages := make([]Message, 0, 2*n)
	for i := 0; i < n; i++ {
		messages = append(messages,
			Message{Sender: SenderUser, Text: "Hello"},
			Message{Sender: SenderAssistant, Text: "Hi there!"},
		)
	}
	return messages
}

// CreateTestTranscript creates a transcript with a fixed export time
func CreateTestTranscript(messages []Message) *Transcript {
	return &Transcript{
		Title:      "Chat Session",
		Persona:    DefaultPersona,
		ExportedAt: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		Messages:   messages,
	}
}
