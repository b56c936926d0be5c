package internal

import "strings"

// DefaultPersona is used when no persona is chosen
const DefaultPersona = "Teacher"

// Persona is a label that shapes the style of replies
type Persona struct {
	ID          string
	Icon        string
	Description string
}

// Personas is the built-in catalogue
var Personas = []Persona{
	{ID: "Teacher", Icon: "👩‍🏫", Description: "Educational"},
	{ID: "Assistant", Icon: "🤵", Description: "Professional"},
	{ID: "Coach", Icon: "🏆", Description: "Motivational"},
	{ID: "Consultant", Icon: "💼", Description: "Strategic"},
	{ID: "Friend", Icon: "😊", Description: "Casual"},
	{ID: "Expert", Icon: "🔬", Description: "Technical"},
}

// LookupPersona finds a catalogue persona by label, ignoring case
func LookupPersona(label string) (Persona, bool) {
	label = strings.TrimSpace(label)
	for _, p := range Personas {
		if strings.EqualFold(p.ID, label) {
			return p, true
		}
	}
	return Persona{}, false
}

// ResolvePersona returns the canonical label for a catalogue persona, the
// trimmed label for a custom one, or DefaultPersona when label is blank.
func ResolvePersona(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return DefaultPersona
	}
	if p, ok := LookupPersona(label); ok {
		return p.ID
	}
	LogDebug("Using custom persona %q", label)
	return label
}
