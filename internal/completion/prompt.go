package completion

import "fmt"

// BuildPrompt frames userText with the persona instruction
func BuildPrompt(persona, userText string) string {
	return fmt.Sprintf("You are a %s. Answer the user's message helpfully.\nUser: %s", persona, userText)
}
