package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/persona-chat/internal"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export exports a transcript to Markdown format
func (e *MarkdownExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", transcript.Title)
	if transcript.Persona != "" {
		fmt.Fprintf(&b, "**Persona:** %s  \n", transcript.Persona)
	}
	fmt.Fprintf(&b, "**Exported:** %s  \n", transcript.ExportedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Messages:** %d\n\n", len(transcript.Messages))

	b.WriteString("---\n\n")
	b.WriteString("## Messages\n\n")

	for i, msg := range transcript.Messages {
		label := msg.Sender.Label()
		if msg.Failed {
			label += " (failed)"
		}
		fmt.Fprintf(&b, "**%s:**\n\n%s\n\n", label, escapeMarkdown(msg.Text))

		if i < len(transcript.Messages)-1 {
			b.WriteString("---\n\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// escapeMarkdown escapes bold markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	inCodeBlock := false

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			inCodeBlock = !inCodeBlock
		case !inCodeBlock:
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			lines[i] = strings.ReplaceAll(line, "__", "\\_\\_")
		}
	}

	return strings.Join(lines, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
