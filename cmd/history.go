package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyRaw   bool
)

var (
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	failedMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the saved conversation",
	Long: `Display the messages of the saved conversation.

Assistant replies are rendered as Markdown when stdout is a terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		r := newMessageRenderer(cmd.OutOrStdout(), !historyRaw && internal.IsTerminal(os.Stdout))
		r.history(s.persona, s.manager.Messages(), historyLimit)
		return nil
	},
}

// messageRenderer prints messages with the history styles
type messageRenderer struct {
	w        io.Writer
	markdown *glamour.TermRenderer
}

func newMessageRenderer(w io.Writer, markdown bool) *messageRenderer {
	r := &messageRenderer{w: w}
	if markdown {
		tr, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
		if err != nil {
			internal.LogDebug("Markdown rendering disabled: %v", err)
		} else {
			r.markdown = tr
		}
	}
	return r
}

// history prints the header and the last limit messages (all when limit <= 0)
func (r *messageRenderer) history(persona string, messages []internal.Message, limit int) {
	header := sessionHeaderStyle.Render(fmt.Sprintf("💬 Chat with %s", personaLabel(persona)))
	fmt.Fprintln(r.w, header)
	fmt.Fprintln(r.w, sessionMetaStyle.Render(fmt.Sprintf("Messages: %d", len(messages))))

	if len(messages) == 0 {
		fmt.Fprintln(r.w, indexStyle.Render("No messages yet. Start with 'persona-chat chat'."))
		return
	}

	start := 0
	if limit > 0 && limit < len(messages) {
		start = len(messages) - limit
		fmt.Fprintln(r.w, indexStyle.Render(fmt.Sprintf("... (%d earlier message(s))", start)))
		fmt.Fprintln(r.w)
	}

	for i := start; i < len(messages); i++ {
		r.message(i+1, len(messages), messages[i])
	}
}

func (r *messageRenderer) message(index, total int, msg internal.Message) {
	style, label := assistantMessageStyle, "🤖 Assistant"
	switch {
	case msg.Sender == internal.SenderUser:
		style, label = userMessageStyle, "👤 User"
	case msg.Pending:
		label = "🤖 Assistant (waiting)"
	case msg.Failed:
		style, label = failedMessageStyle, "🤖 Assistant (failed)"
	}

	header := style.Render(label)
	if total > 0 {
		header += " " + indexStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	}
	fmt.Fprintln(r.w, header)

	content := strings.TrimSpace(msg.Text)
	switch {
	case msg.Pending:
		fmt.Fprintln(r.w, messageContentStyle.Foreground(lipgloss.Color("240")).Render("Thinking..."))
		return
	case content == "":
		fmt.Fprintln(r.w, messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
		return
	}

	if r.markdown != nil && msg.Sender == internal.SenderAssistant && !msg.Failed {
		if out, err := r.markdown.Render(content); err == nil {
			fmt.Fprint(r.w, out)
			return
		}
	}
	fmt.Fprintln(r.w, messageContentStyle.Render(wrapText(content, 80)))
}

func personaLabel(persona string) string {
	if p, ok := internal.LookupPersona(persona); ok {
		return fmt.Sprintf("%s %s", p.Icon, p.ID)
	}
	return persona
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len([]rune(line)) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		currentLine := ""
		for _, word := range strings.Fields(line) {
			switch {
			case currentLine == "":
				currentLine = word
			case len([]rune(currentLine))+len([]rune(word))+1 > width:
				wrapped = append(wrapped, currentLine)
				currentLine = word
			default:
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Show only the last N messages")
	historyCmd.Flags().BoolVar(&historyRaw, "raw", false, "Print replies without Markdown rendering")
}
