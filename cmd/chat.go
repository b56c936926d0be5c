package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/persona-chat/internal"
	"github.com/iksnae/persona-chat/internal/config"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const inputHistoryFile = "input_history"

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Width(24)
)

var slashHelp = [][2]string{
	{"/attach <path>", "Stage a text file; it replaces your next message"},
	{"/detach", "Drop the staged file"},
	{"/send", "Send the staged file on its own"},
	{"/persona [label]", "Show or switch the persona"},
	{"/history [n]", "Show the conversation (last n messages)"},
	{"/reset", "Clear the conversation"},
	{"/copy", "Copy the latest reply"},
	{"/speak", "Read the latest reply aloud"},
	{"/stop", "Stop reading aloud"},
	{"/export <format> [path]", "Export (md, json, jsonl, yaml, pdf)"},
	{"/help", "Show this help"},
	{"/quit", "Leave the chat"},
}

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Start an interactive chat with the current persona.

Type a message and press Enter to send it. Lines starting with / are
commands; type /help to list them. Ctrl+C or Ctrl+D leaves the chat.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		line := liner.NewLiner()
		line.SetCtrlCAborts(true)
		historyPath := filepath.Join(config.Dir(), inputHistoryFile)
		loadInputHistory(line, historyPath)
		defer func() {
			saveInputHistory(line, historyPath)
			_ = line.Close()
		}()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		out := cmd.OutOrStdout()
		p := &repl{
			s:   s,
			in:  line,
			out: out,
			r:   newMessageRenderer(out, internal.IsTerminal(os.Stdout)),
		}
		return p.run(ctx)
	},
}

// lineReader is the part of liner.State the loop uses
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type repl struct {
	s   *chatSession
	in  lineReader
	out io.Writer
	r   *messageRenderer
}

func (p *repl) run(ctx context.Context) error {
	defer speaker().Stop()

	fmt.Fprintln(p.out, sessionHeaderStyle.Render(fmt.Sprintf("💬 Chatting with %s", personaLabel(p.s.persona))))
	if n := len(p.s.manager.Messages()); n > 0 {
		fmt.Fprintln(p.out, sessionMetaStyle.Render(fmt.Sprintf("Resuming conversation with %d message(s). Type /help for commands.", n)))
	} else {
		fmt.Fprintln(p.out, sessionMetaStyle.Render("Type /help for commands."))
	}

	for {
		input, err := p.in.Prompt(p.prompt())
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				internal.LogDebug("Prompt ended: %v", err)
			}
			fmt.Fprintln(p.out)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		p.in.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			quit, err := p.handleSlash(ctx, input)
			if err != nil {
				internal.PrintError(err.Error())
			}
			if quit {
				return nil
			}
			continue
		}

		if err := sendTurn(ctx, p.s, input, p.r); err != nil {
			internal.PrintError(err.Error())
		}
	}
}

func (p *repl) prompt() string {
	label := p.s.persona
	if persona, ok := internal.LookupPersona(label); ok {
		label = persona.Icon + " " + persona.ID
	}
	if staged := p.s.manager.Staged(); staged != nil {
		label += " 📎" + staged.FileName
	}
	return promptStyle.Render(label+" ›") + " "
}

// handleSlash runs one slash command and reports whether to leave the loop
func (p *repl) handleSlash(ctx context.Context, input string) (bool, error) {
	fields := strings.Fields(input)
	arg := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))

	switch strings.ToLower(fields[0]) {
	case "/quit", "/exit", "/q":
		return true, nil

	case "/help", "/?":
		for _, h := range slashHelp {
			fmt.Fprintf(p.out, "  %s %s\n", helpKeyStyle.Render(h[0]), h[1])
		}

	case "/attach":
		if arg == "" {
			return false, fmt.Errorf("usage: /attach <path>")
		}
		if err := stageAttachment(p.s, arg); err != nil {
			return false, err
		}
		internal.PrintInfo(fmt.Sprintf("Attached %s; it will be sent with your next message", filepath.Base(arg)))

	case "/detach":
		if p.s.manager.Staged() == nil {
			return false, fmt.Errorf("nothing attached")
		}
		p.s.manager.Unstage()
		internal.PrintInfo("Attachment removed")

	case "/send":
		if p.s.manager.Staged() == nil {
			return false, fmt.Errorf("nothing attached")
		}
		return false, sendTurn(ctx, p.s, "", p.r)

	case "/persona":
		if arg == "" {
			fmt.Fprintf(p.out, "Current persona: %s\n", personaLabel(p.s.persona))
			return false, nil
		}
		p.s.persona = internal.ResolvePersona(arg)
		internal.PrintSuccess(fmt.Sprintf("Now chatting with %s", personaLabel(p.s.persona)))

	case "/history":
		limit := 0
		if arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				return false, fmt.Errorf("usage: /history [n]")
			}
			limit = n
		}
		p.r.history(p.s.persona, p.s.manager.Messages(), limit)

	case "/reset":
		p.s.manager.Reset()
		internal.PrintSuccess("Conversation cleared")

	case "/copy":
		return false, copyLastReply(p.s)

	case "/speak":
		reply, ok := p.s.manager.LastReply()
		if !ok {
			return false, errNoReply
		}
		return false, speaker().Speak(reply)

	case "/stop":
		speaker().Stop()

	case "/export":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /export <format> [path]")
		}
		path := ""
		if len(fields) > 2 {
			path = strings.Join(fields[2:], " ")
		}
		written, err := exportTranscript(ctx, p.s.transcript(), fields[1], path, p.out)
		if err != nil {
			return false, err
		}
		if written != "-" {
			internal.PrintSuccess(fmt.Sprintf("Exported to %s", written))
		}

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", fields[0])
	}
	return false, nil
}

func loadInputHistory(line *liner.State, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := line.ReadHistory(f); err != nil {
		internal.LogDebug("Failed to read input history: %v", err)
	}
}

func saveInputHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		internal.LogDebug("Failed to save input history: %v", err)
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		internal.LogDebug("Failed to write input history: %v", err)
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
