package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var sendAttach string

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [text...]",
	Short: "Send one message and print the reply",
	Long: `Send a single message to the current persona and print the reply.

With --attach the file is inlined as the message (its first characters, up to
the configured truncation length) and any text arguments are ignored.`,
	Example: `  persona-chat send "What is a closure?"
  persona-chat send --persona Coach "I skipped the gym again"
  persona-chat send --attach notes.md`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if sendAttach != "" {
			if err := stageAttachment(s, sendAttach); err != nil {
				return err
			}
		}

		r := newMessageRenderer(cmd.OutOrStdout(), internal.IsTerminal(os.Stdout))
		return sendTurn(cmd.Context(), s, strings.Join(args, " "), r)
	},
}

// stageAttachment reads path and holds it for the next send
func stageAttachment(s *chatSession, path string) error {
	a, err := internal.Extract(path, s.cfg.AllowList())
	if err != nil {
		return err
	}
	s.manager.Stage(a)
	internal.LogInfo("Attached %s (%d bytes)", a.FileName, len(a.Content))
	return nil
}

// sendTurn runs one round trip and prints the resolved reply
func sendTurn(ctx context.Context, s *chatSession, text string, r *messageRenderer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var reply internal.Message
	err := internal.ShowProgress(ctx, fmt.Sprintf("%s is thinking...", s.persona), func() error {
		var sendErr error
		reply, sendErr = s.manager.Send(ctx, s.completer, s.persona, text)
		return sendErr
	})

	if reply.Sender != "" {
		r.message(0, 0, reply)
	}
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendAttach, "attach", "a", "", "Attach a text file as the message")
}
