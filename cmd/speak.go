package cmd

import (
	"context"
	"strings"

	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

// speaker is swapped out in tests
var speaker = internal.DefaultSpeaker

// speakCmd represents the speak command
var speakCmd = &cobra.Command{
	Use:   "speak [text...]",
	Short: "Read the latest reply (or the given text) aloud",
	Long: `Read text aloud with the local speech engine (say, spd-say or espeak).

Without arguments the latest assistant reply is read. The command returns once
speech finishes; interrupting it stops playback.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if text == "" {
			s, err := openSession()
			if err != nil {
				return err
			}
			reply, ok := s.manager.LastReply()
			s.Close()
			if !ok {
				return errNoReply
			}
			text = reply
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		sp := speaker()
		if err := sp.Speak(text); err != nil {
			return err
		}
		return sp.Wait(ctx)
	},
}

func init() {
	rootCmd.AddCommand(speakCmd)
}
