package cmd

import (
	"errors"

	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var errNoReply = errors.New("no assistant reply yet")

// copyToClipboard is swapped out in tests
var copyToClipboard = internal.CopyToClipboard

// copyCmd represents the copy command
var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy the latest reply to the clipboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		return copyLastReply(s)
	},
}

func copyLastReply(s *chatSession) error {
	reply, ok := s.manager.LastReply()
	if !ok {
		return errNoReply
	}
	if err := copyToClipboard(reply); err != nil {
		return err
	}
	internal.PrintSuccess("Copied to clipboard")
	return nil
}

func init() {
	rootCmd.AddCommand(copyCmd)
}
