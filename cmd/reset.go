package cmd

import (
	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the saved conversation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		s.manager.Reset()
		internal.PrintSuccess("Conversation cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
