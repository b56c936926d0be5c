package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configPath  string
	storagePath string
	driver      string
	personaFlag string
	endpoint    string
	ephemeral   bool
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "persona-chat",
	Short: "Chat with an AI assistant that answers in a chosen persona",
	Long: `A terminal chat client for an AI assistant that answers in the voice of a
selected persona (Teacher, Coach, Friend, ...).

The conversation is kept on disk between runs. Replies come either straight
from a Gemini-compatible model API or from a persona-chat chat route
started with 'persona-chat serve'.

Features:
  • Interactive chat with slash commands
  • Persona switching, including custom personas
  • Text file attachments inlined into the conversation
  • Copy or read aloud the latest reply
  • Export as Markdown, JSON, JSONL, YAML or PDF

Quick Start:
  export GEMINI_API_KEY=...
  persona-chat chat                      # Start chatting
  persona-chat send "Explain recursion"  # One round trip
  persona-chat export --format pdf       # Save the conversation`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.persona-chat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "History database file")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "Storage driver (sqlite, bolt, memory)")
	rootCmd.PersistentFlags().StringVarP(&personaFlag, "persona", "p", "", "Persona to answer as")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Chat route URL; talk to the model API directly when empty")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep history in memory only")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
