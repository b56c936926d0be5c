package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var inspectSample int

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect the raw history store",
	Long: `Inspect the keys and values held by the history store.

This command is useful when a snapshot fails to load:
  • Every stored key with its size
  • Whether the value decodes as a message list
  • A preview of the first bytes of each value

Examples:
  persona-chat inspect
  persona-chat inspect --driver bolt --storage ./history.bolt
  persona-chat inspect --sample 400`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		kv, err := internal.OpenStore(cfg.Driver, cfg.StoragePath)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer func() { _ = kv.Close() }()

		fmt.Fprintf(cmd.OutOrStdout(), "📋 Store: %s (%s)\n", cfg.StoragePath, cfg.Driver)
		return inspectStore(cmd.OutOrStdout(), kv, inspectSample)
	},
}

func inspectStore(out io.Writer, kv internal.KVStore, sample int) error {
	lister, ok := kv.(internal.KeyLister)
	if !ok {
		return fmt.Errorf("storage %T cannot list its keys", kv)
	}
	keys, err := lister.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	if len(keys) == 0 {
		fmt.Fprintln(out, "⚠️  Store is empty")
		return nil
	}
	fmt.Fprintf(out, "📊 Found %d key(s)\n\n", len(keys))

	for _, key := range keys {
		value, err := kv.Get(key)
		if err != nil {
			fmt.Fprintf(out, "⚠️  Error reading %s: %v\n", key, err)
			continue
		}
		inspectValue(out, key, value, sample)
		fmt.Fprintln(out)
	}
	return nil
}

func inspectValue(out io.Writer, key string, value []byte, sample int) {
	fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(out, "📦 Key: %s\n", key)
	fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(out, "📏 Size: %d bytes\n", len(value))

	var messages []internal.Message
	if err := json.Unmarshal(value, &messages); err != nil {
		fmt.Fprintf(out, "🧩 Not a message list: %v\n", err)
	} else {
		var pending, failed int
		for _, msg := range messages {
			if msg.Pending {
				pending++
			}
			if msg.Failed {
				failed++
			}
		}
		fmt.Fprintf(out, "💬 Messages: %d (pending %d, failed %d)\n", len(messages), pending, failed)
	}

	if sample > 0 {
		preview := string(value)
		if runes := []rune(preview); len(runes) > sample {
			preview = string(runes[:sample]) + "..."
		}
		fmt.Fprintf(out, "📄 Value: %s\n", preview)
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectSample, "sample", 200, "Characters of each value to preview (0 to hide)")
}
