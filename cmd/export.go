package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iksnae/persona-chat/internal"
	"github.com/iksnae/persona-chat/internal/export"
	"github.com/spf13/cobra"
)

var (
	format  string
	outPath string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the conversation to a file",
	Long: `Export the saved conversation (md, json, jsonl, yaml, pdf).

The file defaults to chat-session.<ext> in the current directory. Use
--out - to write to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		path, err := exportTranscript(cmd.Context(), s.transcript(), format, outPath, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if path != "-" {
			internal.PrintSuccess(fmt.Sprintf("Export complete: %s", path))
		}
		return nil
	},
}

// exportTranscript writes t in format to path ("" for the default file name,
// "-" for stdout) and returns where it went.
func exportTranscript(ctx context.Context, t *internal.Transcript, format, path string, stdout io.Writer) (string, error) {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = export.DefaultFileName(exporter)
	}
	if path == "-" {
		if err := exporter.Export(t, stdout); err != nil {
			return "", &internal.ExportError{Format: format, Path: path, Err: err}
		}
		return path, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d message(s) to %s", len(t.Messages), path), func() error {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		file, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := exporter.Export(t, file); err != nil {
			_ = file.Close()
			return err
		}
		return file.Close()
	})
	if err != nil {
		return "", &internal.ExportError{Format: format, Path: path, Err: err}
	}
	return path, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format (md, json, jsonl, yaml, pdf)")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default chat-session.<ext>, - for stdout)")
}
