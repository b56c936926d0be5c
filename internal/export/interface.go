package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/persona-chat/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(transcript *internal.Transcript, w io.Writer) error
	Extension() string
}

// Formats lists the names NewExporter accepts
var Formats = []string{"md", "json", "jsonl", "yaml", "pdf"}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "pdf":
		return &PDFExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

// DefaultFileName is the file an export lands in when no path is given
func DefaultFileName(e Exporter) string {
	return "chat-session." + e.Extension()
}
