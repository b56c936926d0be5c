package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/persona-chat/internal"
)

// JSONLExporter writes one message per line, the same shape the history
// snapshot uses.
type JSONLExporter struct{}

func (e *JSONLExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for i, msg := range transcript.Messages {
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("failed to encode message %d: %w", i, err)
		}
	}

	return nil
}

func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
