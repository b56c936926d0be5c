package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/persona-chat/internal"
)

// JSONExporter exports the whole transcript as one indented JSON document
type JSONExporter struct{}

func (e *JSONExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(transcript)
}

func (e *JSONExporter) Extension() string {
	return "json"
}
