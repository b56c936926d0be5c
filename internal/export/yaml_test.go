package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/persona-chat/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	transcript := internal.CreateTestTranscript(internal.CreateTestMessages(1))

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"title: Chat Session", "persona: Teacher", "sender: user", "text: Hi there!"} {
		if !strings.Contains(output, want) {
			t.Errorf("Export() output missing %q\nGot:\n%s", want, output)
		}
	}

	var decoded internal.Transcript
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Export() output is not valid YAML: %v", err)
	}
	if len(decoded.Messages) != 2 || decoded.Messages[1].Sender != internal.SenderAssistant {
		t.Errorf("decoded messages = %+v", decoded.Messages)
	}
}
