package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"

	"github.com/iksnae/persona-chat/internal"
)

func TestPDFExporter_Export(t *testing.T) {
	transcript := internal.CreateTestTranscript(internal.CreateTestMessages(1))

	var buf bytes.Buffer
	if err := (&PDFExporter{}).Export(transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("Export() output should start with %%PDF, got %q", buf.Bytes()[:min(8, buf.Len())])
	}
	if got := bytes.Count(buf.Bytes(), []byte("/Type /Page\n")); got != 1 {
		t.Errorf("page count = %d, want 1", got)
	}
}

func TestPDFExporter_PaginatesLongTranscripts(t *testing.T) {
	var messages []internal.Message
	for i := 0; i < 60; i++ {
		messages = append(messages, internal.Message{Sender: internal.SenderUser, Text: fmt.Sprintf("message %d", i)})
	}

	var buf bytes.Buffer
	if err := (&PDFExporter{}).Export(internal.CreateTestTranscript(messages), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	// 119 body lines at 0.2in from y=2 overflow the first page
	if got := bytes.Count(buf.Bytes(), []byte("/Type /Page\n")); got < 2 {
		t.Errorf("page count = %d, want at least 2", got)
	}
}

func TestPDFExporter_NonLatinText(t *testing.T) {
	transcript := internal.CreateTestTranscript([]internal.Message{
		{Sender: internal.SenderUser, Text: "📎 Uploaded notes.txt: こんにちは..."},
	})
	var buf bytes.Buffer
	if err := (&PDFExporter{}).Export(transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
}

func TestWrapLines(t *testing.T) {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)

	long := strings.Repeat("word ", 60)
	lines := wrapLines(pdf, "short\n\n"+long)

	if lines[0] != "short" || lines[1] != "" {
		t.Errorf("wrapLines() = %q, want short then a blank line", lines[:2])
	}
	if len(lines) < 4 {
		t.Fatalf("wrapLines() returned %d lines, want the long paragraph wrapped", len(lines))
	}
	for _, line := range lines[2:] {
		if w := pdf.GetStringWidth(strings.TrimSpace(line)); w > pdfTextWidth {
			t.Errorf("line %q is %.2fin wide, want <= %.1f", line, w, pdfTextWidth)
		}
	}
}

func TestTranscriptText(t *testing.T) {
	got := transcriptText(internal.CreateTestTranscript(internal.CreateTestMessages(1)))
	want := "User: Hello\n\nAssistant: Hi there!"
	if got != want {
		t.Errorf("transcriptText() = %q, want %q", got, want)
	}
}
