package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/iksnae/persona-chat/internal"
)

// Page geometry, in inches on Letter paper
const (
	pdfLeft       = 1.0
	pdfTextWidth  = 7.5
	pdfBodyTop    = 2.0
	pdfPageTop    = 1.0
	pdfPageBottom = 10.0
	pdfLineHeight = 0.2
)

// PDFExporter renders the transcript as a plain-text PDF document
type PDFExporter struct{}

func (e *PDFExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(transcript.ExportedAt)
	pdf.SetTitle(transcript.Title, true)
	pdf.SetSubject("AI Chat Conversation", true)
	pdf.SetCreator("AI Chatbot", true)

	// Core fonts are cp1252; anything outside it is replaced
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 20)
	pdf.Text(pdfLeft, 1, tr(transcript.Title))

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pdfLeft, 1.5, "Exported on: "+transcript.ExportedAt.Format("1/2/2006"))

	pdf.SetFont("Helvetica", "", 12)
	y := pdfBodyTop
	for _, line := range wrapLines(pdf, tr(transcriptText(transcript))) {
		if y > pdfPageBottom {
			pdf.AddPage()
			y = pdfPageTop
		}
		pdf.Text(pdfLeft, y, line)
		y += pdfLineHeight
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

func (e *PDFExporter) Extension() string {
	return "pdf"
}

// transcriptText flattens the conversation into labelled paragraphs
func transcriptText(transcript *internal.Transcript) string {
	var b strings.Builder
	for i, msg := range transcript.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s: %s", msg.Sender.Label(), msg.Text)
	}
	return b.String()
}

// wrapLines splits text into lines no wider than the body, keeping blank lines
func wrapLines(pdf *fpdf.Fpdf, text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		if strings.TrimSpace(para) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, pdf.SplitText(para, pdfTextWidth)...)
	}
	return out
}
