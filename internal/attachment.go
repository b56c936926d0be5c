package internal

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTruncateLength is how many characters of an attachment are inlined
const DefaultTruncateLength = 300

// TruncationMarker follows a shortened attachment preview
const TruncationMarker = "..."

// DefaultAllowedExtensions are the text-like file extensions accepted as attachments
var DefaultAllowedExtensions = []string{
	"txt", "md", "json", "js", "ts", "jsx", "tsx", "css", "html", "py", "java", "cpp", "c", "csv",
}

// AllowList decides which files may be attached. An extension outside
// Extensions passes only if its MIME type starts with one of MIMEPrefixes.
type AllowList struct {
	Extensions   []string
	MIMEPrefixes []string
	// TypeByExtension maps ".ext" to a MIME type; nil means mime.TypeByExtension
	TypeByExtension func(ext string) string
}

// DefaultAllowList accepts DefaultAllowedExtensions and any text/* MIME type
func DefaultAllowList() AllowList {
	return AllowList{
		Extensions:   append([]string(nil), DefaultAllowedExtensions...),
		MIMEPrefixes: []string{"text/"},
	}
}

// Allows reports whether fileName passes the allow-list
func (a AllowList) Allows(fileName string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" {
		return false
	}
	for _, allowed := range a.Extensions {
		if strings.EqualFold(ext, strings.TrimPrefix(allowed, ".")) {
			return true
		}
	}

	if len(a.MIMEPrefixes) == 0 {
		return false
	}
	lookup := a.TypeByExtension
	if lookup == nil {
		lookup = mime.TypeByExtension
	}
	mediaType := lookup("." + ext)
	if mediaType == "" {
		return false
	}
	for _, prefix := range a.MIMEPrefixes {
		if strings.HasPrefix(mediaType, prefix) {
			return true
		}
	}
	return false
}

// Attachment is a file read into text, staged for the next send
type Attachment struct {
	FileName string `json:"fileName"`
	Content  string `json:"content"`
}

// Extract reads the file at path as text after checking the allow-list
func Extract(path string, allow AllowList) (*Attachment, error) {
	name := filepath.Base(path)
	if !allow.Allows(name) {
		return nil, &AttachmentError{FileName: name, Err: ErrAttachmentRejected}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &AttachmentError{FileName: name, Err: err}
	}
	defer f.Close()

	return ExtractReader(name, f, allow)
}

// ExtractReader reads r as the content of fileName
func ExtractReader(fileName string, r io.Reader, allow AllowList) (*Attachment, error) {
	if !allow.Allows(fileName) {
		return nil, &AttachmentError{FileName: fileName, Err: ErrAttachmentRejected}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &AttachmentError{FileName: fileName, Err: fmt.Errorf("read failed: %w", err)}
	}
	return &Attachment{FileName: fileName, Content: string(data)}, nil
}

// BuildMessageText inlines the first n characters of the attachment.
// The truncation marker is always appended.
func BuildMessageText(a *Attachment, n int) string {
	if n < 0 {
		n = 0
	}
	content := a.Content
	if runes := []rune(content); len(runes) > n {
		content = string(runes[:n])
	}
	return fmt.Sprintf("📎 Uploaded %s: %s%s", a.FileName, content, TruncationMarker)
}
