package internal

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// CopyToClipboard writes text to the system clipboard
func CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy text: %w", err)
	}
	return nil
}

// ClipboardAvailable reports whether a clipboard utility was found
func ClipboardAvailable() bool {
	return !clipboard.Unsupported
}
