package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned by a KVStore when nothing is stored under a key
	ErrKeyNotFound = errors.New("key not found")

	// ErrEmptyMessage rejects a send with blank text and no staged attachment
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSendInFlight rejects a send while a reply is still pending
	ErrSendInFlight = errors.New("a send is already in flight")

	// ErrNothingPending rejects a resolve when no placeholder is waiting
	ErrNothingPending = errors.New("no pending message to resolve")

	// ErrConversationReset drops a reply whose conversation was reset mid-call
	ErrConversationReset = errors.New("conversation was reset")

	// ErrEmptyReply means the completion answered without any text
	ErrEmptyReply = errors.New("empty reply")

	// ErrAttachmentRejected is returned for file types outside the allow-list
	ErrAttachmentRejected = errors.New("file type not allowed")

	// ErrSpeechUnavailable means no speech synthesis engine was found
	ErrSpeechUnavailable = errors.New("text-to-speech not supported")

	// ErrClipboardUnavailable means the platform has no usable clipboard
	ErrClipboardUnavailable = errors.New("clipboard not supported")
)

// StorageError represents errors accessing the persisted store
type StorageError struct {
	Key string
	Op  string // "get", "put", "delete", "decode", "encode"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// AttachmentError represents errors reading or accepting an attachment
type AttachmentError struct {
	FileName string
	Err      error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attachment error [%s]: %v", e.FileName, e.Err)
}

func (e *AttachmentError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
