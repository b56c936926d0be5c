package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/persona-chat/internal"
)

func TestResetCommand(t *testing.T) {
	env := setupCmd(t)
	if _, err := runCmd(t, "send", "hi"); err != nil {
		t.Fatalf("send error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := runCmd(t, "reset"); err != nil {
			t.Fatalf("reset #%d error = %v", i+1, err)
		}
	}
	if saved := env.savedMessages(t); len(saved) != 0 {
		t.Errorf("saved = %+v, want nothing after reset", saved)
	}
}

func TestCopyCommand(t *testing.T) {
	env := setupCmd(t)

	if _, err := runCmd(t, "copy"); !errors.Is(err, errNoReply) {
		t.Errorf("copy error = %v, want errNoReply", err)
	}

	if _, err := runCmd(t, "send", "hi"); err != nil {
		t.Fatalf("send error = %v", err)
	}
	if _, err := runCmd(t, "copy"); err != nil {
		t.Fatalf("copy error = %v", err)
	}
	if len(env.copied) != 1 || env.copied[0] != "Four." {
		t.Errorf("copied = %v, want [Four.]", env.copied)
	}
}

func TestCopyCommand_ClipboardUnavailable(t *testing.T) {
	setupCmd(t)
	copyToClipboard = func(string) error { return internal.ErrClipboardUnavailable }
	if _, err := runCmd(t, "send", "hi"); err != nil {
		t.Fatalf("send error = %v", err)
	}
	if _, err := runCmd(t, "copy"); !errors.Is(err, internal.ErrClipboardUnavailable) {
		t.Errorf("copy error = %v, want ErrClipboardUnavailable", err)
	}
}

func TestSpeakCommand_Unavailable(t *testing.T) {
	setupCmd(t)
	if _, err := runCmd(t, "speak", "hello"); !errors.Is(err, internal.ErrSpeechUnavailable) {
		t.Errorf("speak error = %v, want ErrSpeechUnavailable", err)
	}
}

func TestSpeakCommand_NoReply(t *testing.T) {
	setupCmd(t)
	if _, err := runCmd(t, "speak"); !errors.Is(err, errNoReply) {
		t.Errorf("speak error = %v, want errNoReply", err)
	}
}

func TestExportCommand(t *testing.T) {
	env := setupCmd(t)
	if _, err := runCmd(t, "send", "hi"); err != nil {
		t.Fatalf("send error = %v", err)
	}

	tests := []struct {
		name   string
		format string
		file   string
		check  func(t *testing.T, data []byte)
	}{
		{
			name:   "json",
			format: "json",
			file:   "out/chat.json",
			check: func(t *testing.T, data []byte) {
				var transcript internal.Transcript
				if err := json.Unmarshal(data, &transcript); err != nil {
					t.Fatalf("invalid JSON: %v", err)
				}
				if len(transcript.Messages) != 2 || transcript.Persona != "Teacher" {
					t.Errorf("transcript = %+v", transcript)
				}
			},
		},
		{
			name:   "markdown",
			format: "md",
			file:   "chat.md",
			check: func(t *testing.T, data []byte) {
				if !strings.Contains(string(data), "# Chat Session") {
					t.Errorf("markdown missing heading:\n%s", data)
				}
			},
		},
		{
			name:   "pdf",
			format: "pdf",
			file:   "chat.pdf",
			check: func(t *testing.T, data []byte) {
				if !strings.HasPrefix(string(data), "%PDF") {
					t.Error("pdf output should start with %PDF")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(env.dir, tt.file)
			if _, err := runCmd(t, "export", "--format", tt.format, "--out", path); err != nil {
				t.Fatalf("export error = %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("export did not write %s: %v", path, err)
			}
			tt.check(t, data)
		})
	}
}

func TestExportCommand_Stdout(t *testing.T) {
	setupCmd(t)
	if _, err := runCmd(t, "send", "hi"); err != nil {
		t.Fatalf("send error = %v", err)
	}
	out, err := runCmd(t, "export", "--format", "jsonl", "--out", "-")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 2 {
		t.Errorf("got %d lines, want 2:\n%s", len(lines), out)
	}
}

func TestExportCommand_UnsupportedFormat(t *testing.T) {
	setupCmd(t)
	if _, err := runCmd(t, "export", "--format", "xml"); err == nil {
		t.Error("export error = nil, want unsupported format")
	}
}

func TestExportTranscript_Unwritable(t *testing.T) {
	env := setupCmd(t)
	blocker := filepath.Join(env.dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := exportTranscript(context.Background(), internal.CreateTestTranscript(nil), "md", filepath.Join(blocker, "x.md"), nil)
	var exportErr *internal.ExportError
	if !errors.As(err, &exportErr) || exportErr.Format != "md" {
		t.Errorf("exportTranscript() error = %v, want *ExportError", err)
	}
}

func TestPersonasCommand(t *testing.T) {
	setupCmd(t)
	out, err := runCmd(t, "personas")
	if err != nil {
		t.Fatalf("personas error = %v", err)
	}
	for _, p := range internal.Personas {
		if !strings.Contains(out, p.ID) || !strings.Contains(out, p.Description) {
			t.Errorf("personas output missing %s", p.ID)
		}
	}
	if !strings.Contains(out, "▸ ") {
		t.Error("personas output should mark the current persona")
	}

	out, err = runCmd(t, "personas", "--persona", "Pirate")
	if err != nil {
		t.Fatalf("personas error = %v", err)
	}
	if !strings.Contains(out, "Pirate") || !strings.Contains(out, "Custom") {
		t.Errorf("personas output missing custom persona:\n%s", out)
	}
}

func TestHealthcheckCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		want    string
	}{
		{name: "no credentials", args: []string{"healthcheck"}, wantErr: true, want: "No API key"},
		{name: "chat route", args: []string{"healthcheck", "--endpoint", "http://localhost:8787/api/chat"}, want: "Health check passed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCmd(t)
			out, err := runCmd(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("healthcheck error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("healthcheck output missing %q\nGot:\n%s", tt.want, out)
			}
		})
	}
}

func TestHealthcheckCommand_APIKey(t *testing.T) {
	setupCmd(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	out, err := runCmd(t, "healthcheck")
	if err != nil {
		t.Fatalf("healthcheck error = %v", err)
	}
	if !strings.Contains(out, "API key configured") {
		t.Errorf("healthcheck output missing key status:\n%s", out)
	}
}

func TestInspectCommand(t *testing.T) {
	setupCmd(t)

	out, err := runCmd(t, "inspect")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	if !strings.Contains(out, "Store is empty") {
		t.Errorf("inspect output = %q, want empty notice", out)
	}

	if _, err := runCmd(t, "send", "hi"); err != nil {
		t.Fatalf("send error = %v", err)
	}
	out, err = runCmd(t, "inspect", "--sample", "10")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{"Key: chat-history", "Messages: 2 (pending 0, failed 0)", "Value: "} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q\nGot:\n%s", want, out)
		}
	}
}

func TestServeCommand_StopsWithContext(t *testing.T) {
	setupCmd(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rootCmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0"})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		t.Errorf("serve error = %v, want clean shutdown", err)
	}
}
