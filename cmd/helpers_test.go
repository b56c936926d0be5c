package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/iksnae/persona-chat/internal"
	"github.com/iksnae/persona-chat/internal/config"
	"github.com/iksnae/persona-chat/testutil"
)

type cmdEnv struct {
	dir    string
	stub   *testutil.StubCompleter
	copied []string
	dbPath string
}

// setupCmd points every command at a temp store and stubs the outside world
func setupCmd(t *testing.T) *cmdEnv {
	t.Helper()
	env := &cmdEnv{
		dir:  testutil.CreateTempDir(t),
		stub: &testutil.StubCompleter{Reply: "Four."},
	}
	env.dbPath = filepath.Join(env.dir, "history.db")

	t.Setenv("HOME", env.dir)
	for _, key := range []string{config.EnvGeminiKey, config.EnvAPIKey, config.EnvBaseURL, config.EnvModel, config.EnvEndpoint} {
		t.Setenv(key, "")
	}

	verbose, configPath, driver, personaFlag, endpoint, ephemeral = false, "", "", "", "", false
	storagePath = env.dbPath
	historyLimit, historyRaw = 0, false
	sendAttach = ""
	format, outPath = "md", ""
	inspectSample = 200
	serveAddr = ""

	origCompleter, origSpeaker, origCopy := newCompleter, speaker, copyToClipboard
	newCompleter = func(*config.Config) internal.Completer { return env.stub }
	speaker = func() *internal.Speaker {
		return internal.NewSpeaker(func(string) (string, error) { return "", errors.New("not found") })
	}
	copyToClipboard = func(text string) error {
		env.copied = append(env.copied, text)
		return nil
	}
	t.Cleanup(func() {
		newCompleter, speaker, copyToClipboard = origCompleter, origSpeaker, origCopy
	})
	return env
}

// runCmd executes the root command with args and returns what it printed
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// savedMessages reads the history straight from the temp store
func (e *cmdEnv) savedMessages(t *testing.T) []internal.Message {
	t.Helper()
	kv, err := internal.OpenSQLiteStore(e.dbPath)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	defer func() { _ = kv.Close() }()
	return internal.Load[[]internal.Message](kv, internal.HistoryKey, nil)
}
