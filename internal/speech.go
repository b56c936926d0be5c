package internal

import (
	"context"
	"os/exec"
	"strings"
	"sync"
)

// speechEngine is a command-line synthesiser and how to hand it text
type speechEngine struct {
	name string
	args func(text string) []string
}

var speechEngines = []speechEngine{
	{name: "say", args: func(text string) []string { return []string{text} }},
	{name: "spd-say", args: func(text string) []string { return []string{"--wait", text} }},
	{name: "espeak-ng", args: func(text string) []string { return []string{text} }},
	{name: "espeak", args: func(text string) []string { return []string{text} }},
}

// Speaker plays text through a local speech engine, one utterance at a time
type Speaker struct {
	mu     sync.Mutex
	path   string
	args   func(text string) []string
	cancel context.CancelFunc
	done   chan struct{}
}

var (
	defaultSpeaker *Speaker
	speakerOnce    sync.Once
)

// DefaultSpeaker returns the process-wide Speaker, creating it on first use
func DefaultSpeaker() *Speaker {
	speakerOnce.Do(func() {
		defaultSpeaker = NewSpeaker(exec.LookPath)
	})
	return defaultSpeaker
}

// NewSpeaker picks the first engine lookPath can find
func NewSpeaker(lookPath func(string) (string, error)) *Speaker {
	for _, engine := range speechEngines {
		if path, err := lookPath(engine.name); err == nil {
			LogDebug("Using speech engine %s", path)
			return &Speaker{path: path, args: engine.args}
		}
	}
	return &Speaker{}
}

// Available reports whether an engine was found
func (s *Speaker) Available() bool {
	return s.path != ""
}

// Speak starts reading text aloud and returns immediately. Any utterance
// already playing is cancelled first.
func (s *Speaker) Speak(text string) error {
	if !s.Available() {
		return ErrSpeechUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, s.path, s.args(text)...)
	if err := cmd.Start(); err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			LogWarn("Speech engine exited: %v", err)
		}
	}()
	return nil
}

// Speaking reports whether an utterance is still playing
func (s *Speaker) Speaking() bool {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Wait blocks until the current utterance finishes or ctx is done
func (s *Speaker) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.Stop()
		return ctx.Err()
	}
}

// Stop cancels the current utterance, if any, and waits for it to exit
func (s *Speaker) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
