package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/persona-chat/internal"
	"github.com/iksnae/persona-chat/internal/config"
)

// newCompleter builds the completion backend; tests swap it for a stub
var newCompleter = func(cfg *config.Config) internal.Completer {
	return cfg.Completer()
}

// chatSession bundles what every conversation command needs
type chatSession struct {
	cfg       *config.Config
	kv        internal.KVStore
	manager   *internal.Manager
	completer internal.Completer
	persona   string
}

// loadConfig reads the config file and applies the persistent flags over it
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	switch {
	case ephemeral:
		cfg.SetDriver(internal.DriverMemory)
	case driver != "":
		cfg.SetDriver(strings.ToLower(driver))
	}
	if storagePath != "" {
		cfg.StoragePath = storagePath
	}
	if personaFlag != "" {
		cfg.Persona = personaFlag
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession loads config, opens storage and restores the conversation
func openSession() (*chatSession, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	kv, err := internal.OpenStore(cfg.Driver, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	internal.LogDebug("Using %s storage at %s", cfg.Driver, cfg.StoragePath)

	manager := internal.NewManager(kv,
		internal.WithKey(cfg.HistoryKey),
		internal.WithTruncateLength(cfg.TruncateLength),
		internal.WithTimeout(cfg.Timeout),
		internal.WithResetHook(internal.DefaultSpeaker().Stop),
	)

	return &chatSession{
		cfg:       cfg,
		kv:        kv,
		manager:   manager,
		completer: newCompleter(cfg),
		persona:   internal.ResolvePersona(cfg.Persona),
	}, nil
}

func (s *chatSession) Close() {
	if err := s.kv.Close(); err != nil {
		internal.LogWarn("Failed to close storage: %v", err)
	}
}

// transcript snapshots the conversation for export
func (s *chatSession) transcript() *internal.Transcript {
	return internal.NewTranscript(s.persona, s.manager.Messages())
}
