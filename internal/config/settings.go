package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the settings file looked up in the working directory.
const DefaultPath = ".osarun.yml"

// Settings holds persistent CLI defaults loaded from a config file.
type Settings struct {
	Interpreter string        `yaml:"interpreter"` // osascript binary, resolved through PATH
	Strategy    string        `yaml:"strategy"`    // buffered | streaming
	RawOutput   bool          `yaml:"raw_output"`
	Timeout     time.Duration `yaml:"timeout"`      // per-invocation bound, 0 = mode default
	SyncTimeout time.Duration `yaml:"sync_timeout"` // bound for blocking buffered runs
	Args        []string      `yaml:"args,omitempty"`

	Watch *WatchConfig `yaml:"watch,omitempty"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce"`
	Poll         bool          `yaml:"poll"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// LoadSettings reads a YAML config file into Settings.
// If the file does not exist, it returns zero-value Settings and nil error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &s, nil
}

// WatchSettings returns the watch section, never nil.
func (s *Settings) WatchSettings() WatchConfig {
	if s.Watch == nil {
		return WatchConfig{}
	}
	return *s.Watch
}
