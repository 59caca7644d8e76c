package config

import (
	"fmt"

	"github.com/ppiankov/osarun/pkg/applescript"
)

// Validate checks field values that YAML decoding alone cannot reject.
func (s *Settings) Validate() error {
	if _, err := applescript.ParseStrategy(s.Strategy); err != nil {
		return err
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %v", s.Timeout)
	}
	if s.SyncTimeout < 0 {
		return fmt.Errorf("sync_timeout must not be negative, got %v", s.SyncTimeout)
	}
	if w := s.Watch; w != nil {
		if w.Debounce < 0 {
			return fmt.Errorf("watch.debounce must not be negative, got %v", w.Debounce)
		}
		if w.PollInterval < 0 {
			return fmt.Errorf("watch.poll_interval must not be negative, got %v", w.PollInterval)
		}
	}
	return nil
}

// Runner builds the applescript runner described by the settings.
func (s *Settings) Runner() *applescript.Runner {
	r := applescript.NewRunner(s.Interpreter)
	r.SyncTimeout = s.SyncTimeout
	return r
}

// Options builds the per-invocation defaults described by the settings.
func (s *Settings) Options() (applescript.Options, error) {
	strategy, err := applescript.ParseStrategy(s.Strategy)
	if err != nil {
		return applescript.Options{}, err
	}
	return applescript.Options{
		RawOutput: s.RawOutput,
		Args:      append([]string(nil), s.Args...),
		Strategy:  strategy,
		Timeout:   s.Timeout,
	}, nil
}
