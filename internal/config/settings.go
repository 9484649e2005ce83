package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"modinput/internal/checkpoint"
	logx "modinput/pkg/logx"
)

// Settings are the runner-side knobs, read from an optional settings file
// next to the input. The host never sees this file; it only tunes logging
// and checkpoint persistence of the local process.
type Settings struct {
	Logging    LoggingSettings    `json:"logging"`
	Checkpoint CheckpointSettings `json:"checkpoint"`
	Scheduler  SchedulerSettings  `json:"scheduler"`
}

type LoggingSettings struct {
	Level   string `json:"level,omitempty"`
	Console *bool  `json:"console,omitempty"`
	File    struct {
		Enabled bool   `json:"enabled"`
		Path    string `json:"path,omitempty"`
	} `json:"file,omitzero"`
	Throttle struct {
		Enabled    bool   `json:"enabled"`
		MinLevel   string `json:"min_level,omitempty"`
		RatePerSec int    `json:"rate_per_sec,omitempty"`
	} `json:"throttle,omitzero"`
}

type CheckpointSettings struct {
	// Driver selects "file" (default) or "sqlite".
	Driver string `json:"driver,omitempty"`
	// Path overrides the host-supplied checkpoint directory (file driver)
	// or database location (sqlite driver).
	Path string `json:"path,omitempty"`
	// BusyTimeout is a Go duration string; sqlite only.
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type SchedulerSettings struct {
	// FailureBackoff is a Go duration string. When set, failed runs wait
	// this long instead of the stanza interval.
	FailureBackoff string `json:"failure_backoff,omitempty"`
}

// Default returns the zero-configuration behavior: console logging at info,
// host-native file checkpoints, uniform failure throttle.
func Default() *Settings {
	return &Settings{}
}

// LogConfig translates the logging section for logx.
func (s *Settings) LogConfig() logx.Config {
	cfg := logx.Config{
		Level:   s.Logging.Level,
		Console: true,
	}
	if s.Logging.Console != nil {
		cfg.Console = *s.Logging.Console
	}
	cfg.File.Enabled = s.Logging.File.Enabled
	cfg.File.Path = s.Logging.File.Path
	cfg.Throttle.Enabled = s.Logging.Throttle.Enabled
	cfg.Throttle.MinLevel = s.Logging.Throttle.MinLevel
	cfg.Throttle.RatePerSec = s.Logging.Throttle.RatePerSec
	return cfg
}

// CheckpointConfig translates the checkpoint section.
func (s *Settings) CheckpointConfig() (checkpoint.Config, error) {
	busy, err := ParseDurationField("checkpoint.busy_timeout", s.Checkpoint.BusyTimeout)
	if err != nil {
		return checkpoint.Config{}, err
	}
	return checkpoint.Config{
		Driver:      s.Checkpoint.Driver,
		Path:        s.Checkpoint.Path,
		BusyTimeout: busy,
	}, nil
}

// FailureBackoff parses the scheduler section's failure backoff; zero means
// the uniform interval throttle.
func (s *Settings) FailureBackoff() (time.Duration, error) {
	return ParseDurationField("scheduler.failure_backoff", s.Scheduler.FailureBackoff)
}

// ParseDurationField parses an optional Go duration string; empty is zero.
func ParseDurationField(path, raw string) (time.Duration, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// Load reads and parses the settings file. A missing file is not an error:
// it yields defaults, because most inputs never need a settings file.
func Load(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return parse(path, b)
}

func parse(path string, data []byte) (*Settings, error) {
	jb, err := coerceToJSON(path, data)
	if err != nil {
		return nil, err
	}

	var s Settings
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	// Reject trailing tokens (e.g. concatenated JSON).
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid settings: trailing data")
		}
		return nil, err
	}
	return &s, nil
}

// coerceToJSON converts YAML settings to JSON bytes so the strict JSON
// decoder (DisallowUnknownFields) covers both formats.
func coerceToJSON(path string, data []byte) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return data, nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	j, err := json.Marshal(stringifyKeys(v))
	if err != nil {
		return nil, fmt.Errorf("yaml->json marshal: %w", err)
	}
	return j, nil
}

// stringifyKeys ensures all map keys are strings so the result can be
// JSON-marshaled.
func stringifyKeys(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = stringifyKeys(v)
		}
		return m
	case map[string]any:
		for k, v := range x {
			x[k] = stringifyKeys(v)
		}
		return x
	case []any:
		for i := range x {
			x[i] = stringifyKeys(x[i])
		}
		return x
	default:
		return in
	}
}

// hashSettings fingerprints committed content so redundant file events do
// not republish an unchanged config.
func hashSettings(s *Settings) uint64 {
	if s == nil {
		return 0
	}
	b, err := json.Marshal(s)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
