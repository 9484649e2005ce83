package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "modinput/pkg/logx"
)

// Manager owns the settings file: initial load, and live reload while a
// recurring stanza sleeps between runs (flipping the log level to debug on
// a wedged input without restarting it is the main use).
type Manager struct {
	path string

	mu       sync.RWMutex
	cur      *Settings
	lastHash uint64

	log      logx.Logger
	onChange func(*Settings)
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

func (m *Manager) SetLogger(log logx.Logger) { m.log = log }

// OnChange installs the hook invoked after each committed reload.
func (m *Manager) OnChange(fn func(*Settings)) { m.onChange = fn }

// Load parses and commits the settings file (defaults when absent).
func (m *Manager) Load() (*Settings, error) {
	s, err := Load(m.path)
	if err != nil {
		return nil, err
	}
	m.commit(s)
	return s, nil
}

func (m *Manager) Get() *Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur == nil {
		return Default()
	}
	return m.cur
}

func (m *Manager) commit(s *Settings) {
	m.mu.Lock()
	m.cur = s
	m.lastHash = hashSettings(s)
	m.mu.Unlock()
}

// Watch blocks until ctx is done, reloading the settings file on change.
// Reload failures keep the previous settings; editors that fire several
// write events per save are absorbed by a short debounce.
func (m *Manager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the file: editors replace files by rename
	// and a file watch would go stale after the first save.
	if err := w.Add(filepath.Dir(m.path)); err != nil {
		return err
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	reload := func() {
		s, err := Load(m.path)
		if err != nil {
			if !m.log.IsZero() {
				m.log.Warn("settings reload failed", logx.String("path", m.path), logx.Err(err))
			}
			return
		}
		h := hashSettings(s)
		m.mu.RLock()
		unchanged := h != 0 && h == m.lastHash
		m.mu.RUnlock()
		if unchanged {
			return
		}
		m.commit(s)
		if !m.log.IsZero() {
			m.log.Info("settings reloaded", logx.String("path", m.path))
		}
		if m.onChange != nil {
			m.onChange(s)
		}
	}
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, reload)
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	target := filepath.Clean(m.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if !m.log.IsZero() {
				m.log.Warn("settings watch error", logx.Err(err))
			}
		}
	}
}
