package checkpoint

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound means no checkpoint has ever been written for the stanza.
// Callers treat it as "due now", not as a failure.
var ErrNotFound = errors.New("checkpoint not found")

// ErrCorrupt means a checkpoint exists but its content is not the expected
// record shape, usually left behind by a partial write. Callers treat it as
// "due now" and log a warning.
var ErrCorrupt = errors.New("checkpoint corrupt")

// Config configures checkpoint persistence.
//
// Driver values:
//   - "file": one JSON file per stanza under Path (the default)
//   - "sqlite": single SQLite database file at Path (optional build tag)
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store persists the per-stanza last-run record.
//
// Read returns ErrNotFound when no record exists and ErrCorrupt when the
// stored content cannot be parsed. Write fully replaces the prior record.
type Store interface {
	Read(ctx context.Context, stanza string) (lastRun int64, err error)
	Write(ctx context.Context, stanza string, lastRun int64) error
	Close() error
}

// Keyer maps a stanza identifier to its storage key. Renaming a stanza
// changes its key, so old records are orphaned rather than reused.
type Keyer func(stanza string) string

// DefaultKeyer is the host's historical layout: SHA-1 of the stanza name,
// hex encoded, with a .json suffix. Stable across releases.
func DefaultKeyer(stanza string) string {
	sum := sha1.Sum([]byte(stanza))
	return hex.EncodeToString(sum[:]) + ".json"
}
