package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	logx "modinput/pkg/logx"
)

// fileStore keeps one record file per stanza under a directory the host
// provisions for the input. The record is a single JSON object:
//
//	{"last_run": 1700000000}
//
// Writes go through a temp file + rename so a crash mid-write leaves either
// the old record or the new one, never a torn file. A torn file from a
// pre-rename crash (or a bare-overwrite writer from another implementation)
// surfaces as ErrCorrupt on Read.
type fileStore struct {
	dir   string
	keyer Keyer
	log   logx.Logger
}

type record struct {
	LastRun *int64 `json:"last_run"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	dir := strings.TrimSpace(cfg.Path)
	if dir == "" {
		return nil, errors.New("checkpoint path is required for file driver")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &fileStore{dir: dir, keyer: DefaultKeyer, log: log}, nil
}

func (s *fileStore) path(stanza string) string {
	return filepath.Join(s.dir, s.keyer(stanza))
}

func (s *fileStore) Read(ctx context.Context, stanza string) (int64, error) {
	_ = ctx
	b, err := os.ReadFile(s.path(stanza))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var rec record
	if err := dec.Decode(&rec); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrCorrupt, err)
	}
	// Reject trailing tokens (e.g. concatenated JSON).
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return 0, fmt.Errorf("%w: trailing data", ErrCorrupt)
	}
	if rec.LastRun == nil {
		return 0, fmt.Errorf("%w: missing last_run", ErrCorrupt)
	}
	return *rec.LastRun, nil
}

func (s *fileStore) Write(ctx context.Context, stanza string, lastRun int64) error {
	_ = ctx
	b, err := json.Marshal(record{LastRun: &lastRun})
	if err != nil {
		return err
	}

	dst := s.path(stanza)
	tmp, err := os.CreateTemp(s.dir, ".ckpt-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *fileStore) Close() error { return nil }
