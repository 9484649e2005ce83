package checkpoint

import (
	"errors"
	"strings"

	logx "modinput/pkg/logx"
)

// Open initializes the configured store. An empty driver selects the file
// backend, matching the host's native checkpoint layout.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown checkpoint driver: " + cfg.Driver)
	}
}
