//go:build !sqlite
// +build !sqlite

package checkpoint

import (
	"errors"

	logx "modinput/pkg/logx"
)

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	_ = cfg
	_ = log
	return nil, errors.New("sqlite checkpoints not built: build with -tags sqlite")
}
