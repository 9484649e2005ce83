// Package checkpoint persists the per-stanza "last run" record that
// throttles re-execution across process restarts.
//
// It currently supports:
//   - One JSON file per stanza (the host's native layout)
//   - An optional SQLite backend for inputs with many stanzas
package checkpoint
