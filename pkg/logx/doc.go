// Package logx configures the runner's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller), on stderr
//     because stdout carries the host XML protocol
//   - File output JSON-structured
//   - Optional throttling of repeated warnings (min-level + rate limiting)
package logx
