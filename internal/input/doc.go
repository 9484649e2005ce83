// Package input is the runtime around a user-supplied data collector.
//
// An Input declares its arguments and a Run callback; the Runner handles
// everything the host expects from a modular input process: the --scheme
// and --validate-arguments exchanges, stanza validation, event streaming,
// and the checkpoint-throttled re-run loop for recurring stanzas.
package input
