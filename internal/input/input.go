package input

import (
	"context"
	"time"

	"modinput/internal/checkpoint"
	"modinput/internal/field"
	"modinput/internal/hostio"
)

// Input is the user-supplied data collector. The runtime owns the host
// protocol, validation and re-run scheduling; the input only declares its
// arguments and collects data when told to.
type Input interface {
	// Name is the short input name used in logs (e.g. "dbpoll").
	Name() string
	// Title and Description feed the host's configuration UI.
	Title() string
	Description() string
	// Args declares the input-specific arguments. Standard host arguments
	// (interval, index, host, ...) are accepted implicitly.
	Args() []field.Field
	// Run collects data for one due stanza. Errors are logged by the
	// runtime and do not stop a recurring schedule.
	Run(ctx context.Context, job *Job) error
}

// Job is everything one Run invocation needs.
type Job struct {
	// Stanza is the configuration instance being run.
	Stanza string
	// Params holds the stanza's validated, typed parameters.
	Params map[string]any
	// Stanzas lists every validated stanza. Populated only in
	// single-instance mode, where one Run call covers them all.
	Stanzas []StanzaParams
	// Config is the full host-supplied configuration document.
	Config *hostio.InputConfig
	// Events streams collected data back to the host. Nil unless the
	// streaming mode is "xml"; Emit on a nil writer returns an error
	// rather than panicking.
	Events *hostio.EventWriter
}

// StanzaParams pairs a stanza name with its parameters.
type StanzaParams struct {
	Name   string
	Params map[string]any
	// Raw keeps the unvalidated values; the scheduler reads the interval
	// from here.
	Raw map[string]string
}

// Options tune the runtime around an Input.
type Options struct {
	// UseExternalValidation advertises --validate-arguments support in the
	// scheme. On by default in DefaultOptions.
	UseExternalValidation bool
	// StreamingMode is "xml" or "simple"; only "xml" uses the event writer.
	StreamingMode string
	// UseSingleInstance runs all stanzas in one process with no
	// rescheduling.
	UseSingleInstance bool

	// Checkpoint overrides checkpoint persistence. Zero value keeps
	// per-stanza files under the host-supplied checkpoint directory.
	Checkpoint checkpoint.Config

	// FailureBackoff, when positive, shortens (or stretches) the wait
	// after a failed run instead of the uniform interval throttle.
	FailureBackoff time.Duration
}

// DefaultOptions matches the host's common case: externally validated,
// XML-streamed, one process per stanza.
func DefaultOptions() Options {
	return Options{
		UseExternalValidation: true,
		StreamingMode:         "xml",
	}
}

// Exit codes surfaced to the host supervisor.
const (
	// ExitOK: normal completion, including successful single-shot runs.
	ExitOK = 0
	// ExitFailure: validation rejected the arguments or a non-recurring
	// run failed.
	ExitFailure = 1
	// ExitConfig: a configuration value (the interval) cannot be parsed;
	// an authoring defect, reported before any run attempt.
	ExitConfig = 2
)
