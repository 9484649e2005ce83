package input

import (
	"fmt"

	"modinput/internal/field"
	"modinput/internal/scheduler"
)

// intervalArg validates the interval parameter by actually parsing it with
// the scheduler, so a value that would later abort the run loop is already
// rejected at --validate-arguments time.
type intervalArg struct{}

func (intervalArg) Name() string        { return "interval" }
func (intervalArg) Title() string       { return "Interval" }
func (intervalArg) Description() string { return "How often to run: seconds, a duration, or a cron expression" }
func (intervalArg) DataType() field.DataType { return field.TypeString }
func (intervalArg) RequiredOnCreate() bool   { return false }
func (intervalArg) RequiredOnEdit() bool     { return false }

func (intervalArg) Validate(raw string) (any, error) {
	if _, err := scheduler.ParseInterval(raw); err != nil {
		return nil, &field.ValidationError{Field: "interval", Value: raw, Reason: err.Error(), Err: err}
	}
	return raw, nil
}

// standardArgs are the host-provided parameters every stanza may carry.
// They are accepted during validation but never advertised in the scheme.
func standardArgs() []field.Field {
	return []field.Field{
		field.Boolean("disabled", "Disabled", "Whether the input is disabled or not", field.Optional()),
		field.String("host", "Host", "The host that is running the input", field.Optional()),
		field.String("index", "Index", "The index that data should be sent to", field.Optional()),
		intervalArg{},
		// Legacy alias for interval, kept for configurations that predate
		// host-side scheduling.
		field.Duration("duration", "Duration", "Legacy re-run interval in seconds", field.Optional()),
		field.String("name", "Stanza name", "The name of the stanza for this input", field.Optional()),
		field.String("source", "Source", "The source for events created by this input", field.Optional()),
		field.String("sourcetype", "Source type", "The sourcetype for events created by this input", field.Optional()),
	}
}

// validateParams type-checks one stanza's raw parameters. Unknown
// parameters are rejected: they indicate a scheme/configuration mismatch.
func (r *Runner) validateParams(raw map[string]string) (map[string]any, error) {
	all := make(map[string]field.Field)
	for _, f := range standardArgs() {
		all[f.Name()] = f
	}
	// Input args may shadow standard ones on purpose.
	for _, f := range r.in.Args() {
		all[f.Name()] = f
	}

	clean := make(map[string]any, len(raw))
	for name, value := range raw {
		f, ok := all[name]
		if !ok {
			return nil, fmt.Errorf("the parameter %q is not a valid argument", name)
		}
		v, err := f.Validate(value)
		if err != nil {
			return nil, err
		}
		clean[name] = v
	}
	return clean, nil
}
