package input

import (
	"context"
	"fmt"
	"io"

	"modinput/internal/hostio"
	logx "modinput/pkg/logx"
)

// Runner wires an Input into the host protocol: scheme negotiation,
// external validation, and the checkpointed run loop.
type Runner struct {
	in   Input
	opts Options
	log  logx.Logger
}

func NewRunner(in Input, opts Options, log logx.Logger) *Runner {
	if log.IsZero() {
		log = logx.Nop()
	}
	if opts.StreamingMode == "" {
		opts.StreamingMode = "xml"
	}
	return &Runner{in: in, opts: opts, log: log.With(logx.String("input", in.Name()))}
}

// Execute dispatches on the host-supplied arguments and returns the process
// exit code. args is os.Args[1:].
func (r *Runner) Execute(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--scheme":
			return r.doScheme(stdout)
		case "--validate-arguments":
			return r.doValidation(stdin, stdout)
		default:
			fmt.Fprintf(stdout, "usage: %s [--scheme|--validate-arguments]\n", r.in.Name())
			return ExitFailure
		}
	}
	return r.runFromConfig(ctx, stdin, stdout)
}

func (r *Runner) doScheme(stdout io.Writer) int {
	r.log.Info("scheme requested")

	s := hostio.Scheme{
		Title:                 r.in.Title(),
		Description:           r.in.Description(),
		UseExternalValidation: r.opts.UseExternalValidation,
		StreamingMode:         r.opts.StreamingMode,
		UseSingleInstance:     r.opts.UseSingleInstance,
	}
	for _, f := range r.in.Args() {
		s.Args = append(s.Args, hostio.Arg{
			Name:             f.Name(),
			Title:            f.Title(),
			Description:      f.Description(),
			DataType:         string(f.DataType()),
			RequiredOnCreate: f.RequiredOnCreate(),
			RequiredOnEdit:   f.RequiredOnEdit(),
		})
	}

	if err := hostio.WriteScheme(stdout, s); err != nil {
		r.log.Error("scheme write failed", logx.Err(err))
		return ExitFailure
	}
	return ExitOK
}

func (r *Runner) doValidation(stdin io.Reader, stdout io.Writer) int {
	r.log.Info("validate arguments requested")

	req, err := hostio.ReadValidationRequest(stdin)
	if err != nil {
		r.log.Error("validation request unreadable", logx.Err(err))
		_ = hostio.WriteError(stdout, err.Error())
		return ExitFailure
	}

	if _, err := r.validateParams(req.Params); err != nil {
		r.log.Warn("arguments rejected",
			logx.String("stanza", req.Stanza), logx.Err(err))
		_ = hostio.WriteError(stdout, err.Error())
		return ExitFailure
	}
	return ExitOK
}
