package input

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"modinput/internal/checkpoint"
	"modinput/internal/hostio"
	"modinput/internal/scheduler"
	logx "modinput/pkg/logx"
)

// runFromConfig is the default launch path: read the configuration document
// from stdin, validate the stanzas, and run either once or on the
// checkpoint-throttled loop.
func (r *Runner) runFromConfig(ctx context.Context, stdin io.Reader, stdout io.Writer) int {
	cfg, err := hostio.ReadInputConfig(stdin)
	if err != nil {
		r.log.Error("input configuration unreadable", logx.Err(err))
		_ = hostio.WriteError(stdout, err.Error())
		return ExitFailure
	}

	// Invalid stanzas are discarded, not fatal: one authoring mistake must
	// not take down the stanzas that are fine. A malformed interval is the
	// exception when we own the scheduling: the stanza can never run, so
	// abort with the distinct configuration-error exit code.
	var valid []StanzaParams
	for _, st := range cfg.Stanzas {
		clean, err := r.validateParams(st.Params)
		if err != nil {
			if !r.opts.UseSingleInstance && errors.Is(err, scheduler.ErrConfig) {
				r.log.Error("invalid interval, aborting",
					logx.String("stanza", st.Name), logx.Err(err))
				_ = hostio.WriteError(stdout, err.Error())
				return ExitConfig
			}
			r.log.Error("discarding invalid input stanza",
				logx.String("stanza", st.Name), logx.Err(err))
			continue
		}
		valid = append(valid, StanzaParams{Name: st.Name, Params: clean, Raw: st.Params})
	}
	if len(valid) == 0 {
		r.log.Info("no input stanzas defined")
		return ExitOK
	}

	var events *hostio.EventWriter
	if r.opts.StreamingMode == "xml" {
		events = hostio.NewEventWriter(stdout, r.opts.UseSingleInstance)
		defer events.Close()
	}

	if r.opts.UseSingleInstance {
		// All stanzas in one call; the host owns any re-triggering.
		job := &Job{
			Stanza:  valid[0].Name,
			Params:  valid[0].Params,
			Stanzas: valid,
			Config:  cfg,
			Events:  events,
		}
		if err := r.in.Run(ctx, job); err != nil {
			r.log.Error("run failed", logx.Err(err))
			_ = hostio.WriteError(stdout, err.Error())
			return ExitFailure
		}
		return ExitOK
	}

	// One process per stanza: the host hands us exactly one, scheduled by
	// its interval parameter.
	st := valid[0]
	job := &Job{Stanza: st.Name, Params: st.Params, Config: cfg, Events: events}

	sched, err := scheduler.ParseInterval(intervalValue(st.Raw))
	if err != nil {
		// Authoring defect: abort before any run attempt, with the
		// distinct configuration-error exit code.
		r.log.Error("invalid interval, aborting",
			logx.String("stanza", st.Name), logx.Err(err))
		_ = hostio.WriteError(stdout, err.Error())
		return ExitConfig
	}

	if sched.Kind == scheduler.KindOnce {
		r.log.Info("no recurring interval, running once", logx.String("stanza", st.Name))
		if err := r.in.Run(ctx, job); err != nil {
			r.log.Error("run failed", logx.Err(err))
			_ = hostio.WriteError(stdout, err.Error())
			return ExitFailure
		}
		return ExitOK
	}

	store, err := r.openStore(cfg)
	if err != nil {
		r.log.Error("checkpoint store unavailable", logx.Err(err))
		_ = hostio.WriteError(stdout, err.Error())
		return ExitFailure
	}
	defer store.Close()

	loop := &scheduler.Loop{
		Store:          store,
		Log:            r.log,
		FailureBackoff: r.opts.FailureBackoff,
	}
	_ = loop.Run(ctx, st.Name, sched, func(ctx context.Context) error {
		return r.in.Run(ctx, job)
	})
	return ExitOK
}

// intervalValue picks the schedule source: interval, or the legacy
// duration parameter.
func intervalValue(raw map[string]string) string {
	if v := strings.TrimSpace(raw["interval"]); v != "" {
		return v
	}
	return strings.TrimSpace(raw["duration"])
}

// openStore resolves the checkpoint configuration against the host-supplied
// checkpoint directory.
func (r *Runner) openStore(cfg *hostio.InputConfig) (checkpoint.Store, error) {
	ck := r.opts.Checkpoint
	if ck.Path == "" {
		if cfg.CheckpointDir == "" {
			return nil, errors.New("host supplied no checkpoint directory")
		}
		switch strings.ToLower(strings.TrimSpace(ck.Driver)) {
		case "sqlite", "sqlite3":
			ck.Path = filepath.Join(cfg.CheckpointDir, "checkpoint.db")
		default:
			ck.Path = cfg.CheckpointDir
		}
	}
	return checkpoint.Open(ck, r.log)
}
