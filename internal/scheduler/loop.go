package scheduler

import (
	"context"
	"errors"
	"time"

	"modinput/internal/checkpoint"
	logx "modinput/pkg/logx"
)

// RunFunc is the user-supplied collection callback. The loop never inspects
// its result beyond logging failures.
type RunFunc func(ctx context.Context) error

// Loop drives one stanza: check due, run, checkpoint, sleep, repeat.
//
// The checkpoint is written after every attempt, success or failure, so a
// permanently failing callback is throttled at the configured interval
// instead of busy-retrying. FailureBackoff makes the failure wait
// configurable; zero keeps the uniform throttle.
type Loop struct {
	Store checkpoint.Store
	Log   logx.Logger

	// Now is the clock; defaults to time.Now. Injected for tests.
	Now func() time.Time
	// Sleep blocks for d or until ctx is done; defaults to a timer wait.
	Sleep func(ctx context.Context, d time.Duration) error

	// FailureBackoff, when positive, replaces the interval wait after a
	// failed attempt.
	FailureBackoff time.Duration
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loop) sleep(ctx context.Context, d time.Duration) error {
	if l.Sleep != nil {
		return l.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run executes the stanza until ctx is cancelled. A KindOnce schedule runs
// the callback a single time and returns its error; recurring schedules
// absorb callback errors and return nil on cancellation.
func (l *Loop) Run(ctx context.Context, stanza string, sched Schedule, run RunFunc) error {
	log := l.Log.With(logx.String("stanza", stanza))

	if sched.Kind == KindOnce {
		log.Info("single-shot run")
		return run(ctx)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		due, lastRun := l.checkDue(ctx, stanza, sched, log)

		var runErr error
		if due {
			attempt := l.now()
			runErr = run(ctx)
			if runErr != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error("run attempt failed", logx.Err(runErr))
			}
			// Record the attempt regardless of its outcome.
			if err := l.Store.Write(ctx, stanza, attempt.Unix()); err != nil {
				log.Error("checkpoint write failed", logx.Err(err))
			}
			lastRun = attempt.Unix()
		} else {
			log.Debug("not due, skipping", logx.Int64("last_run", lastRun))
		}

		wait := sched.UntilNext(lastRun, l.now())
		if runErr != nil && l.FailureBackoff > 0 {
			wait = clampWait(l.FailureBackoff)
		}
		log.Debug("sleeping until next due time", logx.Duration("wait", wait))
		if err := l.sleep(ctx, wait); err != nil {
			return nil
		}
	}
}

// checkDue resolves the checkpoint into a due decision. A missing record is
// the first run; an unreadable one is logged and forces a run.
func (l *Loop) checkDue(ctx context.Context, stanza string, sched Schedule, log logx.Logger) (bool, int64) {
	lastRun, err := l.Store.Read(ctx, stanza)
	switch {
	case err == nil:
		return sched.Due(lastRun, l.now()), lastRun
	case errors.Is(err, checkpoint.ErrNotFound):
		log.Debug("no checkpoint, due now")
		return true, 0
	case errors.Is(err, checkpoint.ErrCorrupt):
		log.Warn("checkpoint unreadable, forcing run", logx.Err(err))
		return true, 0
	default:
		log.Warn("checkpoint read failed, forcing run", logx.Err(err))
		return true, 0
	}
}
