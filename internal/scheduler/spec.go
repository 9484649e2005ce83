package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrConfig marks a schedule value that cannot be parsed at all. It signals
// an authoring defect in the stanza configuration: the process must abort
// with the configuration-error exit code rather than loop.
var ErrConfig = errors.New("invalid schedule configuration")

// Kind describes the normalized kind of a schedule value.
type Kind int

const (
	// KindOnce runs the stanza a single time and terminates. Chosen for
	// absent, zero or negative intervals.
	KindOnce Kind = iota
	// KindEvery re-runs on a fixed interval.
	KindEvery
	// KindCron re-runs on a cron expression.
	KindCron
)

// Schedule is a parsed interval parameter.
//
// Supported forms:
//   - integer seconds: "300" (the host's documented interval unit)
//   - Go durations: "5m", "2h30m"
//   - cron expressions: "*/5 * * * *", "@hourly", "@every 55m"
//
// Absent or non-positive values mean "run once, do not reschedule".
type Schedule struct {
	Kind  Kind
	Every time.Duration
	Cron  cron.Schedule
	// Source is the raw value, kept for logging.
	Source string
}

// cronParser accepts standard 5-field cron plus descriptors like "@every 30s".
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseInterval parses the stanza's interval parameter. Values that fit
// none of the supported forms return an error wrapping ErrConfig.
func ParseInterval(raw string) (Schedule, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Schedule{Kind: KindOnce, Source: raw}, nil
	}

	// Integer seconds first: it is the documented unit and "300" would
	// otherwise be rejected by both the duration and cron parsers.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return Schedule{Kind: KindOnce, Source: raw}, nil
		}
		return Schedule{Kind: KindEvery, Every: time.Duration(n) * time.Second, Source: raw}, nil
	}

	// Whitespace or a leading '@' can only be cron.
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		sched, err := cronParser.Parse(s)
		if err != nil {
			return Schedule{}, fmt.Errorf("%w: cron %q: %v", ErrConfig, raw, err)
		}
		return Schedule{Kind: KindCron, Cron: sched, Source: raw}, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return Schedule{Kind: KindOnce, Source: raw}, nil
		}
		return Schedule{Kind: KindEvery, Every: d, Source: raw}, nil
	}

	return Schedule{}, fmt.Errorf(
		"%w: %q (use seconds like \"300\", a duration like \"5m\", or cron like \"*/5 * * * *\")",
		ErrConfig, raw,
	)
}

// Due reports whether the stanza should run now given its last run time.
func (s Schedule) Due(lastRun int64, now time.Time) bool {
	switch s.Kind {
	case KindCron:
		return !now.Before(s.Cron.Next(time.Unix(lastRun, 0)))
	case KindEvery:
		return IsDue(lastRun, s.Every, now)
	default:
		return true
	}
}

// UntilNext returns the wait before the next permitted run, floored at one
// second.
func (s Schedule) UntilNext(lastRun int64, now time.Time) time.Duration {
	switch s.Kind {
	case KindCron:
		return clampWait(s.Cron.Next(time.Unix(lastRun, 0)).Sub(now))
	case KindEvery:
		return UntilNext(lastRun, s.Every, now)
	default:
		return minWait
	}
}
