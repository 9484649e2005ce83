// Package scheduler decides when a stanza is due for another run and drives
// the checkpointed re-run loop.
//
// The due-time arithmetic is pure (callers inject now), the loop is
// single-threaded and cooperative: one stanza per process, blocking only in
// its timed sleep and inside the user callback. Schedules come from the
// stanza's interval parameter as plain seconds, Go durations, or cron
// expressions.
package scheduler
