package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modinput/internal/config"
	"modinput/internal/field"
	"modinput/internal/hostio"
	"modinput/internal/input"
	logx "modinput/pkg/logx"
)

// heartbeat is a minimal input: every due run it emits one event carrying
// a message and the wall-clock time. It exists to exercise the full host
// round trip (scheme, validation, config, checkpointed loop, streaming).
type heartbeat struct{}

func (heartbeat) Name() string  { return "heartbeat" }
func (heartbeat) Title() string { return "Heartbeat" }
func (heartbeat) Description() string {
	return "Emits a timestamped heartbeat event on every scheduled run"
}

func (heartbeat) Args() []field.Field {
	return []field.Field{
		field.String("message", "Message", "Text carried by each heartbeat event", field.Optional()),
	}
}

func (heartbeat) Run(ctx context.Context, job *input.Job) error {
	msg, _ := job.Params["message"].(string)
	if msg == "" {
		msg = "alive"
	}
	return job.Events.Emit(hostio.Event{
		Stanza: job.Stanza,
		Time:   time.Now(),
		Data:   msg,
	})
}

// isHostVerb reports whether the host is driving the invocation; host verbs
// must not be parsed as our own flags.
func isHostVerb(arg string) bool {
	return arg == "--scheme" || arg == "--validate-arguments"
}

func main() {
	settingsPath := "./settings.yaml"
	hostArgs := os.Args[1:]
	if len(hostArgs) == 0 || !isHostVerb(hostArgs[0]) {
		fs := flag.NewFlagSet("heartbeat", flag.ExitOnError)
		fs.StringVar(&settingsPath, "settings", settingsPath, "path to runner settings yaml")
		_ = fs.Parse(hostArgs)
		hostArgs = fs.Args()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mgr := config.NewManager(settingsPath)
	settings, err := mgr.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal: settings:", err)
		os.Exit(input.ExitConfig)
	}

	logSvc, log := logx.New(settings.LogConfig())
	mgr.SetLogger(log)

	// Live log-level changes while the run loop sleeps.
	mgr.OnChange(func(s *config.Settings) { logSvc.Apply(s.LogConfig()) })
	go func() {
		if err := mgr.Watch(ctx); err != nil {
			log.Warn("settings watch unavailable", logx.Err(err))
		}
	}()

	opts := input.DefaultOptions()
	ck, err := settings.CheckpointConfig()
	if err != nil {
		log.Error("invalid checkpoint settings", logx.Err(err))
		os.Exit(input.ExitConfig)
	}
	opts.Checkpoint = ck
	if backoff, err := settings.FailureBackoff(); err != nil {
		log.Error("invalid scheduler settings", logx.Err(err))
		os.Exit(input.ExitConfig)
	} else {
		opts.FailureBackoff = backoff
	}

	runner := input.NewRunner(heartbeat{}, opts, log)
	code := runner.Execute(ctx, hostArgs, os.Stdin, os.Stdout)
	_ = logSvc.Close()
	os.Exit(code)
}
