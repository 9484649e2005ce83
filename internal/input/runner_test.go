package input

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"

	"modinput/internal/checkpoint"
	"modinput/internal/field"
	"modinput/internal/hostio"
	logx "modinput/pkg/logx"
)

type fakeInput struct {
	runs    []string // stanza names in run order
	onRun   func(ctx context.Context, job *Job) error
	lastJob *Job
}

func (f *fakeInput) Name() string        { return "dbpoll" }
func (f *fakeInput) Title() string       { return "Database poller" }
func (f *fakeInput) Description() string { return "Collects rows from a database" }

func (f *fakeInput) Args() []field.Field {
	return []field.Field{
		field.String("database_server", "Database server", "The IP or domain name of the database server"),
		field.Integer("batch_size", "Batch size", "Rows per fetch", field.Optional()),
	}
}

func (f *fakeInput) Run(ctx context.Context, job *Job) error {
	f.runs = append(f.runs, job.Stanza)
	f.lastJob = job
	if f.onRun != nil {
		return f.onRun(ctx, job)
	}
	return nil
}

func configXML(checkpointDir string, stanzas ...string) string {
	var b strings.Builder
	b.WriteString("<input><server_host>h</server_host><server_uri>https://127.0.0.1:8089</server_uri>")
	b.WriteString("<session_key>k</session_key>")
	fmt.Fprintf(&b, "<checkpoint_dir>%s</checkpoint_dir><configuration>", checkpointDir)
	for _, s := range stanzas {
		b.WriteString(s)
	}
	b.WriteString("</configuration></input>")
	return b.String()
}

func stanzaXML(name string, params map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<stanza name=%q>", name)
	for k, v := range params {
		fmt.Fprintf(&b, "<param name=%q>%s</param>", k, v)
	}
	b.WriteString("</stanza>")
	return b.String()
}

func TestExecuteScheme(t *testing.T) {
	t.Parallel()
	in := &fakeInput{}
	r := NewRunner(in, DefaultOptions(), logx.Nop())

	var out bytes.Buffer
	code := r.Execute(context.Background(), []string{"--scheme"}, strings.NewReader(""), &out)
	if code != ExitOK {
		t.Fatalf("exit = %d, want %d", code, ExitOK)
	}

	var s hostio.Scheme
	if err := xml.Unmarshal(out.Bytes(), &s); err != nil {
		t.Fatalf("scheme output unparseable: %v\n%s", err, out.String())
	}
	if s.Title != "Database poller" || !s.UseExternalValidation || s.StreamingMode != "xml" {
		t.Fatalf("scheme: %+v", s)
	}
	if len(s.Args) != 2 || s.Args[0].Name != "database_server" || s.Args[1].DataType != "number" {
		t.Fatalf("scheme args: %+v", s.Args)
	}
}

func TestExecuteValidateAccepts(t *testing.T) {
	t.Parallel()
	r := NewRunner(&fakeInput{}, DefaultOptions(), logx.Nop())

	stdin := strings.NewReader(`<items><item name="dbpoll://db1">
		<param name="database_server">db1.example.com</param>
		<param name="interval">300</param>
		<param name="batch_size">50</param>
	</item></items>`)
	var out bytes.Buffer
	code := r.Execute(context.Background(), []string{"--validate-arguments"}, stdin, &out)
	if code != ExitOK {
		t.Fatalf("exit = %d, want %d; output: %s", code, ExitOK, out.String())
	}
	if out.Len() != 0 {
		t.Fatalf("successful validation wrote: %s", out.String())
	}
}

func TestExecuteValidateRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		param string
	}{
		{name: "bad interval", param: `<param name="interval">abc</param>`},
		{name: "bad integer", param: `<param name="batch_size">many</param>`},
		{name: "unknown parameter", param: `<param name="bogus">1</param>`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(&fakeInput{}, DefaultOptions(), logx.Nop())
			stdin := strings.NewReader(`<items><item name="dbpoll://db1">` + tt.param + `</item></items>`)
			var out bytes.Buffer
			code := r.Execute(context.Background(), []string{"--validate-arguments"}, stdin, &out)
			if code != ExitFailure {
				t.Fatalf("exit = %d, want %d", code, ExitFailure)
			}
			if !strings.Contains(out.String(), "<error><message>") {
				t.Fatalf("missing error envelope: %s", out.String())
			}
		})
	}
}

func TestExecuteUsageOnUnknownFlag(t *testing.T) {
	t.Parallel()
	r := NewRunner(&fakeInput{}, DefaultOptions(), logx.Nop())
	var out bytes.Buffer
	code := r.Execute(context.Background(), []string{"--frobnicate"}, strings.NewReader(""), &out)
	if code != ExitFailure {
		t.Fatalf("exit = %d, want %d", code, ExitFailure)
	}
	if !strings.Contains(out.String(), "usage:") {
		t.Fatalf("missing usage line: %s", out.String())
	}
}

func TestExecuteRunSingleShot(t *testing.T) {
	t.Parallel()
	in := &fakeInput{
		onRun: func(ctx context.Context, job *Job) error {
			return job.Events.Emit(hostio.Event{Data: "hello"})
		},
	}
	r := NewRunner(in, DefaultOptions(), logx.Nop())

	cfg := configXML(t.TempDir(),
		stanzaXML("dbpoll://db1", map[string]string{"database_server": "db1.example.com"}))
	var out bytes.Buffer
	code := r.Execute(context.Background(), nil, strings.NewReader(cfg), &out)
	if code != ExitOK {
		t.Fatalf("exit = %d, want %d", code, ExitOK)
	}
	if len(in.runs) != 1 || in.runs[0] != "dbpoll://db1" {
		t.Fatalf("runs = %v, want one run of dbpoll://db1", in.runs)
	}
	if got := in.lastJob.Params["database_server"]; got != "db1.example.com" {
		t.Fatalf("validated param = %v", got)
	}
	if !strings.Contains(out.String(), "<data>hello</data>") {
		t.Fatalf("event not streamed: %s", out.String())
	}
}

func TestExecuteRunInvalidIntervalAborts(t *testing.T) {
	t.Parallel()
	in := &fakeInput{}
	r := NewRunner(in, DefaultOptions(), logx.Nop())

	cfg := configXML(t.TempDir(),
		stanzaXML("dbpoll://db1", map[string]string{
			"database_server": "db1.example.com",
			"interval":        "abc",
		}))
	var out bytes.Buffer
	code := r.Execute(context.Background(), nil, strings.NewReader(cfg), &out)
	if code != ExitConfig {
		t.Fatalf("exit = %d, want %d for malformed interval", code, ExitConfig)
	}
	if len(in.runs) != 0 {
		t.Fatalf("run attempted despite malformed interval: %v", in.runs)
	}
	if !strings.Contains(out.String(), "<error><message>") {
		t.Fatalf("missing error envelope: %s", out.String())
	}
}

func TestExecuteSingleInstanceDiscardsInvalidInterval(t *testing.T) {
	t.Parallel()
	// Without host-side scheduling the interval is not ours to enforce;
	// the broken stanza is dropped and the rest still run.
	in := &fakeInput{}
	opts := DefaultOptions()
	opts.UseSingleInstance = true
	r := NewRunner(in, opts, logx.Nop())

	cfg := configXML(t.TempDir(),
		stanzaXML("dbpoll://broken", map[string]string{"interval": "abc"}),
		stanzaXML("dbpoll://db2", map[string]string{"database_server": "b"}))
	var out bytes.Buffer
	code := r.Execute(context.Background(), nil, strings.NewReader(cfg), &out)
	if code != ExitOK {
		t.Fatalf("exit = %d, want %d", code, ExitOK)
	}
	if len(in.runs) != 1 || len(in.lastJob.Stanzas) != 1 {
		t.Fatalf("runs = %v, stanzas = %d; want the one valid stanza", in.runs, len(in.lastJob.Stanzas))
	}
}

func TestExecuteRunInvalidIntervalExitCode(t *testing.T) {
	t.Parallel()
	// Reach the scheduler's config check directly: an input that shadows
	// the standard interval validation with a permissive string field.
	in := &rawIntervalInput{}
	r := NewRunner(in, DefaultOptions(), logx.Nop())

	cfg := configXML(t.TempDir(),
		stanzaXML("dbpoll://db1", map[string]string{"interval": "abc"}))
	var out bytes.Buffer
	code := r.Execute(context.Background(), nil, strings.NewReader(cfg), &out)
	if code != ExitConfig {
		t.Fatalf("exit = %d, want %d", code, ExitConfig)
	}
	if len(in.runs) != 0 {
		t.Fatalf("run attempted before config abort: %v", in.runs)
	}
	if !strings.Contains(out.String(), "<error><message>") {
		t.Fatalf("missing error envelope: %s", out.String())
	}
}

// rawIntervalInput shadows the interval argument with a permissive string
// field, modeling an input authored before interval cross-validation.
type rawIntervalInput struct {
	runs []string
}

func (f *rawIntervalInput) Name() string        { return "dbpoll" }
func (f *rawIntervalInput) Title() string       { return "Database poller" }
func (f *rawIntervalInput) Description() string { return "Collects rows from a database" }
func (f *rawIntervalInput) Args() []field.Field {
	return []field.Field{
		field.String("interval", "Interval", "Unchecked interval", field.Optional()),
	}
}
func (f *rawIntervalInput) Run(ctx context.Context, job *Job) error {
	f.runs = append(f.runs, job.Stanza)
	return nil
}

func TestExecuteRunRecurringCreatesCheckpoint(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := &fakeInput{
		onRun: func(ctx context.Context, job *Job) error {
			cancel() // stop after the first iteration
			return nil
		},
	}
	r := NewRunner(in, DefaultOptions(), logx.Nop())

	ckptDir := t.TempDir()
	cfg := configXML(ckptDir,
		stanzaXML("dbpoll://db1", map[string]string{
			"database_server": "db1.example.com",
			"interval":        "300",
		}))
	var out bytes.Buffer
	code := r.Execute(ctx, nil, strings.NewReader(cfg), &out)
	if code != ExitOK {
		t.Fatalf("exit = %d, want %d", code, ExitOK)
	}
	if len(in.runs) != 1 {
		t.Fatalf("runs = %v, want exactly one before cancellation", in.runs)
	}

	st, err := checkpoint.Open(checkpoint.Config{Path: ckptDir}, logx.Nop())
	if err != nil {
		t.Fatalf("checkpoint.Open: %v", err)
	}
	defer st.Close()
	if _, err := st.Read(context.Background(), "dbpoll://db1"); err != nil {
		t.Fatalf("checkpoint after first run: %v", err)
	}
}

func TestExecuteDiscardsInvalidStanza(t *testing.T) {
	t.Parallel()
	in := &fakeInput{}
	r := NewRunner(in, DefaultOptions(), logx.Nop())

	cfg := configXML(t.TempDir(),
		stanzaXML("dbpoll://broken", map[string]string{"batch_size": "many"}),
		stanzaXML("dbpoll://db2", map[string]string{"database_server": "db2.example.com"}))
	var out bytes.Buffer
	code := r.Execute(context.Background(), nil, strings.NewReader(cfg), &out)
	if code != ExitOK {
		t.Fatalf("exit = %d, want %d", code, ExitOK)
	}
	if len(in.runs) != 1 || in.runs[0] != "dbpoll://db2" {
		t.Fatalf("runs = %v, want only the valid stanza", in.runs)
	}
}

func TestExecuteNoStanzas(t *testing.T) {
	t.Parallel()
	in := &fakeInput{}
	r := NewRunner(in, DefaultOptions(), logx.Nop())

	cfg := configXML(t.TempDir())
	var out bytes.Buffer
	code := r.Execute(context.Background(), nil, strings.NewReader(cfg), &out)
	if code != ExitOK {
		t.Fatalf("exit = %d, want %d", code, ExitOK)
	}
	if len(in.runs) != 0 {
		t.Fatalf("ran with no stanzas: %v", in.runs)
	}
}

func TestSingleInstancePassesAllStanzas(t *testing.T) {
	t.Parallel()
	in := &fakeInput{}
	opts := DefaultOptions()
	opts.UseSingleInstance = true
	r := NewRunner(in, opts, logx.Nop())

	cfg := configXML(t.TempDir(),
		stanzaXML("dbpoll://db1", map[string]string{"database_server": "a"}),
		stanzaXML("dbpoll://db2", map[string]string{"database_server": "b"}))
	var out bytes.Buffer
	code := r.Execute(context.Background(), nil, strings.NewReader(cfg), &out)
	if code != ExitOK {
		t.Fatalf("exit = %d, want %d", code, ExitOK)
	}
	if len(in.runs) != 1 {
		t.Fatalf("single-instance made %d run calls, want 1", len(in.runs))
	}
	if len(in.lastJob.Stanzas) != 2 {
		t.Fatalf("job carries %d stanzas, want 2", len(in.lastJob.Stanzas))
	}
}
