package hostio

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"
)

func TestWriteScheme(t *testing.T) {
	t.Parallel()
	s := Scheme{
		Title:                 "Database poller",
		Description:           "Collects rows from a database",
		UseExternalValidation: true,
		StreamingMode:         "xml",
		Args: []Arg{
			{
				Name:             "database_server",
				Title:            "Database server",
				Description:      "The IP or domain name of the database server",
				DataType:         "string",
				RequiredOnCreate: true,
			},
			{
				Name:        "interval",
				Title:       "Interval",
				Description: "Seconds between runs",
				DataType:    "number",
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteScheme(&buf, s); err != nil {
		t.Fatalf("WriteScheme: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, xml.Header) {
		t.Fatalf("missing XML declaration: %q", out[:40])
	}

	var back Scheme
	if err := xml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("unmarshal produced scheme: %v", err)
	}
	if back.Title != s.Title || !back.UseExternalValidation || back.StreamingMode != "xml" {
		t.Fatalf("scheme fields lost: %+v", back)
	}
	if len(back.Args) != 2 || back.Args[0].Name != "database_server" || !back.Args[0].RequiredOnCreate {
		t.Fatalf("args lost: %+v", back.Args)
	}
	// The endpoint nesting is part of the host contract.
	if !strings.Contains(out, "<endpoint><args><arg name=\"database_server\">") {
		t.Fatalf("missing endpoint/args nesting: %s", out)
	}
}

func TestWriteErrorEscapes(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteError(&buf, `value "<x>" rejected`); err != nil {
		t.Fatalf("WriteError: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<error><message>") || !strings.HasSuffix(out, "</message></error>") {
		t.Fatalf("unexpected envelope: %s", out)
	}
	if strings.Contains(out, "<x>") {
		t.Fatalf("message not escaped: %s", out)
	}
}

const sampleInputConfig = `<?xml version="1.0" encoding="UTF-8"?>
<input>
  <server_host>indexer01</server_host>
  <server_uri>https://127.0.0.1:8089</server_uri>
  <session_key>123102983109283019283</session_key>
  <checkpoint_dir>/var/lib/inputs/ckpt</checkpoint_dir>
  <configuration>
    <stanza name="dbpoll://db1">
      <param name="database_server">db1.example.com</param>
      <param name="interval">300</param>
    </stanza>
    <stanza name="dbpoll://db2">
      <param name="database_server">db2.example.com</param>
    </stanza>
  </configuration>
</input>`

func TestReadInputConfig(t *testing.T) {
	t.Parallel()
	cfg, err := ReadInputConfig(strings.NewReader(sampleInputConfig))
	if err != nil {
		t.Fatalf("ReadInputConfig: %v", err)
	}
	if cfg.ServerHost != "indexer01" || cfg.CheckpointDir != "/var/lib/inputs/ckpt" {
		t.Fatalf("header fields: %+v", cfg)
	}
	if len(cfg.Stanzas) != 2 {
		t.Fatalf("stanzas = %d, want 2", len(cfg.Stanzas))
	}
	s := cfg.Stanzas[0]
	if s.Name != "dbpoll://db1" || s.Params["interval"] != "300" || s.Params["database_server"] != "db1.example.com" {
		t.Fatalf("stanza 0: %+v", s)
	}
}

func TestReadInputConfigMalformed(t *testing.T) {
	t.Parallel()
	if _, err := ReadInputConfig(strings.NewReader("not xml at all")); err == nil {
		t.Fatal("expected error for malformed document")
	}
}

const sampleValidation = `<items>
  <item name="dbpoll://db1">
    <param name="database_server">db1.example.com</param>
    <param name="interval">abc</param>
  </item>
</items>`

func TestReadValidationRequest(t *testing.T) {
	t.Parallel()
	req, err := ReadValidationRequest(strings.NewReader(sampleValidation))
	if err != nil {
		t.Fatalf("ReadValidationRequest: %v", err)
	}
	if req.Stanza != "dbpoll://db1" {
		t.Fatalf("stanza = %q", req.Stanza)
	}
	if req.Params["interval"] != "abc" {
		t.Fatalf("params: %+v", req.Params)
	}
}

func TestEventWriterStream(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ew := NewEventWriter(&buf, true)

	at := time.UnixMilli(1700000000123)
	if err := ew.Emit(Event{Stanza: "dbpoll://db1", Data: "row=1", Time: at}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := ew.Emit(Event{Stanza: "dbpoll://db1", Data: "row=2", Unbroken: true, NoDone: true}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := ew.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "<stream>") || !strings.HasSuffix(out, "</stream>") {
		t.Fatalf("missing stream envelope: %s", out)
	}
	if !strings.Contains(out, `<event stanza="dbpoll://db1">`) {
		t.Fatalf("missing stanza attribute: %s", out)
	}
	if !strings.Contains(out, "<time>1700000000.123</time>") {
		t.Fatalf("missing timestamp: %s", out)
	}
	if !strings.Contains(out, "<done></done>") && !strings.Contains(out, "<done/>") {
		t.Fatalf("missing done marker: %s", out)
	}
	if !strings.Contains(out, `unbroken="1"`) {
		t.Fatalf("missing unbroken attribute: %s", out)
	}
}

func TestEventWriterNil(t *testing.T) {
	t.Parallel()
	var ew *EventWriter
	if err := ew.Emit(Event{Data: "dropped"}); err == nil {
		t.Fatal("Emit on nil writer must error, not panic")
	}
	if err := ew.Close(); err != nil {
		t.Fatalf("Close on nil writer: %v", err)
	}
}

func TestEventWriterEmptyStream(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ew := NewEventWriter(&buf, false)
	if err := ew.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("empty stream wrote %q", buf.String())
	}
}
