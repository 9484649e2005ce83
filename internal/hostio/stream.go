package hostio

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
)

// Event is one unit of collected data destined for the host indexer.
// Empty fields are omitted and the host applies its stanza defaults.
type Event struct {
	Stanza     string // required in single-instance mode
	Host       string
	Index      string
	Source     string
	SourceType string
	Data       string
	Time       time.Time
	// Unbroken marks the event as a fragment; the host waits for a later
	// Done marker before line-breaking.
	Unbroken bool
	// NoDone suppresses the per-event done marker (see Unbroken).
	NoDone bool
}

type eventDoc struct {
	XMLName    xml.Name  `xml:"event"`
	Stanza     string    `xml:"stanza,attr,omitempty"`
	Unbroken   string    `xml:"unbroken,attr,omitempty"`
	Host       string    `xml:"host,omitempty"`
	Index      string    `xml:"index,omitempty"`
	Source     string    `xml:"source,omitempty"`
	SourceType string    `xml:"sourcetype,omitempty"`
	Time       string    `xml:"time,omitempty"`
	Data       string    `xml:"data,omitempty"`
	Done       *struct{} `xml:"done"`
}

// EventWriter streams <event> documents inside one <stream> envelope.
// Safe for use from a single goroutine per writer; the run loop owns it.
type EventWriter struct {
	mu        sync.Mutex
	w         io.Writer
	perStanza bool
	started   bool
	closed    bool
}

// NewEventWriter wraps w, normally stdout. perStanza should be set in
// single-instance mode so each event names its originating stanza.
func NewEventWriter(w io.Writer, perStanza bool) *EventWriter {
	return &EventWriter{w: w, perStanza: perStanza}
}

// Emit writes one event, opening the stream envelope on first use.
// A nil writer (no event stream configured) reports an error.
func (ew *EventWriter) Emit(e Event) error {
	if ew == nil {
		return fmt.Errorf("no event stream configured")
	}
	ew.mu.Lock()
	defer ew.mu.Unlock()
	if ew.closed {
		return fmt.Errorf("event stream already closed")
	}
	if !ew.started {
		if _, err := io.WriteString(ew.w, "<stream>"); err != nil {
			return err
		}
		ew.started = true
	}

	doc := eventDoc{
		Host:       e.Host,
		Index:      e.Index,
		Source:     e.Source,
		SourceType: e.SourceType,
		Data:       e.Data,
	}
	if ew.perStanza {
		doc.Stanza = e.Stanza
	}
	if e.Unbroken {
		doc.Unbroken = "1"
	}
	if !e.Time.IsZero() {
		doc.Time = formatEventTime(e.Time)
	}
	if !e.NoDone {
		doc.Done = &struct{}{}
	}

	b, err := xml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = ew.w.Write(b)
	return err
}

// Close terminates the stream envelope. Emitting nothing is fine: a never
// started stream writes nothing at all. Close on a nil writer is a no-op.
func (ew *EventWriter) Close() error {
	if ew == nil {
		return nil
	}
	ew.mu.Lock()
	defer ew.mu.Unlock()
	if ew.closed {
		return nil
	}
	ew.closed = true
	if !ew.started {
		return nil
	}
	_, err := io.WriteString(ew.w, "</stream>")
	return err
}

// formatEventTime renders epoch seconds with millisecond precision.
func formatEventTime(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMilli())/1000.0, 'f', 3, 64)
}
