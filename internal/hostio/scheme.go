package hostio

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Scheme is the introspection document the host requests with --scheme.
// The element set and order are fixed by the host contract.
type Scheme struct {
	XMLName               xml.Name `xml:"scheme"`
	Title                 string   `xml:"title"`
	Description           string   `xml:"description"`
	UseExternalValidation bool     `xml:"use_external_validation"`
	StreamingMode         string   `xml:"streaming_mode"`
	UseSingleInstance     bool     `xml:"use_single_instance"`
	Args                  []Arg    `xml:"endpoint>args>arg"`
}

// Arg describes one configurable argument within the scheme.
type Arg struct {
	Name             string `xml:"name,attr"`
	Title            string `xml:"title"`
	Description      string `xml:"description"`
	DataType         string `xml:"data_type"`
	RequiredOnCreate bool   `xml:"required_on_create"`
	RequiredOnEdit   bool   `xml:"required_on_edit"`
}

// WriteScheme renders the scheme document, XML declaration included.
func WriteScheme(w io.Writer, s Scheme) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode scheme: %w", err)
	}
	return enc.Close()
}

// errorDoc is the host's failure envelope: the message is surfaced verbatim
// in the host UI.
type errorDoc struct {
	XMLName xml.Name `xml:"error"`
	Message string   `xml:"message"`
}

// WriteError reports a failure to the host on stdout.
func WriteError(w io.Writer, msg string) error {
	enc := xml.NewEncoder(w)
	if err := enc.Encode(errorDoc{Message: msg}); err != nil {
		return fmt.Errorf("encode error document: %w", err)
	}
	return enc.Close()
}
