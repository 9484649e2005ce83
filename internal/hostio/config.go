package hostio

import (
	"encoding/xml"
	"fmt"
	"io"
)

// InputConfig is the run-time configuration document the host writes to the
// input's stdin on launch.
type InputConfig struct {
	ServerHost    string
	ServerURI     string
	SessionKey    string
	CheckpointDir string
	Stanzas       []Stanza
}

// Stanza is one named configuration instance with its raw parameter values.
type Stanza struct {
	Name   string
	Params map[string]string
}

type inputDoc struct {
	XMLName       xml.Name    `xml:"input"`
	ServerHost    string      `xml:"server_host"`
	ServerURI     string      `xml:"server_uri"`
	SessionKey    string      `xml:"session_key"`
	CheckpointDir string      `xml:"checkpoint_dir"`
	Stanzas       []stanzaDoc `xml:"configuration>stanza"`
}

type stanzaDoc struct {
	Name   string     `xml:"name,attr"`
	Params []paramDoc `xml:"param"`
}

type paramDoc struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// ReadInputConfig parses the configuration document from r.
func ReadInputConfig(r io.Reader) (*InputConfig, error) {
	var doc inputDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse input configuration: %w", err)
	}

	cfg := &InputConfig{
		ServerHost:    doc.ServerHost,
		ServerURI:     doc.ServerURI,
		SessionKey:    doc.SessionKey,
		CheckpointDir: doc.CheckpointDir,
	}
	for _, s := range doc.Stanzas {
		if s.Name == "" {
			continue
		}
		st := Stanza{Name: s.Name, Params: make(map[string]string, len(s.Params))}
		for _, p := range s.Params {
			if p.Name == "" {
				continue
			}
			st.Params[p.Name] = p.Value
		}
		cfg.Stanzas = append(cfg.Stanzas, st)
	}
	return cfg, nil
}

// ValidationRequest is the payload the host sends for --validate-arguments:
// a single candidate stanza with its proposed parameter values.
type ValidationRequest struct {
	Stanza string
	Params map[string]string
}

type itemsDoc struct {
	XMLName xml.Name `xml:"items"`
	Item    struct {
		Name   string     `xml:"name,attr"`
		Params []paramDoc `xml:"param"`
	} `xml:"item"`
}

// ReadValidationRequest parses the external-validation document from r.
func ReadValidationRequest(r io.Reader) (*ValidationRequest, error) {
	var doc itemsDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse validation request: %w", err)
	}

	req := &ValidationRequest{
		Stanza: doc.Item.Name,
		Params: make(map[string]string, len(doc.Item.Params)),
	}
	for _, p := range doc.Item.Params {
		if p.Name == "" {
			continue
		}
		req.Params[p.Name] = p.Value
	}
	return req, nil
}
