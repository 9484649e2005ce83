// Package hostio implements the XML stdio contract between an input and the
// host process.
//
// The host drives the exchange: it asks for the introspection scheme
// (--scheme), submits candidate parameters for external validation
// (--validate-arguments), and on a normal launch feeds the input
// configuration document on stdin. The input answers on stdout with scheme
// XML, error XML, or a stream of event XML.
package hostio
