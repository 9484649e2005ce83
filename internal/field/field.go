package field

import "fmt"

// DataType is the wire-level type the host advertises for an argument.
type DataType string

const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeBoolean DataType = "boolean"
)

// ValidationError reports a parameter value the input cannot accept.
// It is the only error kind validators return for bad values.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
	// Err is the underlying cause, when one exists. Callers can match it
	// with errors.Is through Unwrap.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("the value %q for the %q parameter is not valid: %s", e.Value, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(name, value, reason string) error {
	return &ValidationError{Field: name, Value: value, Reason: reason}
}

// Field describes one input argument: the metadata the host renders in its
// configuration UI plus the value validator applied on create/edit and at
// run time.
type Field interface {
	Name() string
	Title() string
	Description() string
	DataType() DataType
	RequiredOnCreate() bool
	RequiredOnEdit() bool

	// Validate coerces the raw parameter string into its typed value.
	// It returns a *ValidationError when the value cannot be accepted.
	Validate(raw string) (any, error)
}

// Option adjusts the required flags on a field.
//
// Defaults follow the host's documented behavior: required on create,
// optional on edit.
type Option func(*Meta)

func Optional() Option       { return func(m *Meta) { m.requiredOnCreate = false } }
func RequiredOnEdit() Option { return func(m *Meta) { m.requiredOnEdit = true } }

// Meta carries the shared argument metadata. Concrete field types embed it
// and add only their Validate logic.
type Meta struct {
	name             string
	title            string
	description      string
	requiredOnCreate bool
	requiredOnEdit   bool
}

func newMeta(name, title, description string, opts []Option) Meta {
	m := Meta{
		name:             name,
		title:            title,
		description:      description,
		requiredOnCreate: true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Meta) Name() string           { return m.name }
func (m Meta) Title() string          { return m.title }
func (m Meta) Description() string    { return m.description }
func (m Meta) RequiredOnCreate() bool { return m.requiredOnCreate }
func (m Meta) RequiredOnEdit() bool   { return m.requiredOnEdit }
