package field

import (
	"regexp"
	"strconv"
	"strings"
)

// ---- String ----

type StringField struct{ Meta }

func String(name, title, description string, opts ...Option) *StringField {
	return &StringField{Meta: newMeta(name, title, description, opts)}
}

func (f *StringField) DataType() DataType { return TypeString }

func (f *StringField) Validate(raw string) (any, error) { return raw, nil }

// ---- Integer ----

type IntegerField struct{ Meta }

func Integer(name, title, description string, opts ...Option) *IntegerField {
	return &IntegerField{Meta: newMeta(name, title, description, opts)}
}

func (f *IntegerField) DataType() DataType { return TypeNumber }

func (f *IntegerField) Validate(raw string) (any, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, invalid(f.Name(), raw, "not an integer")
	}
	return v, nil
}

// ---- Float ----

type FloatField struct{ Meta }

func Float(name, title, description string, opts ...Option) *FloatField {
	return &FloatField{Meta: newMeta(name, title, description, opts)}
}

func (f *FloatField) DataType() DataType { return TypeNumber }

func (f *FloatField) Validate(raw string) (any, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, invalid(f.Name(), raw, "not a number")
	}
	return v, nil
}

// ---- Boolean ----

type BooleanField struct{ Meta }

func Boolean(name, title, description string, opts ...Option) *BooleanField {
	return &BooleanField{Meta: newMeta(name, title, description, opts)}
}

func (f *BooleanField) DataType() DataType { return TypeBoolean }

func (f *BooleanField) Validate(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "1":
		return true, nil
	case "false", "f", "0":
		return false, nil
	}
	return nil, invalid(f.Name(), raw, "not a boolean")
}

// ---- Duration ----

// durationUnits maps a unit suffix to its length in seconds.
var durationUnits = map[string]int64{
	"w":      604800,
	"week":   604800,
	"d":      86400,
	"day":    86400,
	"h":      3600,
	"hour":   3600,
	"m":      60,
	"min":    60,
	"minute": 60,
	"s":      1,
}

var durationRe = regexp.MustCompile(`(?i)^([0-9]+)\s*([a-z]*)$`)

// DurationField accepts values like "90", "5m" or "1d" and coerces them to
// an integer number of seconds.
type DurationField struct{ Meta }

func Duration(name, title, description string, opts ...Option) *DurationField {
	return &DurationField{Meta: newMeta(name, title, description, opts)}
}

func (f *DurationField) DataType() DataType { return TypeString }

func (f *DurationField) Validate(raw string) (any, error) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil, invalid(f.Name(), raw, "not a valid duration")
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, invalid(f.Name(), raw, "not a valid number")
	}
	unit := strings.ToLower(m[2])
	if unit == "" {
		return n, nil
	}
	mult, ok := durationUnits[unit]
	if !ok {
		return nil, invalid(f.Name(), raw, "unknown duration unit "+strconv.Quote(unit))
	}
	return n * mult, nil
}

// ---- List ----

// ListField splits a comma-separated value into its elements.
type ListField struct{ Meta }

func List(name, title, description string, opts ...Option) *ListField {
	return &ListField{Meta: newMeta(name, title, description, opts)}
}

func (f *ListField) DataType() DataType { return TypeString }

func (f *ListField) Validate(raw string) (any, error) {
	if raw == "" {
		return []string{}, nil
	}
	return strings.Split(raw, ","), nil
}

// ---- Regex ----

type RegexField struct{ Meta }

func Regex(name, title, description string, opts ...Option) *RegexField {
	return &RegexField{Meta: newMeta(name, title, description, opts)}
}

func (f *RegexField) DataType() DataType { return TypeString }

func (f *RegexField) Validate(raw string) (any, error) {
	re, err := regexp.Compile(raw)
	if err != nil {
		return nil, invalid(f.Name(), raw, err.Error())
	}
	return re, nil
}

// ---- Range ----

// RangeField accepts an integer within the closed interval [Low, High].
type RangeField struct {
	Meta
	Low  int64
	High int64
}

func Range(name, title, description string, low, high int64, opts ...Option) *RangeField {
	return &RangeField{Meta: newMeta(name, title, description, opts), Low: low, High: high}
}

func (f *RangeField) DataType() DataType { return TypeNumber }

func (f *RangeField) Validate(raw string) (any, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, invalid(f.Name(), raw, "not an integer")
	}
	if v < f.Low || v > f.High {
		return nil, invalid(f.Name(), raw,
			"outside range ["+strconv.FormatInt(f.Low, 10)+", "+strconv.FormatInt(f.High, 10)+"]")
	}
	return v, nil
}
