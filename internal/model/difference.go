package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Code identifies the category of a detected API difference.
type Code int

// Codes referenced by the built-in filters. The comparator defines more.
const (
	CodeClassIncreasedVisibility  Code = 1000
	CodeClassDecreasedVisibility  Code = 1001
	CodeFieldAdded                Code = 6000
	CodeFieldRemoved              Code = 6001
	CodeFieldIncreasedVisibility  Code = 6009
	CodeFieldDecreasedVisibility  Code = 6010
	CodeMethodRemoved             Code = 7002
	CodeMethodDecreasedVisibility Code = 7009
	CodeMethodIncreasedVisibility Code = 7010
	CodeMethodAddedToInterface    Code = 7012
	CodeAbstractMethodAdded       Code = 7013
	CodeClassAdded                Code = 8000
	CodeClassRemoved              Code = 8001
)

var codeDescriptions = map[Code]string{
	CodeClassIncreasedVisibility:  "class visibility increased",
	CodeClassDecreasedVisibility:  "class visibility decreased",
	CodeFieldAdded:                "field added",
	CodeFieldRemoved:              "field removed",
	CodeFieldIncreasedVisibility:  "field visibility increased",
	CodeFieldDecreasedVisibility:  "field visibility decreased",
	CodeMethodRemoved:             "method removed",
	CodeMethodDecreasedVisibility: "method visibility decreased",
	CodeMethodIncreasedVisibility: "method visibility increased",
	CodeMethodAddedToInterface:    "method added to interface",
	CodeAbstractMethodAdded:       "abstract method added",
	CodeClassAdded:                "class added",
	CodeClassRemoved:              "class removed",
}

// Description returns the meaning of a well-known code, or "" when unknown.
func (c Code) Description() string {
	return codeDescriptions[c]
}

// KnownCodes returns the well-known codes in ascending order.
func KnownCodes() []Code {
	codes := make([]Code, 0, len(codeDescriptions))
	for code := range codeDescriptions {
		codes = append(codes, code)
	}

	slices.Sort(codes)

	return codes
}

// Severity ranks how serious a difference is.
type Severity int

const (
	// SeverityInfo marks compatible, informational changes.
	SeverityInfo Severity = iota
	// SeverityWarning marks changes that may break some clients.
	SeverityWarning
	// SeverityError marks binary or source incompatible changes.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	}

	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity accepts info, warning (or warn) and error in any case.
func ParseSeverity(value string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}

	return SeverityInfo, fmt.Errorf("unknown severity %q", value)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// Scope tells which kind of declaration a difference is about.
type Scope int

const (
	// ScopeClass is a difference about the class itself.
	ScopeClass Scope = iota
	// ScopeMethod is a difference about a method.
	ScopeMethod
	// ScopeField is a difference about a field.
	ScopeField
)

// ErrAmbiguousRecord is returned for records naming both a method and a field.
var ErrAmbiguousRecord = errors.New("difference names both a method and a field")

// DifferenceRecord is one change detected by the comparator.
type DifferenceRecord struct {
	Code          Code     `yaml:"code" json:"code"`
	Severity      Severity `yaml:"severity" json:"severity"`
	AffectedClass string   `yaml:"class" json:"class"`
	// AffectedMethod is the comparator's rendered method signature.
	AffectedMethod string `yaml:"method,omitempty" json:"method,omitempty"`
	AffectedField  string `yaml:"field,omitempty" json:"field,omitempty"`
	Message        string `yaml:"message,omitempty" json:"message,omitempty"`
}

// Scope returns the kind of declaration the record affects.
func (d DifferenceRecord) Scope() Scope {
	switch {
	case d.AffectedMethod != "":
		return ScopeMethod
	case d.AffectedField != "":
		return ScopeField
	}

	return ScopeClass
}

// Validate checks the method/field exclusivity invariant and the required
// class and code.
func (d DifferenceRecord) Validate() error {
	if d.AffectedMethod != "" && d.AffectedField != "" {
		return fmt.Errorf("%d %s: %w", d.Code, d.AffectedClass, ErrAmbiguousRecord)
	}

	if strings.TrimSpace(d.AffectedClass) == "" {
		return fmt.Errorf("code %d: missing affected class", d.Code)
	}

	if d.Code <= 0 {
		return fmt.Errorf("%s: missing code", d.AffectedClass)
	}

	return nil
}
