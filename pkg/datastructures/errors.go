package datastructures

import (
	"fmt"
	"strings"
)

// NullValueError is returned when a null value is given to an attribute
// which does not permit nulls.
type NullValueError struct {
	TypeName string
}

func (e *NullValueError) Error() string {
	return fmt.Sprintf("%s: null value is not permitted here", e.TypeName)
}

// InvalidValueError is returned when a non-null value fails the predicate
// of its attribute type.
type InvalidValueError struct {
	TypeName string
	Value    any
	Reason   string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: invalid value %v: %s", e.TypeName, e.Value, e.Reason)
}

// MissingValueError is returned when an attribute description has no
// "value" key at all.
//
// Null values are accepted (where the attribute permits them), but they
// have to be spelled out. A missing key is not a null.
type MissingValueError struct{}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf(`required key missing: %q`, KeyValue)
}

// MissingParameterError is returned when a required type-specific
// parameter (like "min" on a bounded type) was not supplied.
type MissingParameterError struct {
	TypeName string
	Param    string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: required parameter missing: %q", e.TypeName, e.Param)
}

// InvalidParameterError is returned when a type-specific parameter has the
// wrong shape, for example a non-integer bound on a bounded-integer type.
type InvalidParameterError struct {
	TypeName string
	Param    string
	Value    any
	Reason   string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s: bad parameter %q (%v): %s", e.TypeName, e.Param, e.Value, e.Reason)
}

// ExtraParameterError is returned when keys are left over after an
// attribute type consumed the parameters it knows, and the construction was
// not told to tolerate extras.
type ExtraParameterError struct {
	TypeName string
	Params   []string
}

func (e *ExtraParameterError) Error() string {
	return fmt.Sprintf("%s: unrecognized parameters: %s", e.TypeName, strings.Join(e.Params, ", "))
}

// UnknownTypeError is returned when the type discriminator is missing or
// does not name a registered attribute type.
type UnknownTypeError struct {
	TypeName string
}

func (e *UnknownTypeError) Error() string {
	if e.TypeName == "" {
		return fmt.Sprintf(`required key missing: %q`, KeyAttributeType)
	}
	return fmt.Sprintf("unknown attribute type: %q", e.TypeName)
}

// StructuralError is returned when a container (element, set, operation, ...)
// has the wrong shape: not a mapping, required keys missing, unrecognized
// keys present, or duplicated element ids.
type StructuralError struct {
	Reason  string
	Missing []string
	Extra   []string
}

func (e *StructuralError) Error() string {
	parts := []string{}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if 0 < len(e.Missing) {
		parts = append(parts, fmt.Sprintf("missing keys: %s", strings.Join(e.Missing, ", ")))
	}
	if 0 < len(e.Extra) {
		parts = append(parts, fmt.Sprintf("extra keys: %s", strings.Join(e.Extra, ", ")))
	}
	if len(parts) == 0 {
		parts = append(parts, "malformed structure")
	}
	return strings.Join(parts, "; ")
}

// ConflictError is returned when merging two elements which carry the same
// attribute name with different values. No resolution is guessed.
type ConflictError struct {
	Attribute string
	A         Attribute
	B         Attribute
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"conflicting values for attribute %q: %v is not %v",
		e.Attribute, e.A.Value(), e.B.Value(),
	)
}

// InvalidResourceTypeError is returned by the resource-type vocabulary
// check. It names every offending entry.
type InvalidResourceTypeError struct {
	Types []string
}

func (e *InvalidResourceTypeError) Error() string {
	return fmt.Sprintf("invalid resource types: %s", strings.Join(e.Types, ", "))
}
