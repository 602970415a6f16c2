// Package datastructures implements the self-describing type system used
// by the WebMeV backend to validate user-supplied values and the
// input/output specifications of analysis tools.
//
// Everything here works on plain nested key-value structures, already
// decoded from JSON or YAML. Construction either yields a fully validated
// in-memory object or a typed error; no partially constructed object is
// ever returned, and nothing here performs I/O.
package datastructures

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Wire keys shared by all attribute descriptions.
const (
	KeyAttributeType = "attribute_type"
	KeyValue         = "value"

	KeyMin           = "min"
	KeyMax           = "max"
	KeyOptions       = "options"
	KeyMany          = "many"
	KeyResourceType  = "resource_type"
	KeyResourceTypes = "resource_types"

	KeyId         = "id"
	KeyAttributes = "attributes"
	KeyMultiple   = "multiple"
	KeyElements   = "elements"
)

// Type discriminators. These are the values of the "attribute_type" key
// and are fixed per concrete type.
const (
	TypeInteger            = "Integer"
	TypePositiveInteger    = "PositiveInteger"
	TypeNonnegativeInteger = "NonnegativeInteger"
	TypeBoundedInteger     = "BoundedInteger"

	TypeFloat            = "Float"
	TypePositiveFloat    = "PositiveFloat"
	TypeNonnegativeFloat = "NonnegativeFloat"
	TypeBoundedFloat     = "BoundedFloat"

	TypeString             = "String"
	TypeUnrestrictedString = "UnrestrictedString"
	TypeOptionString       = "OptionString"
	TypeBoolean            = "Boolean"

	TypeDataResource          = "DataResource"
	TypeOperationDataResource = "OperationDataResource"
	TypeVariableDataResource  = "VariableDataResource"

	TypeStringList             = "StringList"
	TypeUnrestrictedStringList = "UnrestrictedStringList"

	TypeObservation    = "Observation"
	TypeFeature        = "Feature"
	TypeObservationSet = "ObservationSet"
	TypeFeatureSet     = "FeatureSet"
)

// Sentinel strings for unbounded floats. They appear verbatim in the wire
// format; in memory the float family keeps math.Inf values instead.
const (
	PositiveInfMarker = "Infinity"
	NegativeInfMarker = "-Infinity"
)

// Attribute is a typed, self-validating value.
//
// An Attribute is always internally consistent: its constructor either
// fully succeeds or produces no object, and instances are not mutated
// afterwards.
type Attribute interface {

	// wire discriminator of the concrete type.
	TypeName() string

	// the validated payload. nil when the attribute holds a null.
	//
	// Scalars come back as int64 / float64 / string / bool, resource
	// references as string or []string of UUIDs, lists as []any, and
	// compound attributes as *Element / *ElementSet.
	Value() any

	Equal(Attribute) bool

	// the wire form of the attribute:
	//
	//	{"attribute_type": ..., "value": ..., <type-specific keys>...}
	//
	// ToMap(Construct(m)) == m holds for any m produced by ToMap.
	ToMap() map[string]any
}

// identifier grammar: a letter, then letters, digits, '.', '-' or '_'.
var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)

// normalizeIdentifier maps spaces to underscores before checking
// the identifier grammar.
func normalizeIdentifier(s string) (string, bool) {
	s = strings.ReplaceAll(s, " ", "_")
	return s, identifierPattern.MatchString(s)
}

// asInt64 coerces raw to int64.
//
// Only exact integral types and json.Number values without a fractional
// part are accepted. Floats are refused even when they are whole numbers.
func asInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) > uint64(1<<63-1) {
			return 0, false
		}
		return int64(v), true
	case uint64:
		if v > uint64(1<<63-1) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// asFloat64 coerces raw to float64. Integral and floating types are both
// accepted. The infinity markers are NOT handled here.
func asFloat64(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	if i, ok := asInt64(raw); ok {
		return float64(i), true
	}
	return 0, false
}

// ParseBoolLike interprets the boolean encodings accepted throughout the
// wire format: native booleans, "true"/"false" in any case, and 0/1 as
// number or string. Anything else is an InvalidValueError.
func ParseBoolLike(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	default:
		if f, ok := asFloat64(raw); ok {
			switch f {
			case 0:
				return false, nil
			case 1:
				return true, nil
			}
		}
	}
	return false, &InvalidValueError{
		TypeName: TypeBoolean,
		Value:    raw,
		Reason:   "not a recognized boolean encoding",
	}
}

// checkExtraParams fails with ExtraParameterError when params holds keys
// beyond the known ones, unless the construction is permissive.
func checkExtraParams(typeName string, params map[string]any, permissive bool, known ...string) error {
	if permissive {
		return nil
	}
	extras := []string{}
	for k := range params {
		if !slices.Contains(known, k) {
			extras = append(extras, k)
		}
	}
	if len(extras) == 0 {
		return nil
	}
	slices.Sort(extras)
	return &ExtraParameterError{TypeName: typeName, Params: extras}
}

// copyMap makes a shallow copy. Constructors never mutate caller-owned
// maps; they work on copies.
func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return maps.Clone(m)
}

// attrString renders an attribute for diagnostics, e.g. `Integer[3]`.
func attrString(a Attribute) string {
	if a.Value() == nil {
		return a.TypeName() + "[null]"
	}
	return fmt.Sprintf("%s[%v]", a.TypeName(), a.Value())
}
