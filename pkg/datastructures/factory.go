package datastructures

import (
	"bytes"
	"encoding/json"
	"maps"

	"gopkg.in/yaml.v3"
)

// constructor builds one attribute type from a raw value and the
// parameters left over after the factory consumed the discriminator and
// the value.
type constructor func(value any, allowNull bool, params map[string]any, permissive bool) (Attribute, error)

// ConstructOptions tunes a factory dispatch.
type ConstructOptions struct {

	// AllowNull lets an explicit null pass as the value.
	AllowNull bool

	// IgnoreExtraKeys tolerates (and discards) unrecognized keys, both
	// on the attribute itself and inside nested elements. Callers use
	// this when the input is known to carry decorative fields.
	IgnoreExtraKeys bool
}

// leafRegistry covers the scalar, reference and list types: everything an
// element may carry as one of its attributes.
var leafRegistry = map[string]constructor{}

// fullRegistry additionally covers the compound types, for top-level
// construction and for spec defaults.
var fullRegistry = map[string]constructor{}

func init() {
	leafRegistry[TypeInteger] = plainConstructor(TypeInteger, NewIntegerAttribute)
	leafRegistry[TypePositiveInteger] = plainConstructor(TypePositiveInteger, NewPositiveIntegerAttribute)
	leafRegistry[TypeNonnegativeInteger] = plainConstructor(TypeNonnegativeInteger, NewNonnegativeIntegerAttribute)
	leafRegistry[TypeBoundedInteger] = constructBoundedInteger
	leafRegistry[TypeFloat] = plainConstructor(TypeFloat, NewFloatAttribute)
	leafRegistry[TypePositiveFloat] = plainConstructor(TypePositiveFloat, NewPositiveFloatAttribute)
	leafRegistry[TypeNonnegativeFloat] = plainConstructor(TypeNonnegativeFloat, NewNonnegativeFloatAttribute)
	leafRegistry[TypeBoundedFloat] = constructBoundedFloat
	leafRegistry[TypeString] = plainConstructor(TypeString, NewStringAttribute)
	leafRegistry[TypeUnrestrictedString] = plainConstructor(TypeUnrestrictedString, NewUnrestrictedStringAttribute)
	leafRegistry[TypeOptionString] = constructOptionString
	leafRegistry[TypeBoolean] = plainConstructor(TypeBoolean, NewBooleanAttribute)
	leafRegistry[TypeDataResource] = constructResourceRef(TypeDataResource)
	leafRegistry[TypeOperationDataResource] = constructResourceRef(TypeOperationDataResource)
	leafRegistry[TypeVariableDataResource] = constructVariableResourceRef
	leafRegistry[TypeStringList] = constructList(TypeString)
	leafRegistry[TypeUnrestrictedStringList] = constructList(TypeUnrestrictedString)

	maps.Copy(fullRegistry, leafRegistry)
	fullRegistry[TypeObservation] = constructCompoundElement(TypeObservation)
	fullRegistry[TypeFeature] = constructCompoundElement(TypeFeature)
	fullRegistry[TypeObservationSet] = constructCompoundSet(TypeObservationSet)
	fullRegistry[TypeFeatureSet] = constructCompoundSet(TypeFeatureSet)
}

// plainConstructor wraps a parameterless attribute type: any leftover
// parameter is an extra.
func plainConstructor[T Attribute](typeName string, ctor func(value any, allowNull bool) (T, error)) constructor {
	return func(value any, allowNull bool, params map[string]any, permissive bool) (Attribute, error) {
		if err := checkExtraParams(typeName, params, permissive); err != nil {
			return nil, err
		}
		return ctor(value, allowNull)
	}
}

func constructBoundedInteger(value any, allowNull bool, params map[string]any, permissive bool) (Attribute, error) {
	if err := checkExtraParams(TypeBoundedInteger, params, permissive, KeyMin, KeyMax); err != nil {
		return nil, err
	}
	min, err := intParam(TypeBoundedInteger, params, KeyMin)
	if err != nil {
		return nil, err
	}
	max, err := intParam(TypeBoundedInteger, params, KeyMax)
	if err != nil {
		return nil, err
	}
	return NewBoundedIntegerAttribute(value, min, max, allowNull)
}

func constructBoundedFloat(value any, allowNull bool, params map[string]any, permissive bool) (Attribute, error) {
	if err := checkExtraParams(TypeBoundedFloat, params, permissive, KeyMin, KeyMax); err != nil {
		return nil, err
	}
	min, err := floatParam(TypeBoundedFloat, params, KeyMin)
	if err != nil {
		return nil, err
	}
	max, err := floatParam(TypeBoundedFloat, params, KeyMax)
	if err != nil {
		return nil, err
	}
	return NewBoundedFloatAttribute(value, min, max, allowNull)
}

func constructOptionString(value any, allowNull bool, params map[string]any, permissive bool) (Attribute, error) {
	if err := checkExtraParams(TypeOptionString, params, permissive, KeyOptions); err != nil {
		return nil, err
	}
	options, err := stringListParam(TypeOptionString, params, KeyOptions)
	if err != nil {
		return nil, err
	}
	return NewOptionStringAttribute(value, options, allowNull)
}

func constructResourceRef(typeName string) constructor {
	return func(value any, allowNull bool, params map[string]any, permissive bool) (Attribute, error) {
		if err := checkExtraParams(typeName, params, permissive, KeyMany, KeyResourceType); err != nil {
			return nil, err
		}
		many, err := boolParam(typeName, params, KeyMany)
		if err != nil {
			return nil, err
		}
		resourceType, err := optionalStringParam(typeName, params, KeyResourceType)
		if err != nil {
			return nil, err
		}
		return newResourceRef(typeName, value, many, resourceType, allowNull)
	}
}

func constructVariableResourceRef(value any, allowNull bool, params map[string]any, permissive bool) (Attribute, error) {
	if err := checkExtraParams(TypeVariableDataResource, params, permissive, KeyMany, KeyResourceTypes); err != nil {
		return nil, err
	}
	many, err := boolParam(TypeVariableDataResource, params, KeyMany)
	if err != nil {
		return nil, err
	}
	resourceTypes, err := stringListParam(TypeVariableDataResource, params, KeyResourceTypes)
	if err != nil {
		return nil, err
	}
	return NewVariableDataResourceAttribute(value, many, resourceTypes, allowNull)
}

func constructList(elementTypeName string) constructor {
	return func(value any, allowNull bool, params map[string]any, permissive bool) (Attribute, error) {
		return newAttributeList(elementTypeName, value, allowNull, params, permissive)
	}
}

func constructCompoundElement(typeName string) constructor {
	return func(value any, allowNull bool, params map[string]any, permissive bool) (Attribute, error) {
		if err := checkExtraParams(typeName, params, permissive); err != nil {
			return nil, err
		}
		if value == nil {
			if !allowNull {
				return nil, &NullValueError{TypeName: typeName}
			}
			return nullElement(typeName), nil
		}
		return newElement(typeName, value, permissive)
	}
}

func constructCompoundSet(typeName string) constructor {
	return func(value any, allowNull bool, params map[string]any, permissive bool) (Attribute, error) {
		if err := checkExtraParams(typeName, params, permissive); err != nil {
			return nil, err
		}
		if value == nil {
			if !allowNull {
				return nil, &NullValueError{TypeName: typeName}
			}
			return nullElementSet(typeName), nil
		}
		return newElementSet(typeName, value, permissive)
	}
}

// Construct dispatches on the "attribute_type" discriminator and builds a
// validated attribute, compound types included. Null values are refused;
// use ConstructWith to permit them.
//
// The input map is never mutated.
func Construct(raw map[string]any) (Attribute, error) {
	return constructFrom(raw, fullRegistry, ConstructOptions{})
}

// ConstructWith is Construct with explicit options.
func ConstructWith(raw map[string]any, opts ConstructOptions) (Attribute, error) {
	return constructFrom(raw, fullRegistry, opts)
}

// ConstructLeaf dispatches over the leaf types only. Elements use this
// for their nested attributes, where a compound makes no sense.
func ConstructLeaf(raw map[string]any) (Attribute, error) {
	return constructFrom(raw, leafRegistry, ConstructOptions{})
}

// ConstructLeafWith is ConstructLeaf with explicit options.
func ConstructLeafWith(raw map[string]any, opts ConstructOptions) (Attribute, error) {
	return constructFrom(raw, leafRegistry, opts)
}

func constructFrom(raw map[string]any, registry map[string]constructor, opts ConstructOptions) (Attribute, error) {
	body := copyMap(raw)

	rawType, ok := body[KeyAttributeType]
	if !ok {
		return nil, &UnknownTypeError{}
	}
	delete(body, KeyAttributeType)
	typeName, ok := rawType.(string)
	if !ok {
		return nil, &UnknownTypeError{TypeName: stringify(rawType)}
	}

	value, ok := body[KeyValue]
	if !ok {
		return nil, &MissingValueError{}
	}
	delete(body, KeyValue)

	ctor, ok := registry[typeName]
	if !ok {
		return nil, &UnknownTypeError{TypeName: typeName}
	}
	return ctor(value, opts.AllowNull, body, opts.IgnoreExtraKeys)
}

func intParam(typeName string, params map[string]any, key string) (int64, error) {
	raw, ok := params[key]
	if !ok {
		return 0, &MissingParameterError{TypeName: typeName, Param: key}
	}
	v, ok := asInt64(raw)
	if !ok {
		return 0, &InvalidParameterError{
			TypeName: typeName, Param: key, Value: raw,
			Reason: "not an integer",
		}
	}
	return v, nil
}

// floatParam reads a numeric parameter. The infinity markers are not
// acceptable here: bounds are finite.
func floatParam(typeName string, params map[string]any, key string) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return 0, &MissingParameterError{TypeName: typeName, Param: key}
	}
	v, ok := asFloat64(raw)
	if !ok {
		return 0, &InvalidParameterError{
			TypeName: typeName, Param: key, Value: raw,
			Reason: "not a finite number",
		}
	}
	return v, nil
}

func boolParam(typeName string, params map[string]any, key string) (bool, error) {
	raw, ok := params[key]
	if !ok {
		return false, &MissingParameterError{TypeName: typeName, Param: key}
	}
	v, err := ParseBoolLike(raw)
	if err != nil {
		return false, &InvalidParameterError{
			TypeName: typeName, Param: key, Value: raw,
			Reason: "not a recognized boolean encoding",
		}
	}
	return v, nil
}

func optionalStringParam(typeName string, params map[string]any, key string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", &InvalidParameterError{
			TypeName: typeName, Param: key, Value: raw,
			Reason: "not a string",
		}
	}
	return s, nil
}

func stringListParam(typeName string, params map[string]any, key string) ([]string, error) {
	raw, ok := params[key]
	if !ok {
		return nil, &MissingParameterError{TypeName: typeName, Param: key}
	}

	var entries []any
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		entries = v
	default:
		return nil, &InvalidParameterError{
			TypeName: typeName, Param: key, Value: raw,
			Reason: "not a list of strings",
		}
	}

	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		s, ok := entry.(string)
		if !ok {
			return nil, &InvalidParameterError{
				TypeName: typeName, Param: key, Value: entry,
				Reason: "not a string",
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// DecodeMap decodes one JSON object into a generic map, keeping numbers
// as json.Number so that integers survive exactly.
func DecodeMap(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// UnmarshalAttribute decodes JSON bytes and constructs the attribute they
// describe, via the full registry.
func UnmarshalAttribute(b []byte) (Attribute, error) {
	m, err := DecodeMap(b)
	if err != nil {
		return nil, err
	}
	return Construct(m)
}

// UnmarshalAttributeYAML is UnmarshalAttribute for YAML bytes.
func UnmarshalAttributeYAML(b []byte) (Attribute, error) {
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return Construct(m)
}
