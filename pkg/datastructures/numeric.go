package datastructures

import (
	"encoding/json"
	"math"
)

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// IntegerAttribute backs the unbounded integer family: Integer,
// PositiveInteger and NonnegativeInteger. The sign predicate applies at
// construction; instances differ only by their type name.
type IntegerAttribute struct {
	typeName string
	value    *int64
}

func NewIntegerAttribute(value any, allowNull bool) (*IntegerAttribute, error) {
	return newIntegerFamily(TypeInteger, value, allowNull)
}

func NewPositiveIntegerAttribute(value any, allowNull bool) (*IntegerAttribute, error) {
	return newIntegerFamily(TypePositiveInteger, value, allowNull)
}

func NewNonnegativeIntegerAttribute(value any, allowNull bool) (*IntegerAttribute, error) {
	return newIntegerFamily(TypeNonnegativeInteger, value, allowNull)
}

func newIntegerFamily(typeName string, value any, allowNull bool) (*IntegerAttribute, error) {
	if value == nil {
		if !allowNull {
			return nil, &NullValueError{TypeName: typeName}
		}
		return &IntegerAttribute{typeName: typeName}, nil
	}

	v, ok := asInt64(value)
	if !ok {
		return nil, &InvalidValueError{TypeName: typeName, Value: value, Reason: "not an integer"}
	}

	switch typeName {
	case TypePositiveInteger:
		if v <= 0 {
			return nil, &InvalidValueError{TypeName: typeName, Value: value, Reason: "must be > 0"}
		}
	case TypeNonnegativeInteger:
		if v < 0 {
			return nil, &InvalidValueError{TypeName: typeName, Value: value, Reason: "must be >= 0"}
		}
	}

	return &IntegerAttribute{typeName: typeName, value: &v}, nil
}

func (a *IntegerAttribute) TypeName() string { return a.typeName }

func (a *IntegerAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *IntegerAttribute) Equal(o Attribute) bool {
	b, ok := o.(*IntegerAttribute)
	return ok && a.typeName == b.typeName && eqPtr(a.value, b.value)
}

func (a *IntegerAttribute) ToMap() map[string]any {
	return map[string]any{KeyAttributeType: a.typeName, KeyValue: a.Value()}
}

func (a *IntegerAttribute) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToMap()) }

func (a *IntegerAttribute) MarshalYAML() (any, error) { return a.ToMap(), nil }

func (a *IntegerAttribute) String() string { return attrString(a) }

// BoundedIntegerAttribute is an integer within a closed range. The bounds
// are integers themselves, fixed at construction.
type BoundedIntegerAttribute struct {
	value    *int64
	min, max int64
}

func NewBoundedIntegerAttribute(value any, min, max int64, allowNull bool) (*BoundedIntegerAttribute, error) {
	if max < min {
		return nil, &InvalidParameterError{
			TypeName: TypeBoundedInteger, Param: KeyMin, Value: min,
			Reason: "lower bound exceeds upper bound",
		}
	}

	a := &BoundedIntegerAttribute{min: min, max: max}

	if value == nil {
		if !allowNull {
			return nil, &NullValueError{TypeName: TypeBoundedInteger}
		}
		return a, nil
	}

	v, ok := asInt64(value)
	if !ok {
		return nil, &InvalidValueError{TypeName: TypeBoundedInteger, Value: value, Reason: "not an integer"}
	}
	if v < min || max < v {
		return nil, &InvalidValueError{
			TypeName: TypeBoundedInteger, Value: value,
			Reason: "out of bounds",
		}
	}

	a.value = &v
	return a, nil
}

func (a *BoundedIntegerAttribute) TypeName() string { return TypeBoundedInteger }

func (a *BoundedIntegerAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *BoundedIntegerAttribute) Min() int64 { return a.min }
func (a *BoundedIntegerAttribute) Max() int64 { return a.max }

func (a *BoundedIntegerAttribute) Equal(o Attribute) bool {
	b, ok := o.(*BoundedIntegerAttribute)
	return ok && a.min == b.min && a.max == b.max && eqPtr(a.value, b.value)
}

func (a *BoundedIntegerAttribute) ToMap() map[string]any {
	return map[string]any{
		KeyAttributeType: TypeBoundedInteger,
		KeyValue:         a.Value(),
		KeyMin:           a.min,
		KeyMax:           a.max,
	}
}

func (a *BoundedIntegerAttribute) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToMap()) }

func (a *BoundedIntegerAttribute) MarshalYAML() (any, error) { return a.ToMap(), nil }

func (a *BoundedIntegerAttribute) String() string { return attrString(a) }

// FloatAttribute backs the unbounded float family: Float, PositiveFloat
// and NonnegativeFloat.
//
// Infinite values are held as math.Inf and cross the wire as the
// "Infinity" / "-Infinity" markers.
type FloatAttribute struct {
	typeName string
	value    *float64
}

func NewFloatAttribute(value any, allowNull bool) (*FloatAttribute, error) {
	return newFloatFamily(TypeFloat, value, allowNull)
}

func NewPositiveFloatAttribute(value any, allowNull bool) (*FloatAttribute, error) {
	return newFloatFamily(TypePositiveFloat, value, allowNull)
}

func NewNonnegativeFloatAttribute(value any, allowNull bool) (*FloatAttribute, error) {
	return newFloatFamily(TypeNonnegativeFloat, value, allowNull)
}

func newFloatFamily(typeName string, value any, allowNull bool) (*FloatAttribute, error) {
	if value == nil {
		if !allowNull {
			return nil, &NullValueError{TypeName: typeName}
		}
		return &FloatAttribute{typeName: typeName}, nil
	}

	f, err := floatOrInf(typeName, value)
	if err != nil {
		return nil, err
	}

	switch typeName {
	case TypePositiveFloat:
		if !(f > 0) {
			return nil, &InvalidValueError{TypeName: typeName, Value: value, Reason: "must be > 0"}
		}
	case TypeNonnegativeFloat:
		if !(f >= 0) {
			return nil, &InvalidValueError{TypeName: typeName, Value: value, Reason: "must be >= 0"}
		}
	}

	return &FloatAttribute{typeName: typeName, value: &f}, nil
}

// floatOrInf coerces value to float64, honoring the infinity markers.
func floatOrInf(typeName string, value any) (float64, error) {
	if s, ok := value.(string); ok {
		switch s {
		case PositiveInfMarker:
			return math.Inf(1), nil
		case NegativeInfMarker:
			return math.Inf(-1), nil
		}
		return 0, &InvalidValueError{TypeName: typeName, Value: value, Reason: "not a number"}
	}

	f, ok := asFloat64(value)
	if !ok {
		return 0, &InvalidValueError{TypeName: typeName, Value: value, Reason: "not a number"}
	}
	return f, nil
}

// floatWire maps an in-memory float to its wire form.
func floatWire(v *float64) any {
	switch {
	case v == nil:
		return nil
	case math.IsInf(*v, 1):
		return PositiveInfMarker
	case math.IsInf(*v, -1):
		return NegativeInfMarker
	default:
		return *v
	}
}

func (a *FloatAttribute) TypeName() string { return a.typeName }

func (a *FloatAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *FloatAttribute) Equal(o Attribute) bool {
	b, ok := o.(*FloatAttribute)
	return ok && a.typeName == b.typeName && eqPtr(a.value, b.value)
}

func (a *FloatAttribute) ToMap() map[string]any {
	return map[string]any{KeyAttributeType: a.typeName, KeyValue: floatWire(a.value)}
}

func (a *FloatAttribute) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToMap()) }

func (a *FloatAttribute) MarshalYAML() (any, error) { return a.ToMap(), nil }

func (a *FloatAttribute) String() string { return attrString(a) }

// BoundedFloatAttribute is a float within a closed range. Bounds are
// finite numbers; the infinity markers are not acceptable bounds.
type BoundedFloatAttribute struct {
	value    *float64
	min, max float64
}

func NewBoundedFloatAttribute(value any, min, max float64, allowNull bool) (*BoundedFloatAttribute, error) {
	if max < min {
		return nil, &InvalidParameterError{
			TypeName: TypeBoundedFloat, Param: KeyMin, Value: min,
			Reason: "lower bound exceeds upper bound",
		}
	}

	a := &BoundedFloatAttribute{min: min, max: max}

	if value == nil {
		if !allowNull {
			return nil, &NullValueError{TypeName: TypeBoundedFloat}
		}
		return a, nil
	}

	f, err := floatOrInf(TypeBoundedFloat, value)
	if err != nil {
		return nil, err
	}
	if f < min || max < f {
		return nil, &InvalidValueError{
			TypeName: TypeBoundedFloat, Value: value,
			Reason: "out of bounds",
		}
	}

	a.value = &f
	return a, nil
}

func (a *BoundedFloatAttribute) TypeName() string { return TypeBoundedFloat }

func (a *BoundedFloatAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *BoundedFloatAttribute) Min() float64 { return a.min }
func (a *BoundedFloatAttribute) Max() float64 { return a.max }

func (a *BoundedFloatAttribute) Equal(o Attribute) bool {
	b, ok := o.(*BoundedFloatAttribute)
	return ok && a.min == b.min && a.max == b.max && eqPtr(a.value, b.value)
}

func (a *BoundedFloatAttribute) ToMap() map[string]any {
	return map[string]any{
		KeyAttributeType: TypeBoundedFloat,
		KeyValue:         floatWire(a.value),
		KeyMin:           a.min,
		KeyMax:           a.max,
	}
}

func (a *BoundedFloatAttribute) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToMap()) }

func (a *BoundedFloatAttribute) MarshalYAML() (any, error) { return a.ToMap(), nil }

func (a *BoundedFloatAttribute) String() string { return attrString(a) }
