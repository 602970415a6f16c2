package datastructures

import (
	"encoding/json"
	"fmt"

	"github.com/web-mev/mev-backend-sub002/pkg/utils/cmp"
)

// StringAttribute backs String and UnrestrictedString.
//
// String values have spaces normalized to underscores and must then pass
// the identifier grammar. UnrestrictedString takes anything, stringified
// verbatim.
type StringAttribute struct {
	typeName string
	value    *string
}

func NewStringAttribute(value any, allowNull bool) (*StringAttribute, error) {
	if value == nil {
		if !allowNull {
			return nil, &NullValueError{TypeName: TypeString}
		}
		return &StringAttribute{typeName: TypeString}, nil
	}

	s, ok := value.(string)
	if !ok {
		return nil, &InvalidValueError{TypeName: TypeString, Value: value, Reason: "not a string"}
	}
	normalized, ok := normalizeIdentifier(s)
	if !ok {
		return nil, &InvalidValueError{
			TypeName: TypeString, Value: value,
			Reason: "does not match the identifier grammar",
		}
	}

	return &StringAttribute{typeName: TypeString, value: &normalized}, nil
}

func NewUnrestrictedStringAttribute(value any, allowNull bool) (*StringAttribute, error) {
	if value == nil {
		if !allowNull {
			return nil, &NullValueError{TypeName: TypeUnrestrictedString}
		}
		return &StringAttribute{typeName: TypeUnrestrictedString}, nil
	}

	s := stringify(value)
	return &StringAttribute{typeName: TypeUnrestrictedString, value: &s}, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (a *StringAttribute) TypeName() string { return a.typeName }

func (a *StringAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *StringAttribute) Equal(o Attribute) bool {
	b, ok := o.(*StringAttribute)
	return ok && a.typeName == b.typeName && eqPtr(a.value, b.value)
}

func (a *StringAttribute) ToMap() map[string]any {
	return map[string]any{KeyAttributeType: a.typeName, KeyValue: a.Value()}
}

func (a *StringAttribute) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToMap()) }

func (a *StringAttribute) MarshalYAML() (any, error) { return a.ToMap(), nil }

func (a *StringAttribute) String() string { return attrString(a) }

// OptionStringAttribute is a string drawn from a caller-declared, closed
// option list. Membership is case-sensitive.
type OptionStringAttribute struct {
	value   *string
	options []string
}

func NewOptionStringAttribute(value any, options []string, allowNull bool) (*OptionStringAttribute, error) {
	if len(options) == 0 {
		return nil, &InvalidParameterError{
			TypeName: TypeOptionString, Param: KeyOptions, Value: options,
			Reason: "at least one option is required",
		}
	}

	a := &OptionStringAttribute{options: append([]string(nil), options...)}

	if value == nil {
		if !allowNull {
			return nil, &NullValueError{TypeName: TypeOptionString}
		}
		return a, nil
	}

	s, ok := value.(string)
	if !ok {
		return nil, &InvalidValueError{TypeName: TypeOptionString, Value: value, Reason: "not a string"}
	}
	found := false
	for _, opt := range a.options {
		if opt == s {
			found = true
			break
		}
	}
	if !found {
		return nil, &InvalidValueError{
			TypeName: TypeOptionString, Value: value,
			Reason: "not one of the declared options",
		}
	}

	a.value = &s
	return a, nil
}

func (a *OptionStringAttribute) TypeName() string { return TypeOptionString }

func (a *OptionStringAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *OptionStringAttribute) Options() []string {
	return append([]string(nil), a.options...)
}

func (a *OptionStringAttribute) Equal(o Attribute) bool {
	b, ok := o.(*OptionStringAttribute)
	return ok && eqPtr(a.value, b.value) && cmp.SliceEq(a.options, b.options)
}

func (a *OptionStringAttribute) ToMap() map[string]any {
	return map[string]any{
		KeyAttributeType: TypeOptionString,
		KeyValue:         a.Value(),
		KeyOptions:       a.Options(),
	}
}

func (a *OptionStringAttribute) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToMap()) }

func (a *OptionStringAttribute) MarshalYAML() (any, error) { return a.ToMap(), nil }

func (a *OptionStringAttribute) String() string { return attrString(a) }

// BooleanAttribute holds a boolean, accepting the wire encodings handled
// by ParseBoolLike.
type BooleanAttribute struct {
	value *bool
}

func NewBooleanAttribute(value any, allowNull bool) (*BooleanAttribute, error) {
	if value == nil {
		if !allowNull {
			return nil, &NullValueError{TypeName: TypeBoolean}
		}
		return &BooleanAttribute{}, nil
	}

	v, err := ParseBoolLike(value)
	if err != nil {
		return nil, err
	}
	return &BooleanAttribute{value: &v}, nil
}

func (a *BooleanAttribute) TypeName() string { return TypeBoolean }

func (a *BooleanAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	return *a.value
}

func (a *BooleanAttribute) Equal(o Attribute) bool {
	b, ok := o.(*BooleanAttribute)
	return ok && eqPtr(a.value, b.value)
}

func (a *BooleanAttribute) ToMap() map[string]any {
	return map[string]any{KeyAttributeType: TypeBoolean, KeyValue: a.Value()}
}

func (a *BooleanAttribute) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToMap()) }

func (a *BooleanAttribute) MarshalYAML() (any, error) { return a.ToMap(), nil }

func (a *BooleanAttribute) String() string { return attrString(a) }
