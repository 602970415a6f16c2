package datastructures

import (
	"encoding/json"
	"fmt"

	"github.com/web-mev/mev-backend-sub002/pkg/utils"
	"github.com/web-mev/mev-backend-sub002/pkg/utils/cmp"
)

// ListAttribute is a homogeneous ordered sequence: every element is
// validated as the same leaf type, sharing one set of type-specific
// parameters (one min/max for a list of bounded integers, and so on).
//
// Its wire tag is the element tag with a "List" suffix, e.g. "StringList".
type ListAttribute struct {
	elementTypeName string

	// probe is a null instance of the element type. It exists to validate
	// and canonicalize the shared parameters, even for empty lists.
	probe Attribute

	elements []Attribute
	null     bool
}

func NewAttributeList(elementTypeName string, value any, allowNull bool, params map[string]any) (*ListAttribute, error) {
	return newAttributeList(elementTypeName, value, allowNull, params, false)
}

func newAttributeList(elementTypeName string, value any, allowNull bool, params map[string]any, permissive bool) (*ListAttribute, error) {
	ctor, ok := leafRegistry[elementTypeName]
	if !ok {
		return nil, &UnknownTypeError{TypeName: elementTypeName}
	}
	typeName := elementTypeName + "List"

	probe, err := ctor(nil, true, params, permissive)
	if err != nil {
		return nil, err
	}
	a := &ListAttribute{elementTypeName: elementTypeName, probe: probe}

	if value == nil {
		if !allowNull {
			return nil, &NullValueError{TypeName: typeName}
		}
		a.null = true
		return a, nil
	}

	var raw []any
	switch v := value.(type) {
	case []any:
		raw = v
	case []string:
		for _, s := range v {
			raw = append(raw, s)
		}
	default:
		return nil, &InvalidValueError{TypeName: typeName, Value: value, Reason: "not a list"}
	}

	elements := make([]Attribute, 0, len(raw))
	for i, entry := range raw {
		el, err := ctor(entry, false, params, permissive)
		if err != nil {
			return nil, fmt.Errorf("element %d (%v): %w", i, entry, err)
		}
		elements = append(elements, el)
	}
	a.elements = elements
	return a, nil
}

func (a *ListAttribute) TypeName() string { return a.elementTypeName + "List" }

func (a *ListAttribute) Value() any {
	if a.null {
		return nil
	}
	return utils.Map(a.elements, func(e Attribute) any { return e.Value() })
}

// Elements returns the validated members in order.
func (a *ListAttribute) Elements() []Attribute {
	return append([]Attribute(nil), a.elements...)
}

func (a *ListAttribute) Equal(o Attribute) bool {
	b, ok := o.(*ListAttribute)
	return ok &&
		a.elementTypeName == b.elementTypeName &&
		a.null == b.null &&
		a.probe.Equal(b.probe) &&
		cmp.SliceEqWith(a.elements, b.elements, Attribute.Equal)
}

func (a *ListAttribute) ToMap() map[string]any {
	m := a.probe.ToMap()
	m[KeyAttributeType] = a.TypeName()
	m[KeyValue] = a.Value()
	return m
}

func (a *ListAttribute) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToMap()) }

func (a *ListAttribute) MarshalYAML() (any, error) { return a.ToMap(), nil }

func (a *ListAttribute) String() string { return attrString(a) }
