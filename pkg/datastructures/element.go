package datastructures

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/web-mev/mev-backend-sub002/pkg/utils"
	"github.com/web-mev/mev-backend-sub002/pkg/utils/cmp"
)

// Element is an identified bundle of named attributes. Observations
// (samples) and Features (measured variables) are both Elements; only the
// wire tag differs.
//
// Identity is the id alone: two Elements with the same id are the same
// Element no matter how their attributes differ. Set semantics depend on
// this.
type Element struct {
	typeName   string
	id         string
	attributes map[string]Attribute
	null       bool
}

func NewObservation(raw any) (*Element, error) {
	return newElement(TypeObservation, raw, false)
}

func NewFeature(raw any) (*Element, error) {
	return newElement(TypeFeature, raw, false)
}

// newElement builds an element from its wire form:
//
//	{"id": <identifier>, "attributes": {<name>: <attribute>, ...}}
//
// "attributes" may be omitted. Unrecognized keys are rejected unless the
// construction is permissive.
func newElement(typeName string, raw any, permissive bool) (*Element, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &StructuralError{Reason: fmt.Sprintf("%s: not a mapping", typeName)}
	}
	body := copyMap(m)

	rawId, ok := body[KeyId]
	if !ok {
		return nil, &StructuralError{Reason: typeName, Missing: []string{KeyId}}
	}
	delete(body, KeyId)

	idAttr, err := NewStringAttribute(rawId, false)
	if err != nil {
		return nil, fmt.Errorf("element id: %w", err)
	}
	id := idAttr.Value().(string)

	attributes := map[string]Attribute{}
	if rawAttrs, ok := body[KeyAttributes]; ok {
		delete(body, KeyAttributes)

		am, ok := rawAttrs.(map[string]any)
		if !ok {
			return nil, &StructuralError{
				Reason: fmt.Sprintf("%s: %q is not a mapping", typeName, KeyAttributes),
			}
		}
		for name, rawAttr := range am {
			vm, ok := rawAttr.(map[string]any)
			if !ok {
				return nil, fmt.Errorf(
					"attribute %q: %w", name,
					&StructuralError{Reason: "an attribute description is not a mapping"},
				)
			}
			a, err := constructFrom(vm, leafRegistry, ConstructOptions{AllowNull: true, IgnoreExtraKeys: permissive})
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", name, err)
			}
			attributes[name] = a
		}
	}

	if 0 < len(body) && !permissive {
		return nil, &StructuralError{Reason: typeName, Extra: utils.SortedKeysOf(body)}
	}

	return &Element{typeName: typeName, id: id, attributes: attributes}, nil
}

// nullElement is the placeholder produced when the factory is given an
// explicit null for a compound type.
func nullElement(typeName string) *Element {
	return &Element{typeName: typeName, null: true}
}

func (e *Element) TypeName() string { return e.typeName }

func (e *Element) Id() string { return e.id }

// Value implements Attribute. A non-null element is its own payload.
func (e *Element) Value() any {
	if e.null {
		return nil
	}
	return e
}

// Attributes returns a copy of the attribute mapping. The element itself
// changes only through AddAttribute.
func (e *Element) Attributes() map[string]Attribute {
	return maps.Clone(e.attributes)
}

func (e *Element) GetAttribute(name string) (Attribute, bool) {
	a, ok := e.attributes[name]
	return a, ok
}

// AddAttribute validates raw as a leaf attribute and stores it under name.
// An existing name is refused unless overwrite is set.
func (e *Element) AddAttribute(name string, raw map[string]any, overwrite bool) error {
	if _, exists := e.attributes[name]; exists && !overwrite {
		return &StructuralError{Reason: fmt.Sprintf("attribute %q already exists", name)}
	}
	a, err := constructFrom(raw, leafRegistry, ConstructOptions{AllowNull: true})
	if err != nil {
		return fmt.Errorf("attribute %q: %w", name, err)
	}
	if e.attributes == nil {
		e.attributes = map[string]Attribute{}
	}
	e.attributes[name] = a
	return nil
}

// Equal implements Attribute. Element equality is identity: type and id.
func (e *Element) Equal(o Attribute) bool {
	f, ok := o.(*Element)
	return ok && e.typeName == f.typeName && e.null == f.null && e.id == f.id
}

// Equiv is stricter than Equal: same identity and same attributes.
func (e *Element) Equiv(f *Element) bool {
	return e.Equal(f) && cmp.MapEqual(e.attributes, f.attributes)
}

// bodyMap is the element wire form, without the attribute_type wrapper.
func (e *Element) bodyMap() map[string]any {
	attrs := map[string]any{}
	for name, a := range e.attributes {
		attrs[name] = a.ToMap()
	}
	return map[string]any{KeyId: e.id, KeyAttributes: attrs}
}

func (e *Element) ToMap() map[string]any {
	m := map[string]any{KeyAttributeType: e.typeName}
	if e.null {
		m[KeyValue] = nil
	} else {
		m[KeyValue] = e.bodyMap()
	}
	return m
}

// MarshalJSON emits the bare element form, the shape elements take inside
// a set:
//
//	{"id": ..., "attributes": {...}}
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.bodyMap())
}

func (e *Element) MarshalYAML() (any, error) {
	return e.bodyMap(), nil
}

func (e *Element) String() string {
	if e.null {
		return e.typeName + "[null]"
	}
	return fmt.Sprintf("%s[%s]", e.typeName, e.id)
}
