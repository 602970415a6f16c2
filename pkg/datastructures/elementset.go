package datastructures

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/web-mev/mev-backend-sub002/pkg/utils"
	"github.com/web-mev/mev-backend-sub002/pkg/utils/cmp"
)

// ElementSet is a deduplicated collection of Elements, keyed by element
// id. ObservationSet and FeatureSet are its two wire forms.
//
// Unlike a native set, a duplicated id is never silently dropped: it is an
// error, both at construction and on Add.
type ElementSet struct {
	typeName string
	multiple bool
	elements map[string]*Element
	null     bool
}

func NewObservationSet(raw any) (*ElementSet, error) {
	return newElementSet(TypeObservationSet, raw, false)
}

func NewFeatureSet(raw any) (*ElementSet, error) {
	return newElementSet(TypeFeatureSet, raw, false)
}

// NewElementSetOf builds a set directly from already-validated elements.
// Every element must carry the set's element tag.
func NewElementSetOf(typeName string, elements []*Element, multiple bool) (*ElementSet, error) {
	s := &ElementSet{typeName: typeName, multiple: multiple, elements: map[string]*Element{}}
	memberTag, err := memberTypeOf(typeName)
	if err != nil {
		return nil, err
	}
	for _, el := range elements {
		if el.TypeName() != memberTag {
			return nil, &StructuralError{
				Reason: fmt.Sprintf("%s cannot hold a %s", typeName, el.TypeName()),
			}
		}
		if err := s.Add(el); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func memberTypeOf(setTypeName string) (string, error) {
	switch setTypeName {
	case TypeObservationSet:
		return TypeObservation, nil
	case TypeFeatureSet:
		return TypeFeature, nil
	}
	return "", &UnknownTypeError{TypeName: setTypeName}
}

// newElementSet builds a set from its wire form:
//
//	{"multiple": <bool-like>, "elements": [<element>, ...]}
//
// "multiple" defaults to true when omitted.
func newElementSet(typeName string, raw any, permissive bool) (*ElementSet, error) {
	memberTag, err := memberTypeOf(typeName)
	if err != nil {
		return nil, err
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &StructuralError{Reason: fmt.Sprintf("%s: not a mapping", typeName)}
	}
	body := copyMap(m)

	multiple := true
	if rawMultiple, ok := body[KeyMultiple]; ok {
		delete(body, KeyMultiple)
		multiple, err = ParseBoolLike(rawMultiple)
		if err != nil {
			return nil, &InvalidParameterError{
				TypeName: typeName, Param: KeyMultiple, Value: rawMultiple,
				Reason: "not a recognized boolean encoding",
			}
		}
	}

	rawElements, ok := body[KeyElements]
	if !ok {
		return nil, &StructuralError{Reason: typeName, Missing: []string{KeyElements}}
	}
	delete(body, KeyElements)

	entries, ok := rawElements.([]any)
	if !ok {
		return nil, &StructuralError{
			Reason: fmt.Sprintf("%s: %q is not a list", typeName, KeyElements),
		}
	}

	if 0 < len(body) && !permissive {
		return nil, &StructuralError{Reason: typeName, Extra: utils.SortedKeysOf(body)}
	}

	s := &ElementSet{typeName: typeName, multiple: multiple, elements: map[string]*Element{}}
	for i, entry := range entries {
		el, err := newElement(memberTag, entry, permissive)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if err := s.Add(el); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func nullElementSet(typeName string) *ElementSet {
	return &ElementSet{typeName: typeName, null: true}
}

func (s *ElementSet) TypeName() string { return s.typeName }

func (s *ElementSet) Multiple() bool { return s.multiple }

func (s *ElementSet) Len() int { return len(s.elements) }

// Value implements Attribute. A non-null set is its own payload.
func (s *ElementSet) Value() any {
	if s.null {
		return nil
	}
	return s
}

func (s *ElementSet) Get(id string) (*Element, bool) {
	el, ok := s.elements[id]
	return el, ok
}

// Slice returns the members ordered by id.
func (s *ElementSet) Slice() []*Element {
	return utils.Map(
		utils.SortedKeysOf(s.elements),
		func(id string) *Element { return s.elements[id] },
	)
}

// Add puts el into the set. It fails when the set permits a single
// element and already has one, or when the id is already present.
func (s *ElementSet) Add(el *Element) error {
	if !s.multiple && 1 <= len(s.elements) {
		return &InvalidValueError{
			TypeName: s.typeName, Value: el.Id(),
			Reason: "the set permits a single element only",
		}
	}
	if _, exists := s.elements[el.Id()]; exists {
		return &StructuralError{
			Reason: fmt.Sprintf("%s: duplicated element id: %q", s.typeName, el.Id()),
		}
	}
	if s.elements == nil {
		s.elements = map[string]*Element{}
	}
	s.elements[el.Id()] = el
	return nil
}

// mergeElements unions the attribute maps of two same-id elements. A name
// carried by both sides must have the same value on both; otherwise the
// merge fails with a ConflictError instead of guessing.
func mergeElements(a, b *Element) (*Element, error) {
	merged := maps.Clone(a.attributes)
	if merged == nil {
		merged = map[string]Attribute{}
	}
	for name, vb := range b.attributes {
		if va, ok := merged[name]; ok {
			if !va.Equal(vb) {
				return nil, &ConflictError{Attribute: name, A: va, B: vb}
			}
			continue
		}
		merged[name] = vb
	}
	return &Element{typeName: a.typeName, id: a.id, attributes: merged}, nil
}

// Intersection returns a merged element for every id present in both
// sets, ordered by id.
func (s *ElementSet) Intersection(o *ElementSet) ([]*Element, error) {
	out := []*Element{}
	for _, id := range utils.SortedKeysOf(s.elements) {
		counterpart, ok := o.elements[id]
		if !ok {
			continue
		}
		merged, err := mergeElements(s.elements[id], counterpart)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", id, err)
		}
		out = append(out, merged)
	}
	return out, nil
}

// Union returns every element of either set, ordered by id. Ids present
// on both sides are merged with the same conflict rule as Intersection.
func (s *ElementSet) Union(o *ElementSet) ([]*Element, error) {
	ids := map[string]struct{}{}
	for id := range s.elements {
		ids[id] = struct{}{}
	}
	for id := range o.elements {
		ids[id] = struct{}{}
	}

	out := []*Element{}
	for _, id := range utils.SortedKeysOf(ids) {
		mine, inMine := s.elements[id]
		theirs, inTheirs := o.elements[id]
		switch {
		case inMine && inTheirs:
			merged, err := mergeElements(mine, theirs)
			if err != nil {
				return nil, fmt.Errorf("element %q: %w", id, err)
			}
			out = append(out, merged)
		case inMine:
			out = append(out, mine)
		default:
			out = append(out, theirs)
		}
	}
	return out, nil
}

// Difference returns the elements of s absent from o, ordered by id. The
// operands are not interchangeable: s.Difference(o) and o.Difference(s)
// differ in general.
//
// With ignoreAttributes, membership is judged by id alone, consistent
// with Element identity; this is the usual mode, matching Intersection
// and Union. Without it, an element is subtracted only when o holds an
// element with the same id and the same attributes.
func (s *ElementSet) Difference(o *ElementSet, ignoreAttributes bool) []*Element {
	out := []*Element{}
	for _, id := range utils.SortedKeysOf(s.elements) {
		el := s.elements[id]
		counterpart, ok := o.elements[id]
		if !ok {
			out = append(out, el)
			continue
		}
		if !ignoreAttributes && !cmp.MapEqual(el.attributes, counterpart.attributes) {
			out = append(out, el)
		}
	}
	return out
}

// Equal implements Attribute. Sets compare by cardinality constraint and
// member identity, independent of iteration order; member attributes do
// not take part, consistent with Element identity.
func (s *ElementSet) Equal(o Attribute) bool {
	t, ok := o.(*ElementSet)
	if !ok || s.typeName != t.typeName || s.multiple != t.multiple || s.null != t.null {
		return false
	}
	if len(s.elements) != len(t.elements) {
		return false
	}
	for id, el := range s.elements {
		other, ok := t.elements[id]
		if !ok || !el.Equal(other) {
			return false
		}
	}
	return true
}

func (s *ElementSet) bodyMap() map[string]any {
	return map[string]any{
		KeyMultiple: s.multiple,
		KeyElements: utils.Map(s.Slice(), func(el *Element) any { return el.bodyMap() }),
	}
}

func (s *ElementSet) ToMap() map[string]any {
	m := map[string]any{KeyAttributeType: s.typeName}
	if s.null {
		m[KeyValue] = nil
	} else {
		m[KeyValue] = s.bodyMap()
	}
	return m
}

// MarshalJSON emits the bare set form:
//
//	{"multiple": <bool>, "elements": [...]}
func (s *ElementSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.bodyMap())
}

func (s *ElementSet) MarshalYAML() (any, error) {
	return s.bodyMap(), nil
}

func (s *ElementSet) String() string {
	if s.null {
		return s.typeName + "[null]"
	}
	ids := utils.SortedKeysOf(s.elements)
	out := s.typeName + "{"
	for i, id := range ids {
		if 0 < i {
			out += ", "
		}
		out += id
	}
	return out + "}"
}
