package operations

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	ds "github.com/web-mev/mev-backend-sub002/pkg/datastructures"
)

// Wire keys of input/output entries.
const (
	KeyRequired  = "required"
	KeyConverter = "converter"
	KeySpec      = "spec"
	KeyDefault   = "default"
)

// InputOutputSpec describes the shape of one tool parameter: an attribute
// without a mandatory value, plus an optional default.
//
// A supplied default is validated at spec-authoring time exactly as a
// submitted value would be at run time; when no default is given, the spec
// holds a validated null placeholder instead. Defaults may be compound
// (an empty ObservationSet is a common one).
type InputOutputSpec struct {
	attr       ds.Attribute
	hasDefault bool
}

// NewInputOutputSpec builds a spec from its wire form:
//
//	{"attribute_type": <tag>, <tag-specific keys>..., "default"?: <any>}
func NewInputOutputSpec(raw map[string]any) (*InputOutputSpec, error) {
	body := map[string]any{}
	for k, v := range raw {
		body[k] = v
	}

	// spec documents carry "default", never "value".
	if _, ok := body[ds.KeyValue]; ok {
		return nil, &ds.StructuralError{Extra: []string{ds.KeyValue}}
	}

	def, hasDefault := body[KeyDefault]
	delete(body, KeyDefault)

	// The default (or an explicit null placeholder) plays the value role.
	body[ds.KeyValue] = def
	if !hasDefault {
		body[ds.KeyValue] = nil
	}

	attr, err := ds.ConstructWith(body, ds.ConstructOptions{AllowNull: !hasDefault})
	if err != nil {
		return nil, err
	}
	return &InputOutputSpec{attr: attr, hasDefault: hasDefault}, nil
}

func (s *InputOutputSpec) TypeName() string { return s.attr.TypeName() }

// Attribute returns the validated default-or-placeholder instance.
func (s *InputOutputSpec) Attribute() ds.Attribute { return s.attr }

// Default returns the validated default value, and whether one was
// declared at all.
func (s *InputOutputSpec) Default() (any, bool) {
	if !s.hasDefault {
		return nil, false
	}
	return s.attr.Value(), true
}

// CheckValue validates candidate against this spec, as if it had been the
// spec's value. ignoreExtraKeys tolerates decorative keys the caller side
// is known to attach.
func (s *InputOutputSpec) CheckValue(candidate any, allowNull bool, ignoreExtraKeys bool) error {
	m := s.attr.ToMap()
	m[ds.KeyValue] = candidate
	_, err := ds.ConstructWith(m, ds.ConstructOptions{
		AllowNull:       allowNull,
		IgnoreExtraKeys: ignoreExtraKeys,
	})
	return err
}

// Equal compares the validated instances. A spec with a default never
// equals one without, even if everything else matches.
func (s *InputOutputSpec) Equal(o *InputOutputSpec) bool {
	return s.hasDefault == o.hasDefault && s.attr.Equal(o.attr)
}

// ToMap emits the wire form: the placeholder value is stripped, the
// type-specific parameters stay, and the default is re-added when one was
// declared.
func (s *InputOutputSpec) ToMap() map[string]any {
	m := s.attr.ToMap()
	v := m[ds.KeyValue]
	delete(m, ds.KeyValue)
	if s.hasDefault {
		m[KeyDefault] = v
	}
	return m
}

func (s *InputOutputSpec) MarshalJSON() ([]byte, error) { return json.Marshal(s.ToMap()) }

func (s *InputOutputSpec) MarshalYAML() (any, error) { return s.ToMap(), nil }

func (s *InputOutputSpec) UnmarshalJSON(b []byte) error {
	m, err := ds.DecodeMap(b)
	if err != nil {
		return err
	}
	parsed, err := NewInputOutputSpec(m)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

func (s *InputOutputSpec) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return err
	}
	parsed, err := NewInputOutputSpec(m)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

func (s *InputOutputSpec) String() string {
	if s.hasDefault {
		return fmt.Sprintf("Spec[%s default=%v]", s.TypeName(), s.attr.Value())
	}
	return "Spec[" + s.TypeName() + "]"
}
