package operations

import (
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	ds "github.com/web-mev/mev-backend-sub002/pkg/datastructures"
	"github.com/web-mev/mev-backend-sub002/pkg/utils"
	"github.com/web-mev/mev-backend-sub002/pkg/utils/cmp"
)

// IOEntry is one named input or output of a tool: whether a value must be
// supplied, the converter used to hand the value to the runner (an opaque
// reference, not interpreted here), and the spec of acceptable values.
type IOEntry struct {
	Required  bool
	Converter string
	Spec      *InputOutputSpec
}

var ioEntryKeys = []string{KeyRequired, KeyConverter, KeySpec}

// NewIOEntry builds an entry from its wire form. Exactly the keys
// {required, converter, spec} are accepted; anything missing or extra is
// named in the error.
func NewIOEntry(raw any) (*IOEntry, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &ds.StructuralError{Reason: "an input/output entry is not a mapping"}
	}
	if err := exactKeys(m, ioEntryKeys); err != nil {
		return nil, err
	}

	required, err := ds.ParseBoolLike(m[KeyRequired])
	if err != nil {
		return nil, fmt.Errorf("%q: %w", KeyRequired, err)
	}

	converter, ok := m[KeyConverter].(string)
	if !ok {
		return nil, &ds.StructuralError{
			Reason: fmt.Sprintf("%q is not a string", KeyConverter),
		}
	}

	rawSpec, ok := m[KeySpec].(map[string]any)
	if !ok {
		return nil, &ds.StructuralError{
			Reason: fmt.Sprintf("%q is not a mapping", KeySpec),
		}
	}
	spec, err := NewInputOutputSpec(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", KeySpec, err)
	}

	return &IOEntry{Required: required, Converter: converter, Spec: spec}, nil
}

// CheckValue validates a submitted value against the entry's spec. A null
// passes exactly when the entry is not required. ignoreExtraKeys tolerates
// decorative keys (say, a frontend color hint) instead of rejecting them.
func (e *IOEntry) CheckValue(candidate any, ignoreExtraKeys bool) error {
	return e.Spec.CheckValue(candidate, !e.Required, ignoreExtraKeys)
}

func (e *IOEntry) Equal(o *IOEntry) bool {
	return e.Required == o.Required &&
		e.Converter == o.Converter &&
		e.Spec.Equal(o.Spec)
}

func (e *IOEntry) ToMap() map[string]any {
	return map[string]any{
		KeyRequired:  e.Required,
		KeyConverter: e.Converter,
		KeySpec:      e.Spec.ToMap(),
	}
}

func (e *IOEntry) MarshalJSON() ([]byte, error) { return json.Marshal(e.ToMap()) }

func (e *IOEntry) MarshalYAML() (any, error) { return e.ToMap(), nil }

func (e *IOEntry) UnmarshalJSON(b []byte) error {
	m, err := ds.DecodeMap(b)
	if err != nil {
		return err
	}
	parsed, err := NewIOEntry(m)
	if err != nil {
		return err
	}
	*e = *parsed
	return nil
}

func (e *IOEntry) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return err
	}
	parsed, err := NewIOEntry(m)
	if err != nil {
		return err
	}
	*e = *parsed
	return nil
}

// IOCollection is the full set of named inputs (or outputs) of a tool.
type IOCollection map[string]*IOEntry

// NewIOCollection builds a collection from a mapping of entry name to
// entry description. The first malformed entry fails the whole
// collection, with its name attached.
func NewIOCollection(raw any) (IOCollection, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &ds.StructuralError{Reason: "not a mapping of entries"}
	}

	out := IOCollection{}
	for _, name := range utils.SortedKeysOf(m) {
		entry, err := NewIOEntry(m[name])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		out[name] = entry
	}
	return out, nil
}

func (c IOCollection) Equal(o IOCollection) bool {
	return cmp.MapEqual(map[string]*IOEntry(c), map[string]*IOEntry(o))
}

func (c IOCollection) ToMap() map[string]any {
	m := map[string]any{}
	for name, entry := range c {
		m[name] = entry.ToMap()
	}
	return m
}

// exactKeys checks that m holds exactly the wanted keys, reporting every
// missing and extra key at once.
func exactKeys(m map[string]any, want []string) error {
	missing := []string{}
	for _, k := range want {
		if _, ok := m[k]; !ok {
			missing = append(missing, k)
		}
	}
	extra := []string{}
	for k := range m {
		if !slices.Contains(want, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)

	if 0 < len(missing) || 0 < len(extra) {
		return &ds.StructuralError{Missing: missing, Extra: extra}
	}
	return nil
}
