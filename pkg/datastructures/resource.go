package datastructures

import (
	"encoding/json"
	"slices"

	"github.com/google/uuid"
	"github.com/web-mev/mev-backend-sub002/pkg/utils"
	"github.com/web-mev/mev-backend-sub002/pkg/utils/cmp"
)

// DataResourceAttribute backs DataResource and OperationDataResource: a
// reference (or references) to stored files, identified by UUID.
//
// The resource type it declares is carried verbatim; whether it names a
// valid type is the caller's domain and is checked separately with
// CheckResourceTypes.
type DataResourceAttribute struct {
	typeName     string
	value        []uuid.UUID // nil when null
	many         bool
	resourceType string // "" when not declared
}

func NewDataResourceAttribute(value any, many bool, resourceType string, allowNull bool) (*DataResourceAttribute, error) {
	return newResourceRef(TypeDataResource, value, many, resourceType, allowNull)
}

func NewOperationDataResourceAttribute(value any, many bool, resourceType string, allowNull bool) (*DataResourceAttribute, error) {
	return newResourceRef(TypeOperationDataResource, value, many, resourceType, allowNull)
}

func newResourceRef(typeName string, value any, many bool, resourceType string, allowNull bool) (*DataResourceAttribute, error) {
	a := &DataResourceAttribute{typeName: typeName, many: many, resourceType: resourceType}

	if value == nil {
		if !allowNull {
			return nil, &NullValueError{TypeName: typeName}
		}
		return a, nil
	}

	ids, err := parseUUIDs(typeName, value, many)
	if err != nil {
		return nil, err
	}
	a.value = ids
	return a, nil
}

// parseUUIDs accepts a single UUID string or a list of them.
func parseUUIDs(typeName string, value any, many bool) ([]uuid.UUID, error) {
	var raw []any
	switch v := value.(type) {
	case string:
		raw = []any{v}
	case []string:
		for _, s := range v {
			raw = append(raw, s)
		}
	case []any:
		raw = v
	default:
		return nil, &InvalidValueError{
			TypeName: typeName, Value: value,
			Reason: "not a UUID or list of UUIDs",
		}
	}

	// a non-null reference names at least one resource; "no resources"
	// is spelled as null, not as an empty list.
	if len(raw) == 0 {
		return nil, &InvalidValueError{
			TypeName: typeName, Value: value,
			Reason: "at least one resource is expected",
		}
	}
	if !many && 1 < len(raw) {
		return nil, &InvalidValueError{
			TypeName: typeName, Value: value,
			Reason: "a single resource is expected",
		}
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, entry := range raw {
		s, ok := entry.(string)
		if !ok {
			return nil, &InvalidValueError{TypeName: typeName, Value: entry, Reason: "not a UUID"}
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, &InvalidValueError{TypeName: typeName, Value: entry, Reason: "not a UUID"}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (a *DataResourceAttribute) TypeName() string { return a.typeName }

func (a *DataResourceAttribute) Many() bool { return a.many }

// Value returns the UUID as a string, or a list of strings when the
// attribute refers to many resources. nil when null.
func (a *DataResourceAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	if !a.many {
		return a.value[0].String()
	}
	return utils.Map(a.value, uuid.UUID.String)
}

// UUIDs returns the referenced ids in declaration order.
func (a *DataResourceAttribute) UUIDs() []uuid.UUID {
	return append([]uuid.UUID(nil), a.value...)
}

func (a *DataResourceAttribute) ResourceTypes() []string {
	if a.resourceType == "" {
		return nil
	}
	return []string{a.resourceType}
}

// CheckResourceTypes verifies the declared resource type against the
// caller-owned vocabulary.
func (a *DataResourceAttribute) CheckResourceTypes(allowed []string) error {
	return checkResourceTypes(a.ResourceTypes(), allowed)
}

func (a *DataResourceAttribute) Equal(o Attribute) bool {
	b, ok := o.(*DataResourceAttribute)
	return ok &&
		a.typeName == b.typeName &&
		a.many == b.many &&
		a.resourceType == b.resourceType &&
		cmp.SliceEq(a.value, b.value)
}

func (a *DataResourceAttribute) ToMap() map[string]any {
	m := map[string]any{
		KeyAttributeType: a.typeName,
		KeyValue:         a.Value(),
		KeyMany:          a.many,
	}
	if a.resourceType != "" {
		m[KeyResourceType] = a.resourceType
	}
	return m
}

func (a *DataResourceAttribute) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToMap()) }

func (a *DataResourceAttribute) MarshalYAML() (any, error) { return a.ToMap(), nil }

func (a *DataResourceAttribute) String() string { return attrString(a) }

// VariableDataResourceAttribute is a resource reference whose stored file
// may be of any one of several declared resource types.
type VariableDataResourceAttribute struct {
	value         []uuid.UUID
	many          bool
	resourceTypes []string
}

func NewVariableDataResourceAttribute(value any, many bool, resourceTypes []string, allowNull bool) (*VariableDataResourceAttribute, error) {
	if len(resourceTypes) == 0 {
		return nil, &InvalidParameterError{
			TypeName: TypeVariableDataResource, Param: KeyResourceTypes, Value: resourceTypes,
			Reason: "at least one resource type is required",
		}
	}

	a := &VariableDataResourceAttribute{
		many:          many,
		resourceTypes: append([]string(nil), resourceTypes...),
	}

	if value == nil {
		if !allowNull {
			return nil, &NullValueError{TypeName: TypeVariableDataResource}
		}
		return a, nil
	}

	ids, err := parseUUIDs(TypeVariableDataResource, value, many)
	if err != nil {
		return nil, err
	}
	a.value = ids
	return a, nil
}

func (a *VariableDataResourceAttribute) TypeName() string { return TypeVariableDataResource }

func (a *VariableDataResourceAttribute) Many() bool { return a.many }

func (a *VariableDataResourceAttribute) Value() any {
	if a.value == nil {
		return nil
	}
	if !a.many {
		return a.value[0].String()
	}
	return utils.Map(a.value, uuid.UUID.String)
}

func (a *VariableDataResourceAttribute) UUIDs() []uuid.UUID {
	return append([]uuid.UUID(nil), a.value...)
}

func (a *VariableDataResourceAttribute) ResourceTypes() []string {
	return append([]string(nil), a.resourceTypes...)
}

func (a *VariableDataResourceAttribute) CheckResourceTypes(allowed []string) error {
	return checkResourceTypes(a.resourceTypes, allowed)
}

func (a *VariableDataResourceAttribute) Equal(o Attribute) bool {
	b, ok := o.(*VariableDataResourceAttribute)
	return ok &&
		a.many == b.many &&
		cmp.SliceEq(a.resourceTypes, b.resourceTypes) &&
		cmp.SliceEq(a.value, b.value)
}

func (a *VariableDataResourceAttribute) ToMap() map[string]any {
	return map[string]any{
		KeyAttributeType: TypeVariableDataResource,
		KeyValue:         a.Value(),
		KeyMany:          a.many,
		KeyResourceTypes: a.ResourceTypes(),
	}
}

func (a *VariableDataResourceAttribute) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToMap()) }

func (a *VariableDataResourceAttribute) MarshalYAML() (any, error) { return a.ToMap(), nil }

func (a *VariableDataResourceAttribute) String() string { return attrString(a) }

func checkResourceTypes(declared, allowed []string) error {
	offending := []string{}
	for _, rt := range declared {
		if !slices.Contains(allowed, rt) {
			offending = append(offending, rt)
		}
	}
	if 0 < len(offending) {
		return &InvalidResourceTypeError{Types: offending}
	}
	return nil
}

// CheckResourceTypes applies the resource-type vocabulary check to any
// attribute. Attributes which do not reference resources pass trivially.
func CheckResourceTypes(a Attribute, allowed []string) error {
	if r, ok := a.(interface{ CheckResourceTypes([]string) error }); ok {
		return r.CheckResourceTypes(allowed)
	}
	return nil
}
