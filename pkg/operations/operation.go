// Package operations implements the declared contract of an analysis
// tool: the specs of its inputs and outputs, and the operation document
// that bundles them with the tool's repository metadata.
//
// Like the attribute system underneath it, this package validates plain
// nested key-value structures, decoded from JSON or YAML elsewhere, and
// performs no I/O of its own.
package operations

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	ds "github.com/web-mev/mev-backend-sub002/pkg/datastructures"
)

// Wire keys of an operation document.
const (
	KeyId                 = "id"
	KeyName               = "name"
	KeyDescription        = "description"
	KeyMode               = "mode"
	KeyRepositoryUrl      = "repository_url"
	KeyRepositoryName     = "repository_name"
	KeyGitHash            = "git_hash"
	KeyWorkspaceOperation = "workspace_operation"
	KeyInputs             = "inputs"
	KeyOutputs            = "outputs"
)

var operationKeys = []string{
	KeyId, KeyName, KeyDescription, KeyMode,
	KeyRepositoryUrl, KeyRepositoryName, KeyGitHash,
	KeyWorkspaceOperation, KeyInputs, KeyOutputs,
}

// Operation is the full declared contract of one analysis tool. The mode
// string selects a runner in the surrounding application; it is carried,
// not interpreted.
type Operation struct {
	Id                 uuid.UUID
	Name               string
	Description        string
	Mode               string
	RepositoryUrl      string
	RepositoryName     string
	GitHash            string
	WorkspaceOperation bool
	Inputs             IOCollection
	Outputs            IOCollection
}

// NewOperation builds an operation from its wire form. Exactly the fixed
// key set is accepted; a mismatched input names every missing and extra
// key in one error.
func NewOperation(raw map[string]any) (*Operation, error) {
	if err := exactKeys(raw, operationKeys); err != nil {
		return nil, err
	}

	rawId, ok := raw[KeyId].(string)
	if !ok {
		return nil, &ds.StructuralError{Reason: fmt.Sprintf("%q is not a string", KeyId)}
	}
	id, err := uuid.Parse(rawId)
	if err != nil {
		return nil, &ds.InvalidValueError{
			TypeName: "Operation", Value: rawId, Reason: "not a UUID",
		}
	}

	op := &Operation{Id: id}

	for key, dst := range map[string]*string{
		KeyName:           &op.Name,
		KeyDescription:    &op.Description,
		KeyMode:           &op.Mode,
		KeyRepositoryUrl:  &op.RepositoryUrl,
		KeyRepositoryName: &op.RepositoryName,
		KeyGitHash:        &op.GitHash,
	} {
		s, ok := raw[key].(string)
		if !ok {
			return nil, &ds.StructuralError{Reason: fmt.Sprintf("%q is not a string", key)}
		}
		*dst = s
	}

	workspace, err := ds.ParseBoolLike(raw[KeyWorkspaceOperation])
	if err != nil {
		return nil, fmt.Errorf("%q: %w", KeyWorkspaceOperation, err)
	}
	op.WorkspaceOperation = workspace

	inputs, err := NewIOCollection(raw[KeyInputs])
	if err != nil {
		return nil, fmt.Errorf("%q: %w", KeyInputs, err)
	}
	op.Inputs = inputs

	outputs, err := NewIOCollection(raw[KeyOutputs])
	if err != nil {
		return nil, fmt.Errorf("%q: %w", KeyOutputs, err)
	}
	op.Outputs = outputs

	return op, nil
}

func (op *Operation) Equal(o *Operation) bool {
	return op.Id == o.Id &&
		op.Name == o.Name &&
		op.Description == o.Description &&
		op.Mode == o.Mode &&
		op.RepositoryUrl == o.RepositoryUrl &&
		op.RepositoryName == o.RepositoryName &&
		op.GitHash == o.GitHash &&
		op.WorkspaceOperation == o.WorkspaceOperation &&
		op.Inputs.Equal(o.Inputs) &&
		op.Outputs.Equal(o.Outputs)
}

func (op *Operation) ToMap() map[string]any {
	return map[string]any{
		KeyId:                 op.Id.String(),
		KeyName:               op.Name,
		KeyDescription:        op.Description,
		KeyMode:               op.Mode,
		KeyRepositoryUrl:      op.RepositoryUrl,
		KeyRepositoryName:     op.RepositoryName,
		KeyGitHash:            op.GitHash,
		KeyWorkspaceOperation: op.WorkspaceOperation,
		KeyInputs:             op.Inputs.ToMap(),
		KeyOutputs:            op.Outputs.ToMap(),
	}
}

func (op *Operation) MarshalJSON() ([]byte, error) { return json.Marshal(op.ToMap()) }

func (op *Operation) MarshalYAML() (any, error) { return op.ToMap(), nil }

func (op *Operation) UnmarshalJSON(b []byte) error {
	m, err := ds.DecodeMap(b)
	if err != nil {
		return err
	}
	parsed, err := NewOperation(m)
	if err != nil {
		return err
	}
	*op = *parsed
	return nil
}

func (op *Operation) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return err
	}
	parsed, err := NewOperation(m)
	if err != nil {
		return err
	}
	*op = *parsed
	return nil
}

func (op *Operation) String() string {
	return fmt.Sprintf("Operation[%s %s]", op.Id, op.Name)
}
