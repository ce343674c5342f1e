// Package intrinsic implements C2, the evaluator for the three template
// intrinsic functions (get_input, get_property, get_attribute). It depends
// only on internal/template for the IntrinsicRef types; the node/attribute
// lookups it needs are expressed as a narrow Environment interface so that
// internal/runtime can depend on intrinsic without intrinsic depending back
// on runtime.
package intrinsic

import (
	"fmt"

	"github.com/alexisbeaulieu97/orchestra/internal/template"
	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

// TargetNode is the narrow view of a sibling node the evaluator needs to
// resolve GetProperty/GetAttribute references against.
type TargetNode interface {
	Provisioned() bool
	MaterializedProperty(name string) (any, bool, error)
	AttributeValue(name string) (any, bool)
}

// Environment is what an evaluation runs against: the bound input values,
// the template's input declarations, and a way to look up sibling nodes by
// name.
type Environment interface {
	BoundInput(name string) (any, bool)
	InputDefinition(name string) (template.TemplateInput, bool)
	NodeByName(name string) (TargetNode, bool)
}

// degraded, when true, makes a GetAttribute reference against an
// unprovisioned node resolve to nil instead of failing. spec.md §4.3 calls
// for this during property re-materialization (pre-deployment validation
// must be able to complete even though no node is provisioned yet); C7's
// process_output path sets degraded=false since NodeNotProvisioned must
// surface there.
func Evaluate(ref template.IntrinsicRef, env Environment, degraded bool) (any, error) {
	switch r := ref.(type) {
	case template.GetInput:
		return evaluateGetInput(r, env)
	case template.GetProperty:
		return evaluateGetProperty(r, env)
	case template.GetAttribute:
		return evaluateGetAttribute(r, env, degraded)
	default:
		return nil, fmt.Errorf("intrinsic: unknown reference type %T", ref)
	}
}

func evaluateGetInput(ref template.GetInput, env Environment) (any, error) {
	if v, ok := env.BoundInput(ref.InputName); ok {
		return v, nil
	}

	decl, ok := env.InputDefinition(ref.InputName)
	if !ok {
		return nil, streamyerrors.NewMissingRequiredInputError(ref.InputName)
	}
	if decl.HasValue {
		return decl.Default, nil
	}
	if decl.Required {
		return nil, streamyerrors.NewMissingRequiredInputError(ref.InputName)
	}
	return decl.Type.ZeroValue(), nil
}

func evaluateGetProperty(ref template.GetProperty, env Environment) (any, error) {
	target, ok := env.NodeByName(ref.NodeTemplateName)
	if !ok {
		return nil, streamyerrors.NewInvalidReferenceError(ref.NodeTemplateName)
	}
	value, found, err := target.MaterializedProperty(ref.PropertyName)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, streamyerrors.NewUnknownPropertyError(ref.NodeTemplateName, ref.PropertyName)
	}
	return value, nil
}

func evaluateGetAttribute(ref template.GetAttribute, env Environment, degraded bool) (any, error) {
	target, ok := env.NodeByName(ref.NodeTemplateName)
	if !ok {
		return nil, streamyerrors.NewInvalidReferenceError(ref.NodeTemplateName)
	}
	if !target.Provisioned() {
		if degraded {
			return nil, nil
		}
		return nil, streamyerrors.NewNodeNotProvisionedError(ref.NodeTemplateName)
	}
	value, found := target.AttributeValue(ref.AttributeName)
	if !found {
		return nil, streamyerrors.NewUnknownAttributeError(ref.NodeTemplateName, ref.AttributeName)
	}
	return value, nil
}
