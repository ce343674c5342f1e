// Package template holds the parsed topology document: typed inputs, node
// templates with properties/requirements/capabilities/artifacts, node and
// relationship type definitions, and the intrinsic function references that
// appear inside property/output values. It is the external contract
// spec.md §6 names ("Template contract") — the parser in this package is a
// concrete producer of that contract, not a redefinition of it.
package template

import (
	"fmt"

	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

// InputType enumerates the declared types a TemplateInput may carry.
type InputType string

const (
	TypeString  InputType = "string"
	TypeInteger InputType = "integer"
	TypeFloat   InputType = "float"
	TypeBoolean InputType = "boolean"
	TypeList    InputType = "list"
	TypeMap     InputType = "map"
)

// ZeroValue returns the zero value for a declared input type, per spec.md
// §4.2's GetInput resolution rule for non-required inputs without a
// default. Unknown/custom types fall back to nil.
func (t InputType) ZeroValue() any {
	switch t {
	case TypeString:
		return ""
	case TypeInteger:
		return 0
	case TypeFloat:
		return 0.0
	case TypeBoolean:
		return false
	case TypeList:
		return []any{}
	case TypeMap:
		return map[string]any{}
	default:
		return nil
	}
}

// TemplateInput is a declared input parameter of the topology template.
type TemplateInput struct {
	Name     string
	Type     InputType
	Default  any
	HasValue bool // true when Default was explicitly set in the document
	Required bool
}

// IntrinsicRef is the sum type of template intrinsic functions: get_input,
// get_property, get_attribute.
type IntrinsicRef interface {
	isIntrinsicRef()
}

// GetInput resolves a value from the bound template inputs or their
// declarations.
type GetInput struct {
	InputName string
}

func (GetInput) isIntrinsicRef() {}

// GetProperty resolves a sibling node's materialized property.
type GetProperty struct {
	NodeTemplateName string
	PropertyName     string
}

func (GetProperty) isIntrinsicRef() {}

// GetAttribute resolves a sibling node's runtime attribute view.
type GetAttribute struct {
	NodeTemplateName string
	AttributeName    string
}

func (GetAttribute) isIntrinsicRef() {}

// PropertyValue is a property/output/artifact-field value as written in the
// template: either a literal, an intrinsic reference, or explicitly null.
type PropertyValue struct {
	Literal   any
	Intrinsic IntrinsicRef
	IsNull    bool
}

// InterfaceOperation binds an event name to an implementation reference and
// its static inputs.
type InterfaceOperation struct {
	Implementation string
	Inputs         map[string]any
}

// RequirementDef is a node type's schema-level requirement: the default
// relationship used when a node template's requirement names only a target,
// not an explicit relationship (spec.md §4.4's "related map").
type RequirementDef struct {
	Name         string
	Relationship string
}

// TypeDefinition is a node or relationship type: its Standard/Configure
// interface operations, declared attribute names, and (for node types) its
// requirement schema.
type TypeDefinition struct {
	ID           string
	Standard     map[string]InterfaceOperation
	Configure    map[string]InterfaceOperation
	Attributes   []string
	Requirements []RequirementDef
}

// Capability is a node template's declared capability instance.
type Capability struct {
	Name       string
	Type       string
	Properties map[string]PropertyValue
}

// Requirement is one edge from a node template to a target, with the
// relationship type either stated explicitly or left for the relationship
// dispatcher to resolve from the node type's requirement schema.
type Requirement struct {
	Node                 string
	Relationship         string // "" if not given explicitly in mapping form
	Capability           string
	CapabilityProperties map[string]PropertyValue
}

// Artifact is a named file-like resource attached to a node template.
type Artifact struct {
	Name   string
	Type   string
	Fields map[string]PropertyValue
}

// NodeTemplate is a single vertex of the topology graph.
type NodeTemplate struct {
	Name               string
	TypeID             string
	Properties         map[string]PropertyValue
	Requirements       []Requirement
	Capabilities       []Capability
	Artifacts          []Artifact
	StandardOverrides  map[string]InterfaceOperation // entity_tpl.interfaces.Standard override
	Configure          map[string]InterfaceOperation // rarely set on a node; retained for symmetry with relationship edges defined inline
}

// Output is a declared deployment output.
type Output struct {
	Name  string
	Value PropertyValue
}

// Template is the fully parsed topology document.
type Template struct {
	Inputs            []TemplateInput
	NodeTemplates     []NodeTemplate
	NodeTypes         map[string]TypeDefinition
	RelationshipTypes map[string]TypeDefinition
	Outputs           []Output
}

// NodeTemplateByName looks up a node template by name.
func (t *Template) NodeTemplateByName(name string) (*NodeTemplate, bool) {
	for i := range t.NodeTemplates {
		if t.NodeTemplates[i].Name == name {
			return &t.NodeTemplates[i], true
		}
	}
	return nil, false
}

// InputDefinition looks up a declared template input by name.
func (t *Template) InputDefinition(name string) (TemplateInput, bool) {
	for _, in := range t.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return TemplateInput{}, false
}

// TypeDefinitionFor resolves a node template's type definition.
func (t *Template) TypeDefinitionFor(nt *NodeTemplate) (TypeDefinition, error) {
	def, ok := t.NodeTypes[nt.TypeID]
	if !ok {
		return TypeDefinition{}, streamyerrors.NewValidationError(nt.Name, fmt.Sprintf("unknown node type %q", nt.TypeID), nil)
	}
	return def, nil
}

// EffectiveStandardOperation returns the Standard-interface operation for an
// event, after applying a node template's override (implementation replaced,
// inputs overlaid) per spec.md §4.3.
func (d TypeDefinition) EffectiveStandardOperation(event string, overrides map[string]InterfaceOperation) (InterfaceOperation, bool) {
	base, ok := d.Standard[event]
	override, hasOverride := overrides[event]
	if !ok && !hasOverride {
		return InterfaceOperation{}, false
	}
	if !hasOverride {
		return base, true
	}
	return mergeOverride(base, override), true
}

func mergeOverride(base, override InterfaceOperation) InterfaceOperation {
	impl := base.Implementation
	if override.Implementation != "" {
		impl = override.Implementation
	}
	return InterfaceOperation{
		Implementation: impl,
		Inputs:         overlayInputs(base.Inputs, override.Inputs),
	}
}

// HasAttribute reports whether the type declares the named attribute.
func (d TypeDefinition) HasAttribute(name string) bool {
	for _, a := range d.Attributes {
		if a == name {
			return true
		}
	}
	return false
}
