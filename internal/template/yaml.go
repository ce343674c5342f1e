package template

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

// rawDocument mirrors the on-disk YAML layout, decoded in one pass and then
// converted into the domain types in types.go. Keeping the wire shape
// separate from the domain shape lets UnmarshalYAML live close to the field
// it customizes, the same split the teacher uses between config.Step's
// embedded variants and its UnmarshalYAML override.
type rawDocument struct {
	Inputs            map[string]rawInput           `yaml:"inputs,omitempty"`
	NodeTypes         map[string]rawTypeDefinition   `yaml:"node_types,omitempty"`
	RelationshipTypes map[string]rawTypeDefinition   `yaml:"relationship_types,omitempty"`
	NodeTemplates     map[string]rawNodeTemplate     `yaml:"node_templates"`
	Outputs           map[string]PropertyValue       `yaml:"outputs,omitempty"`
}

type rawInput struct {
	Type     string        `yaml:"type"`
	Default  yaml.Node     `yaml:"default"`
	HasValue bool          `yaml:"-"`
	Required bool          `yaml:"required,omitempty"`
}

func (r *rawInput) UnmarshalYAML(value *yaml.Node) error {
	type alias rawInput
	var a alias
	if err := value.Decode(&a); err != nil {
		return err
	}
	*r = rawInput(a)
	r.HasValue = hasYAMLKey(value, "default")
	return nil
}

type rawInterfaceOp struct {
	Implementation string         `yaml:"implementation,omitempty"`
	Inputs         map[string]any `yaml:"inputs,omitempty"`
}

type rawInterfaces struct {
	Standard  map[string]rawInterfaceOp `yaml:"Standard,omitempty"`
	Configure map[string]rawInterfaceOp `yaml:"Configure,omitempty"`
}

type rawRequirementDef struct {
	Name         string `yaml:"name"`
	Relationship string `yaml:"relationship,omitempty"`
}

type rawTypeDefinition struct {
	Interfaces   rawInterfaces       `yaml:"interfaces,omitempty"`
	Attributes   []string            `yaml:"attributes,omitempty"`
	Requirements []rawRequirementDef `yaml:"requirements,omitempty"`
}

type rawCapability struct {
	Type       string                   `yaml:"type,omitempty"`
	Properties map[string]PropertyValue `yaml:"properties,omitempty"`
}

// rawRequirement captures either the bare-string form ("target_name") or the
// mapping form ({node, relationship, capability}) of a requirement entry.
type rawRequirement struct {
	Node                 string
	Relationship         string
	Capability           string
	CapabilityProperties map[string]PropertyValue
}

func (r *rawRequirement) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.Node = value.Value
		return nil
	}

	var mapped struct {
		Node         string `yaml:"node"`
		Relationship string `yaml:"relationship,omitempty"`
		Capability   struct {
			Type       string                   `yaml:"type,omitempty"`
			Properties map[string]PropertyValue `yaml:"properties,omitempty"`
		} `yaml:"capability,omitempty"`
	}
	if err := value.Decode(&mapped); err != nil {
		return err
	}
	r.Node = mapped.Node
	r.Relationship = mapped.Relationship
	r.Capability = mapped.Capability.Type
	r.CapabilityProperties = mapped.Capability.Properties
	return nil
}

type rawArtifact struct {
	Type   string                   `yaml:"type,omitempty"`
	Fields map[string]PropertyValue `yaml:",inline"`
}

type rawNodeTemplate struct {
	Type         string                   `yaml:"type"`
	Properties   map[string]PropertyValue `yaml:"properties,omitempty"`
	Requirements []rawRequirement         `yaml:"requirements,omitempty"`
	Capabilities map[string]rawCapability `yaml:"capabilities,omitempty"`
	Artifacts    map[string]rawArtifact   `yaml:"artifacts,omitempty"`
	Interfaces   rawInterfaces            `yaml:"interfaces,omitempty"`
}

// UnmarshalYAML decodes a PropertyValue: null, a get_input/get_property/
// get_attribute mapping, or a literal scalar/list/map.
func (p *PropertyValue) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		p.IsNull = true
		return nil
	}

	if value.Kind == yaml.MappingNode && len(value.Content) == 2 {
		key := value.Content[0].Value
		switch key {
		case "get_input":
			var name string
			if err := value.Content[1].Decode(&name); err != nil {
				return fmt.Errorf("get_input: %w", err)
			}
			p.Intrinsic = GetInput{InputName: name}
			return nil
		case "get_property":
			node, prop, err := decodePairRef(value.Content[1], "get_property")
			if err != nil {
				return err
			}
			p.Intrinsic = GetProperty{NodeTemplateName: node, PropertyName: prop}
			return nil
		case "get_attribute":
			node, attr, err := decodePairRef(value.Content[1], "get_attribute")
			if err != nil {
				return err
			}
			p.Intrinsic = GetAttribute{NodeTemplateName: node, AttributeName: attr}
			return nil
		}
	}

	var literal any
	if err := value.Decode(&literal); err != nil {
		return err
	}
	p.Literal = literal
	return nil
}

func decodePairRef(value *yaml.Node, fn string) (string, string, error) {
	var pair []string
	if err := value.Decode(&pair); err != nil {
		return "", "", fmt.Errorf("%s: %w", fn, err)
	}
	if len(pair) != 2 {
		return "", "", streamyerrors.NewValidationError(fn, fmt.Sprintf("%s requires exactly [node, name]", fn), nil)
	}
	return pair[0], pair[1], nil
}

// Parse decodes raw YAML bytes into a Template.
func Parse(data []byte) (*Template, error) {
	var doc rawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return convertDocument(&doc)
}

func convertDocument(doc *rawDocument) (*Template, error) {
	tmpl := &Template{
		NodeTypes:         make(map[string]TypeDefinition, len(doc.NodeTypes)),
		RelationshipTypes: make(map[string]TypeDefinition, len(doc.RelationshipTypes)),
	}

	for name, in := range doc.Inputs {
		input := TemplateInput{
			Name:     name,
			Type:     InputType(strings.ToLower(in.Type)),
			Required: in.Required,
			HasValue: in.HasValue,
		}
		if in.HasValue {
			var v any
			if err := in.Default.Decode(&v); err != nil {
				return nil, streamyerrors.NewValidationError(name, "invalid default value", err)
			}
			input.Default = v
		}
		tmpl.Inputs = append(tmpl.Inputs, input)
	}

	for id, rt := range doc.NodeTypes {
		tmpl.NodeTypes[id] = convertTypeDefinition(id, rt)
	}
	for id, rt := range doc.RelationshipTypes {
		tmpl.RelationshipTypes[id] = convertTypeDefinition(id, rt)
	}

	for name, rn := range doc.NodeTemplates {
		nt := NodeTemplate{
			Name:              name,
			TypeID:            rn.Type,
			Properties:        rn.Properties,
			StandardOverrides: convertOps(rn.Interfaces.Standard),
			Configure:         convertOps(rn.Interfaces.Configure),
		}
		for _, req := range rn.Requirements {
			nt.Requirements = append(nt.Requirements, Requirement{
				Node:                 req.Node,
				Relationship:         req.Relationship,
				Capability:           req.Capability,
				CapabilityProperties: req.CapabilityProperties,
			})
		}
		for capName, cap := range rn.Capabilities {
			nt.Capabilities = append(nt.Capabilities, Capability{
				Name:       capName,
				Type:       cap.Type,
				Properties: cap.Properties,
			})
		}
		for artName, art := range rn.Artifacts {
			nt.Artifacts = append(nt.Artifacts, Artifact{
				Name:   artName,
				Type:   art.Type,
				Fields: art.Fields,
			})
		}
		tmpl.NodeTemplates = append(tmpl.NodeTemplates, nt)
	}

	for name, val := range doc.Outputs {
		tmpl.Outputs = append(tmpl.Outputs, Output{Name: name, Value: val})
	}

	return tmpl, nil
}

func convertTypeDefinition(id string, rt rawTypeDefinition) TypeDefinition {
	def := TypeDefinition{
		ID:         id,
		Standard:   convertOps(rt.Interfaces.Standard),
		Configure:  convertOps(rt.Interfaces.Configure),
		Attributes: rt.Attributes,
	}
	for _, r := range rt.Requirements {
		def.Requirements = append(def.Requirements, RequirementDef{Name: r.Name, Relationship: r.Relationship})
	}
	return def
}

func convertOps(raw map[string]rawInterfaceOp) map[string]InterfaceOperation {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]InterfaceOperation, len(raw))
	for event, op := range raw {
		out[event] = InterfaceOperation{Implementation: op.Implementation, Inputs: op.Inputs}
	}
	return out
}

func hasYAMLKey(node *yaml.Node, key string) bool {
	if node == nil || node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
