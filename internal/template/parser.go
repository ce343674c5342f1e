package template

import (
	"fmt"
	"os"
	"sort"

	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

// ParseFile loads and validates a topology template document from disk.
func ParseFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, streamyerrors.NewParseError(path, err)
	}

	tmpl, err := Parse(data)
	if err != nil {
		return nil, streamyerrors.NewParseError(path, err)
	}

	if err := Validate(tmpl); err != nil {
		return nil, err
	}

	return tmpl, nil
}

// Validate checks structural invariants of a parsed template: input/node
// identifiers are well-formed, every node references a known type, and every
// requirement targets a node template that exists. Cross-node cycle
// detection is the planner's job (spec.md §4.5), not the parser's.
func Validate(tmpl *Template) error {
	names := make(map[string]bool, len(tmpl.NodeTemplates))
	for _, nt := range tmpl.NodeTemplates {
		if names[nt.Name] {
			return streamyerrors.NewValidationError("node_templates", fmt.Sprintf("duplicate node template %q", nt.Name), nil)
		}
		names[nt.Name] = true
	}

	for _, in := range tmpl.Inputs {
		if err := validateInput(in); err != nil {
			return err
		}
	}

	for _, nt := range tmpl.NodeTemplates {
		if err := validateNodeTemplate(nt); err != nil {
			return err
		}
		if _, ok := tmpl.NodeTypes[nt.TypeID]; !ok {
			return streamyerrors.NewValidationError(nt.Name, fmt.Sprintf("unknown node type %q", nt.TypeID), nil)
		}
		for _, req := range nt.Requirements {
			if !names[req.Node] {
				return streamyerrors.NewValidationError(nt.Name, fmt.Sprintf("requirement targets unknown node %q", req.Node), nil)
			}
		}
	}

	for _, out := range tmpl.Outputs {
		if ref, ok := out.Value.Intrinsic.(GetAttribute); ok && !names[ref.NodeTemplateName] {
			return streamyerrors.NewValidationError(out.Name, fmt.Sprintf("output references unknown node %q", ref.NodeTemplateName), nil)
		}
		if ref, ok := out.Value.Intrinsic.(GetProperty); ok && !names[ref.NodeTemplateName] {
			return streamyerrors.NewValidationError(out.Name, fmt.Sprintf("output references unknown node %q", ref.NodeTemplateName), nil)
		}
	}

	return nil
}

// SortedNodeNames returns node template names in sorted order, used
// wherever deterministic iteration is required (spec.md §4.5's "visit
// requirements in sorted-by-name order").
func SortedNodeNames(tmpl *Template) []string {
	names := make([]string, 0, len(tmpl.NodeTemplates))
	for _, nt := range tmpl.NodeTemplates {
		names = append(names, nt.Name)
	}
	sort.Strings(names)
	return names
}
