package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

const validTopology = `
inputs:
  region:
    type: string
    default: us-east-1

node_types:
  tosca.nodes.Compute:
    interfaces:
      Standard:
        create:
          implementation: "orchestra/noop:create"
    attributes: ["created"]

node_templates:
  vm:
    type: tosca.nodes.Compute
    properties:
      region:
        get_input: region

outputs:
  vm_region:
    get_property: [vm, region]
`

func writeTopology(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topology.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParseFile_ValidTopology(t *testing.T) {
	path := writeTopology(t, validTopology)

	tmpl, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, tmpl.NodeTemplates, 1)

	vm, ok := tmpl.NodeTemplateByName("vm")
	require.True(t, ok)
	require.Equal(t, "tosca.nodes.Compute", vm.TypeID)

	in, ok := tmpl.InputDefinition("region")
	require.True(t, ok)
	require.Equal(t, "us-east-1", in.Default)
	require.True(t, in.HasValue)
}

func TestParseFile_MissingFileIsParseError(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "ghost.yaml"))
	var parseErr *streamyerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseFile_InvalidYAMLIsParseError(t *testing.T) {
	path := writeTopology(t, "node_templates: [this, is, not, a, mapping]")

	_, err := ParseFile(path)
	var parseErr *streamyerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestValidate_DuplicateNodeTemplateIsValidationError(t *testing.T) {
	// yaml.v3 maps collapse duplicate keys before decoding reaches us, so
	// exercise Validate directly against a hand-built Template instead.
	tmpl := &Template{
		NodeTypes: map[string]TypeDefinition{"t": {ID: "t"}},
		NodeTemplates: []NodeTemplate{
			{Name: "a", TypeID: "t"},
			{Name: "a", TypeID: "t"},
		},
	}
	err := Validate(tmpl)
	var validationErr *streamyerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestParseFile_UnknownNodeTypeIsValidationError(t *testing.T) {
	path := writeTopology(t, `
node_types:
  tosca.nodes.Compute: {}
node_templates:
  vm:
    type: tosca.nodes.Ghost
`)
	_, err := ParseFile(path)
	var validationErr *streamyerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestParseFile_UnknownRequirementTargetIsValidationError(t *testing.T) {
	path := writeTopology(t, `
node_types:
  tosca.nodes.Compute: {}
node_templates:
  vm:
    type: tosca.nodes.Compute
    requirements:
      - ghost
`)
	_, err := ParseFile(path)
	var validationErr *streamyerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestParseFile_UnknownOutputTargetIsValidationError(t *testing.T) {
	path := writeTopology(t, `
node_types:
  tosca.nodes.Compute: {}
node_templates:
  vm:
    type: tosca.nodes.Compute
outputs:
  bad:
    get_attribute: [ghost, created]
`)
	_, err := ParseFile(path)
	var validationErr *streamyerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidate_MalformedIdentifierFailsStructValidation(t *testing.T) {
	tmpl := &Template{
		NodeTypes:     map[string]TypeDefinition{"t": {ID: "t"}},
		NodeTemplates: []NodeTemplate{{Name: "9-bad-name", TypeID: "t"}},
	}
	err := Validate(tmpl)
	require.Error(t, err)
	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
}

func TestSortedNodeNames_IsAlphabetical(t *testing.T) {
	tmpl := &Template{
		NodeTemplates: []NodeTemplate{{Name: "zeta"}, {Name: "alpha"}, {Name: "mu"}},
	}
	require.Equal(t, []string{"alpha", "mu", "zeta"}, SortedNodeNames(tmpl))
}
