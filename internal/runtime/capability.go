package runtime

import (
	"github.com/alexisbeaulieu97/orchestra/internal/intrinsic"
	"github.com/alexisbeaulieu97/orchestra/internal/template"
	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

// HasCapability reports whether the node template declares a capability of
// the given type, grounded on original_source node.py's has_capability.
func (n *Node) HasCapability(capabilityType string) bool {
	for _, c := range n.template.Capabilities {
		if c.Type == capabilityType {
			return true
		}
	}
	return false
}

// Capability resolves the named capability's properties, evaluating any
// intrinsic references (typically GetInput) the same way property
// materialization does.
func (n *Node) Capability(name string) (map[string]any, error) {
	for _, c := range n.template.Capabilities {
		if c.Name != name {
			continue
		}
		return n.resolvePropertyMap(c.Properties)
	}
	return nil, streamyerrors.NewUnknownPropertyError(n.name, name)
}

// RequirementCapability resolves the inline capability overlay, if any,
// carried by the requirement edge from n to target, grounded on
// original_source node.py's get_requirement_capability.
func (n *Node) RequirementCapability(target *Node) (map[string]any, error) {
	for _, req := range n.template.Requirements {
		if req.Node != target.Name() {
			continue
		}
		if req.CapabilityProperties == nil {
			return map[string]any{}, nil
		}
		return n.resolvePropertyMap(req.CapabilityProperties)
	}
	return map[string]any{}, nil
}

func (n *Node) resolvePropertyMap(values map[string]template.PropertyValue) (map[string]any, error) {
	result := make(map[string]any, len(values))
	env := intrinsicEnv{node: n}
	for name, value := range values {
		if value.IsNull {
			continue
		}
		if value.Intrinsic != nil {
			resolved, err := intrinsic.Evaluate(value.Intrinsic, env, true)
			if err != nil {
				return nil, err
			}
			result[name] = resolved
			continue
		}
		result[name] = value.Literal
	}
	return result, nil
}

// Artifact resolves a named artifact's fields. Only GetInput references are
// supported within an artifact field; any other intrinsic function fails
// with UnsupportedIntrinsicFunctionError, matching original_source node.py's
// get_artifact_by_name.
func (n *Node) Artifact(name string) (map[string]any, error) {
	for _, a := range n.template.Artifacts {
		if a.Name != name {
			continue
		}
		return n.resolveArtifactFields(a)
	}
	return nil, streamyerrors.NewUnknownPropertyError(n.name, name)
}

// ArtifactsByType resolves every artifact of the given type.
func (n *Node) ArtifactsByType(artifactType string) ([]map[string]any, error) {
	var result []map[string]any
	for _, a := range n.template.Artifacts {
		if a.Type != artifactType {
			continue
		}
		fields, err := n.resolveArtifactFields(a)
		if err != nil {
			return nil, err
		}
		result = append(result, fields)
	}
	return result, nil
}

func (n *Node) resolveArtifactFields(a template.Artifact) (map[string]any, error) {
	result := make(map[string]any, len(a.Fields))
	env := intrinsicEnv{node: n}
	for name, value := range a.Fields {
		if value.IsNull {
			continue
		}
		if value.Intrinsic == nil {
			result[name] = value.Literal
			continue
		}
		if _, ok := value.Intrinsic.(template.GetInput); !ok {
			return nil, streamyerrors.NewUnsupportedIntrinsicFunctionError(n.name, "artifact:"+a.Name+":"+name, intrinsicFunctionName(value.Intrinsic))
		}
		resolved, err := intrinsic.Evaluate(value.Intrinsic, env, true)
		if err != nil {
			return nil, err
		}
		result[name] = resolved
	}
	return result, nil
}

func intrinsicFunctionName(ref template.IntrinsicRef) string {
	switch ref.(type) {
	case template.GetInput:
		return "get_input"
	case template.GetProperty:
		return "get_property"
	case template.GetAttribute:
		return "get_attribute"
	default:
		return "unknown"
	}
}
