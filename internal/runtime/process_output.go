package runtime

import (
	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

// ProcessOutputAttribute resolves a GetAttribute-bound deployment output
// against n. Unlike intrinsic.Evaluate's degraded mode (used during
// pre-deployment property materialization), this surfaces
// NodeNotProvisionedError/UnknownAttributeError directly, grounded on
// original_source node.py's process_output.
func (n *Node) ProcessOutputAttribute(name string) (any, error) {
	if !n.provisioned {
		return nil, streamyerrors.NewNodeNotProvisionedError(n.name)
	}
	value, found := n.AttributeValue(name)
	if !found {
		return nil, streamyerrors.NewUnknownAttributeError(n.name, name)
	}
	return value, nil
}

// ProcessOutputProperty resolves a GetProperty-bound deployment output
// against n. original_source's process_output requires the node to be
// provisioned for a property-bound output too, not only attribute-bound
// ones, so the same guard applies here.
func (n *Node) ProcessOutputProperty(name string) (any, error) {
	if !n.provisioned {
		return nil, streamyerrors.NewNodeNotProvisionedError(n.name)
	}
	value, found, err := n.MaterializedProperty(name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, streamyerrors.NewUnknownPropertyError(n.name, name)
	}
	return value, nil
}
