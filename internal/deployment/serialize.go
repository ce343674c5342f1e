package deployment

import (
	"github.com/alexisbeaulieu97/orchestra/internal/logger"
	"github.com/alexisbeaulieu97/orchestra/internal/plugin"
	"github.com/alexisbeaulieu97/orchestra/internal/template"
)

// SerializedNode is one node's persisted fields, per spec.md §6.
type SerializedNode struct {
	Name              string         `json:"name"`
	Provisioned       bool           `json:"provisioned"`
	Properties        map[string]any `json:"properties"`
	Attributes        map[string]any `json:"attributes"`
	RuntimeProperties map[string]any `json:"runtime_properties"`
}

// Serialized is the key-value persistence layout spec.md §6 names. The
// template itself is not embedded: Path must remain resolvable so Load can
// re-parse it.
type Serialized struct {
	Name           string           `json:"name"`
	Status         string           `json:"status"`
	TemplateInputs map[string]any   `json:"template_inputs"`
	Path           string           `json:"path"`
	Nodes          []SerializedNode `json:"nodes"`
}

// Serialize captures the context's persisted fields: name, status, bound
// inputs, template path, and per-node provisioned/properties/attributes/
// runtime-properties.
func (c *Context) Serialize() (*Serialized, error) {
	nodes := make([]SerializedNode, 0, len(c.nodes))
	for _, name := range template.SortedNodeNames(c.tmpl) {
		n, ok := c.nodes[name]
		if !ok {
			continue
		}
		props, err := n.Properties()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, SerializedNode{
			Name:              n.Name(),
			Provisioned:       n.Provisioned(),
			Properties:        props,
			Attributes:        n.Attributes(),
			RuntimeProperties: n.RuntimeProperties(),
		})
	}

	return &Serialized{
		Name:           c.name,
		Status:         string(c.status),
		TemplateInputs: c.inputs,
		Path:           c.path,
		Nodes:          nodes,
	}, nil
}

// Load reconstructs a Context from a Serialized snapshot: re-parses the
// template at s.Path, then overlays each serialized node's provisioned
// flag and runtime properties onto the freshly constructed live node
// before rebuilding the plan. rollbackEnabled is not part of the persisted
// layout (spec.md §6) and must be supplied by the caller, mirroring
// original_source context.py's load() classmethod, which likewise takes it
// from the live caller rather than the serialized payload.
func Load(s *Serialized, rollbackEnabled bool, registry *plugin.Registry, log *logger.Logger) (*Context, error) {
	c, err := New(s.Name, s.Path, s.TemplateInputs, rollbackEnabled, registry, log)
	if err != nil {
		return nil, err
	}

	c.status = Status(s.Status)
	for _, sn := range s.Nodes {
		n, ok := c.nodes[sn.Name]
		if !ok {
			continue
		}
		n.ReplaceRuntimeProperties(sn.RuntimeProperties)
		n.SetProvisioned(sn.Provisioned)
	}

	if _, err := c.DeploymentPlan(); err != nil {
		return nil, err
	}
	return c, nil
}
