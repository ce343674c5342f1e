// Package relationship implements C4: resolving the relationship type for
// an edge source->target, dispatching to its Configure interface operation
// when one is defined, and falling back to the built-in pass-through
// link/unlink otherwise. Grounded on original_source node.py's
// __get_relationship_entity/__get_relationship_event and noop.py's default
// behavior.
package relationship

import (
	"context"

	"github.com/alexisbeaulieu97/orchestra/internal/plugin"
	"github.com/alexisbeaulieu97/orchestra/internal/runtime"
	"github.com/alexisbeaulieu97/orchestra/internal/template"
)

// Dispatcher implements runtime.RelationshipResolver.
type Dispatcher struct {
	tmpl     *template.Template
	registry *plugin.Registry
}

// New constructs a Dispatcher over the parsed template's node/relationship
// type definitions and the plugin registry used to resolve Configure
// operations.
func New(tmpl *template.Template, registry *plugin.Registry) *Dispatcher {
	return &Dispatcher{tmpl: tmpl, registry: registry}
}

// Link resolves and invokes the "link" Configure operation for the edge
// source->target, or the built-in pass-through if none is defined.
func (d *Dispatcher) Link(ctx context.Context, source, target *runtime.Node) error {
	return d.dispatch(ctx, source, target, "link")
}

// Unlink resolves and invokes the "unlink" Configure operation for the edge
// source->target, or the built-in pass-through if none is defined.
func (d *Dispatcher) Unlink(ctx context.Context, source, target *runtime.Node) error {
	return d.dispatch(ctx, source, target, "unlink")
}

func (d *Dispatcher) dispatch(ctx context.Context, source, target *runtime.Node, event string) error {
	relType, ok := d.relationshipType(source, target)
	if ok {
		if relDef, ok := d.tmpl.RelationshipTypes[relType]; ok {
			if op, found := relDef.Configure[event]; found && op.Implementation != "" {
				fn, err := d.registry.ResolveRelationship(op.Implementation)
				if err != nil {
					return err
				}
				return fn(ctx, source, target, op.Inputs)
			}
		}
	}

	switch event {
	case "link":
		return builtinLink(source, target)
	case "unlink":
		return builtinUnlink(source, target)
	default:
		return nil
	}
}

// relationshipType finds the relationship type name source declares for its
// requirement edge targeting target: the explicit mapping-form
// "relationship" field if present, else a positional fallback into the
// source node type's schema-level requirement list (approximating
// original_source's type-level "related" map, since the parsed template
// contract here has no equivalent dict).
func (d *Dispatcher) relationshipType(source, target *runtime.Node) (string, bool) {
	nt, ok := d.tmpl.NodeTemplateByName(source.Name())
	if !ok {
		return "", false
	}

	for i, req := range nt.Requirements {
		if req.Node != target.Name() {
			continue
		}
		if req.Relationship != "" {
			return req.Relationship, true
		}
		if typeDef, ok := d.tmpl.NodeTypes[nt.TypeID]; ok && i < len(typeDef.Requirements) {
			if rel := typeDef.Requirements[i].Relationship; rel != "" {
				return rel, true
			}
		}
		return "", false
	}
	return "", false
}

// builtinLink copies all of target's runtime properties into source's
// (shallow batch update), the default pass-through that lets a dependent
// transparently see its prerequisite's attached attributes.
func builtinLink(source, target *runtime.Node) error {
	source.BatchUpdateRuntimeProperties(target.RuntimeProperties())
	return nil
}

// builtinUnlink removes from source every key that also exists in target's
// runtime properties.
func builtinUnlink(source, target *runtime.Node) error {
	for k := range target.RuntimeProperties() {
		source.RemoveRuntimeProperty(k)
	}
	return nil
}
