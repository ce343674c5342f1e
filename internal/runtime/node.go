// Package runtime implements C3, the per-node runtime model: materialized
// properties, the computed attribute view, the mutable runtime-properties
// bag, the provisioned flag, and the lifecycle methods that dispatch
// through C1 (plugin resolver) and C4 (relationship dispatcher) under the
// C8 operation wrapper. Grounded on original_source's node.py
// (OrchestraNode, lifecycle_event_handler, check_for_event_definition).
package runtime

import (
	"context"

	"github.com/alexisbeaulieu97/orchestra/internal/intrinsic"
	"github.com/alexisbeaulieu97/orchestra/internal/logger"
	"github.com/alexisbeaulieu97/orchestra/internal/operation"
	"github.com/alexisbeaulieu97/orchestra/internal/plugin"
	"github.com/alexisbeaulieu97/orchestra/internal/template"
	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

// Environment is the back-reference a Node borrows from its owning context:
// sibling lookup for intrinsic evaluation, bound inputs, the plugin
// resolver, the relationship dispatcher, logging, and the rollback flag.
// internal/deployment.Context implements this.
type Environment interface {
	NodeByName(name string) (*Node, bool)
	BoundInput(name string) (any, bool)
	InputDefinition(name string) (template.TemplateInput, bool)
	Resolver() *plugin.Registry
	RelationshipResolver() RelationshipResolver
	Logger() *logger.Logger
	RollbackEnabled() bool
}

// RelationshipResolver is C4's contract as seen from a Node: resolve and
// invoke the link/unlink operation for the edge source->target.
// internal/relationship.Dispatcher implements this.
type RelationshipResolver interface {
	Link(ctx context.Context, source, target *Node) error
	Unlink(ctx context.Context, source, target *Node) error
}

// Node is a single vertex of the topology graph at runtime.
type Node struct {
	name     string
	typeID   string
	template *template.NodeTemplate
	typeDef  template.TypeDefinition
	env      Environment

	runtimeProperties map[string]any
	provisioned       bool
	lastEventFailed   bool
}

// NewNode constructs a Node from its parsed template and resolved type
// definition. Construction fails with MissingCreateError if the type (after
// applying the template-level override) has no "create" Standard operation,
// per spec.md §4.3.
func NewNode(nt *template.NodeTemplate, typeDef template.TypeDefinition, env Environment) (*Node, error) {
	if _, ok := typeDef.EffectiveStandardOperation("create", nt.StandardOverrides); !ok {
		return nil, streamyerrors.NewMissingCreateError(typeDef.ID)
	}
	return &Node{
		name:              nt.Name,
		typeID:            nt.TypeID,
		template:          nt,
		typeDef:           typeDef,
		env:               env,
		runtimeProperties: make(map[string]any),
	}, nil
}

// Name returns the node's template name.
func (n *Node) Name() string { return n.name }

// TypeID returns the node's declared type id.
func (n *Node) TypeID() string { return n.typeID }

// Provisioned reports whether the node has completed create without a
// subsequent delete or lifecycle failure.
func (n *Node) Provisioned() bool { return n.provisioned }

// Properties materializes the node's declared properties. This re-runs on
// every call, per spec.md §4.3's lazy re-materialization contract: a
// property resolving a sibling's GetAttribute only becomes non-null once
// that sibling is provisioned.
func (n *Node) Properties() (map[string]any, error) {
	result := make(map[string]any, len(n.template.Properties))
	env := intrinsicEnv{node: n}
	for name, value := range n.template.Properties {
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

// MaterializedProperty resolves a single property by name, for use as a
// GetProperty target by the intrinsic evaluator.
func (n *Node) MaterializedProperty(name string) (any, bool, error) {
	props, err := n.Properties()
	if err != nil {
		return nil, false, err
	}
	v, ok := props[name]
	return v, ok, nil
}

// Attributes computes the node's attribute view: the declared attribute
// names of its type, each resolved from runtime properties. Before
// provisioning the view is empty, not an error.
func (n *Node) Attributes() map[string]any {
	view := make(map[string]any, len(n.typeDef.Attributes))
	if !n.provisioned {
		return view
	}
	for _, name := range n.typeDef.Attributes {
		view[name] = n.runtimeProperties[name]
	}
	return view
}

// AttributeValue resolves a single attribute for use as a GetAttribute
// target by the intrinsic evaluator. found reports whether the type
// declares the attribute at all (the runtime value itself may be nil).
func (n *Node) AttributeValue(name string) (value any, found bool) {
	if !n.typeDef.HasAttribute(name) {
		return nil, false
	}
	return n.runtimeProperties[name], true
}

// RuntimeProperties returns a snapshot of the node's mutable runtime-state
// bag.
func (n *Node) RuntimeProperties() map[string]any {
	cp := make(map[string]any, len(n.runtimeProperties))
	for k, v := range n.runtimeProperties {
		cp[k] = v
	}
	return cp
}

// UpdateRuntimeProperty sets a single runtime property. There is no schema
// check; plugin operations write freely.
func (n *Node) UpdateRuntimeProperty(key string, value any) {
	n.runtimeProperties[key] = value
}

// BatchUpdateRuntimeProperties merges kv into the node's runtime properties.
func (n *Node) BatchUpdateRuntimeProperties(kv map[string]any) {
	for k, v := range kv {
		n.runtimeProperties[k] = v
	}
}

// RemoveRuntimeProperty deletes a single runtime property, used by the
// built-in pass-through unlink operation.
func (n *Node) RemoveRuntimeProperty(key string) {
	delete(n.runtimeProperties, key)
}

// ReplaceRuntimeProperties overwrites the runtime-properties bag wholesale,
// used by internal/deployment when restoring a node from a serialized
// context.
func (n *Node) ReplaceRuntimeProperties(kv map[string]any) {
	n.runtimeProperties = make(map[string]any, len(kv))
	for k, v := range kv {
		n.runtimeProperties[k] = v
	}
}

// SetProvisioned forces the provisioned flag, used only when restoring a
// node from a serialized context.
func (n *Node) SetProvisioned(provisioned bool) {
	n.provisioned = provisioned
}

// invokeLifecycle applies the C8 outer wrapper: a destructive-event
// rollback short-circuit, the C8 inner wrapper (entry/exit logging and
// rollback-aware swallow) around fn, and unconditional provisioned=false on
// any error fn itself raised (even one the inner wrapper went on to
// swallow). lastEventFailed records the raw (pre-swallow) outcome so the
// driver can still tell deploy/undeploy failed even when rollback mode
// swallowed the error at the operation-wrapper layer (spec.md §4.6's "on
// exception: set FAILED" applies regardless of rollback mode, only the
// re-raise is conditional).
func (n *Node) invokeLifecycle(event string, destructive bool, fn func() error) error {
	n.lastEventFailed = false

	if destructive && n.env.RollbackEnabled() && !n.provisioned {
		n.env.Logger().Debug("skipping destructive event on unprovisioned node", "node", n.name, "event", event)
		return nil
	}

	var innerErr error
	err := operation.Invoke(n.env, n.name, event, func() error {
		innerErr = fn()
		return innerErr
	})
	if innerErr != nil {
		n.provisioned = false
		n.lastEventFailed = true
	}
	return err
}

// FailedLastEvent reports whether the most recently invoked lifecycle event
// raised an error, even if the operation wrapper went on to swallow it
// under rollback mode. Consulted by internal/orchestrator to decide the
// terminal deployment status.
func (n *Node) FailedLastEvent() bool { return n.lastEventFailed }

// invokeStandard resolves and calls the node's Standard operation for
// event. An event with no implementation (type default nor template
// override) is a debug-logged no-op, not an error.
func (n *Node) invokeStandard(ctx context.Context, event string) error {
	ifaceOp, ok := n.typeDef.EffectiveStandardOperation(event, n.template.StandardOverrides)
	if !ok || ifaceOp.Implementation == "" {
		n.env.Logger().Debug("no implementation for event, skipping", "node", n.name, "event", event)
		return nil
	}
	op, err := n.env.Resolver().ResolveStandard(ifaceOp.Implementation)
	if err != nil {
		return err
	}
	return op(ctx, n, ifaceOp.Inputs)
}

// Create invokes each prerequisite's inbound link edge (in order), then the
// Standard create operation, then marks the node provisioned.
func (n *Node) Create(ctx context.Context, prereqs []*Node) error {
	return n.invokeLifecycle("create", false, func() error {
		for _, t := range prereqs {
			if t.Name() == n.name {
				continue
			}
			if err := t.Link(ctx, n); err != nil {
				return err
			}
		}
		if err := n.invokeStandard(ctx, "create"); err != nil {
			return err
		}
		n.provisioned = true
		return nil
	})
}

// Configure invokes the Standard configure operation.
func (n *Node) Configure(ctx context.Context) error {
	return n.invokeLifecycle("configure", false, func() error {
		return n.invokeStandard(ctx, "configure")
	})
}

// Start invokes the Standard start operation.
func (n *Node) Start(ctx context.Context) error {
	return n.invokeLifecycle("start", false, func() error {
		return n.invokeStandard(ctx, "start")
	})
}

// Stop invokes the Standard stop operation. It is a destructive event: with
// rollback enabled it is skipped on a node that was never provisioned.
func (n *Node) Stop(ctx context.Context) error {
	return n.invokeLifecycle("stop", true, func() error {
		return n.invokeStandard(ctx, "stop")
	})
}

// Delete invokes the Standard delete operation, then each prerequisite's
// inbound unlink edge, then clears provisioned. It is a destructive event.
func (n *Node) Delete(ctx context.Context, prereqs []*Node) error {
	return n.invokeLifecycle("delete", true, func() error {
		if err := n.invokeStandard(ctx, "delete"); err != nil {
			return err
		}
		for _, t := range prereqs {
			if t.Name() == n.name {
				continue
			}
			if err := t.Unlink(ctx, n); err != nil {
				return err
			}
		}
		n.provisioned = false
		return nil
	})
}

// Link dispatches, via C4, the relationship operation for the edge
// source->n (n is the target).
func (n *Node) Link(ctx context.Context, source *Node) error {
	return n.invokeLifecycle("link", false, func() error {
		return n.env.RelationshipResolver().Link(ctx, source, n)
	})
}

// Unlink dispatches, via C4, the relationship teardown operation for the
// edge source->n (n is the target).
func (n *Node) Unlink(ctx context.Context, source *Node) error {
	return n.invokeLifecycle("unlink", false, func() error {
		return n.env.RelationshipResolver().Unlink(ctx, source, n)
	})
}

// intrinsicEnv adapts a Node's Environment to intrinsic.Environment,
// converting the NodeByName return type structurally: *Node already
// implements intrinsic.TargetNode.
type intrinsicEnv struct {
	node *Node
}

func (e intrinsicEnv) BoundInput(name string) (any, bool) {
	return e.node.env.BoundInput(name)
}

func (e intrinsicEnv) InputDefinition(name string) (template.TemplateInput, bool) {
	return e.node.env.InputDefinition(name)
}

func (e intrinsicEnv) NodeByName(name string) (intrinsic.TargetNode, bool) {
	target, ok := e.node.env.NodeByName(name)
	if !ok {
		return nil, false
	}
	return target, true
}
