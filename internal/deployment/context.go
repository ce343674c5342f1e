// Package deployment implements C7, the Context facade: it owns the node
// set, the memoized deployment plan, the bound inputs, and the status
// state machine, and is the Environment every internal/runtime.Node
// borrows a back-reference to. Grounded on original_source context.py's
// OrchestraContext (construction, deployment_plan memoization, deploy,
// undeploy, outputs, serialize/load) plus the teacher's
// internal/engine/apply_wrapper.go for the pipeline-result shape of a CLI-
// facing deploy call.
package deployment

import (
	"context"
	"sort"

	"github.com/alexisbeaulieu97/orchestra/internal/intrinsic"
	"github.com/alexisbeaulieu97/orchestra/internal/logger"
	"github.com/alexisbeaulieu97/orchestra/internal/orchestrator"
	"github.com/alexisbeaulieu97/orchestra/internal/planner"
	"github.com/alexisbeaulieu97/orchestra/internal/plugin"
	"github.com/alexisbeaulieu97/orchestra/internal/relationship"
	"github.com/alexisbeaulieu97/orchestra/internal/runtime"
	"github.com/alexisbeaulieu97/orchestra/internal/template"
	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

// Status is the deployment lifecycle state, per spec.md §3.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Context owns a topology deployment: the parsed template, the live node
// set, the memoized plan, and the status state machine. It implements
// runtime.Environment so every Node can resolve siblings, bound inputs,
// the plugin resolver, and the relationship dispatcher through it.
type Context struct {
	name            string
	path            string
	tmpl            *template.Template
	inputs          map[string]any
	rollbackEnabled bool
	registry        *plugin.Registry
	log             *logger.Logger

	dispatcher *relationship.Dispatcher
	nodes      map[string]*runtime.Node
	plan       *planner.Plan
	status     Status
}

// New parses the topology template at path and constructs a Context with
// one runtime.Node per node template. Construction fails with
// MissingCreateError if any node type lacks a Standard "create"
// implementation (spec.md §4.3).
func New(name, path string, inputs map[string]any, rollbackEnabled bool, registry *plugin.Registry, log *logger.Logger) (*Context, error) {
	tmpl, err := template.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return newFromTemplate(name, path, tmpl, inputs, rollbackEnabled, registry, log)
}

func newFromTemplate(name, path string, tmpl *template.Template, inputs map[string]any, rollbackEnabled bool, registry *plugin.Registry, log *logger.Logger) (*Context, error) {
	if registry == nil {
		registry = plugin.NewRegistry()
	}
	if log == nil {
		log = logger.Noop()
	}
	if inputs == nil {
		inputs = map[string]any{}
	}

	c := &Context{
		name:            name,
		path:            path,
		tmpl:            tmpl,
		inputs:          inputs,
		rollbackEnabled: rollbackEnabled,
		registry:        registry,
		log:             log,
		nodes:           make(map[string]*runtime.Node, len(tmpl.NodeTemplates)),
		status:          StatusPending,
	}
	c.dispatcher = relationship.New(tmpl, registry)

	for _, nodeName := range template.SortedNodeNames(tmpl) {
		nt, _ := tmpl.NodeTemplateByName(nodeName)
		typeDef, err := tmpl.TypeDefinitionFor(nt)
		if err != nil {
			return nil, err
		}
		node, err := runtime.NewNode(nt, typeDef, c)
		if err != nil {
			return nil, err
		}
		c.nodes[nodeName] = node
	}

	return c, nil
}

// Name returns the context's immutable name.
func (c *Context) Name() string { return c.name }

// Rename always fails: a Context's name is write-once, per spec.md §4.7 and
// original_source's name.setter.
func (c *Context) Rename(string) error {
	return streamyerrors.NewImmutableNameError(c.name)
}

// Status returns the current deployment status.
func (c *Context) Status() Status { return c.status }

// RollbackEnabled reports whether rollback mode is active.
func (c *Context) RollbackEnabled() bool { return c.rollbackEnabled }

// Path returns the template document path this context was constructed
// from, preserved for serialization (spec.md §6: "path must remain
// resolvable").
func (c *Context) Path() string { return c.path }

// Inputs returns the bound template inputs.
func (c *Context) Inputs() map[string]any { return c.inputs }

// NodeNames returns every node name in sorted order.
func (c *Context) NodeNames() []string {
	names := make([]string, 0, len(c.nodes))
	for name := range c.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Node looks up a live node by name.
func (c *Context) Node(name string) (*runtime.Node, bool) {
	n, ok := c.nodes[name]
	return n, ok
}

// --- runtime.Environment ---

func (c *Context) NodeByName(name string) (*runtime.Node, bool) {
	n, ok := c.nodes[name]
	return n, ok
}

func (c *Context) BoundInput(name string) (any, bool) {
	v, ok := c.inputs[name]
	return v, ok
}

func (c *Context) InputDefinition(name string) (template.TemplateInput, bool) {
	return c.tmpl.InputDefinition(name)
}

func (c *Context) Resolver() *plugin.Registry { return c.registry }

func (c *Context) RelationshipResolver() runtime.RelationshipResolver { return c.dispatcher }

func (c *Context) Logger() *logger.Logger { return c.log }

// --- intrinsic.Environment (for output resolution of get_input-bound
// outputs; GetProperty/GetAttribute-bound outputs go through
// Node.ProcessOutput* instead, see Outputs below) ---

func (c *Context) intrinsicNodeByName(name string) (intrinsic.TargetNode, bool) {
	n, ok := c.nodes[name]
	if !ok {
		return nil, false
	}
	return n, true
}

type contextIntrinsicEnv struct{ c *Context }

func (e contextIntrinsicEnv) BoundInput(name string) (any, bool) { return e.c.BoundInput(name) }
func (e contextIntrinsicEnv) InputDefinition(name string) (template.TemplateInput, bool) {
	return e.c.InputDefinition(name)
}
func (e contextIntrinsicEnv) NodeByName(name string) (intrinsic.TargetNode, bool) {
	return e.c.intrinsicNodeByName(name)
}

// DeploymentPlan builds the plan on first access and memoizes it (spec.md
// §8's "idempotent plan" property: two successive accesses return the same
// structurally-equal plan).
func (c *Context) DeploymentPlan() (*planner.Plan, error) {
	if c.plan != nil {
		return c.plan, nil
	}
	plan, err := planner.Build(c.tmpl)
	if err != nil {
		return nil, err
	}
	c.plan = plan
	return c.plan, nil
}

// Deploy runs create, configure, start across the deployment plan
// (internal/orchestrator.Deploy). It requires status PENDING and leaves
// status COMPLETED or FAILED. Per spec.md §9 open question 4, Deploy never
// calls Undeploy itself even when rollback is enabled and an operation
// fails: the caller must invoke Undeploy to unwind a partially-created
// deployment.
func (c *Context) Deploy(ctx context.Context) error {
	if c.status != StatusPending {
		return streamyerrors.NewBadStateError("deploy", string(c.status), string(StatusPending))
	}

	plan, err := c.DeploymentPlan()
	if err != nil {
		return err
	}

	c.log.Info("starting deployment", "name", c.name)
	c.status = StatusRunning

	failed, err := orchestrator.Deploy(ctx, c.nodes, plan)
	if err != nil {
		c.status = StatusFailed
		c.log.Error(err, "deployment failed", "name", c.name)
		if c.rollbackEnabled {
			c.log.Info("rollback enabled, swallowing deploy error; call Undeploy to unwind", "name", c.name)
			return nil
		}
		return err
	}

	if failed {
		c.status = StatusFailed
	} else {
		c.status = StatusCompleted
	}
	c.log.Info("deployment finished", "name", c.name, "status", string(c.status))
	return nil
}

// Undeploy tears the deployment down (internal/orchestrator.Undeploy).
// Permitted from COMPLETED or FAILED unconditionally, or from RUNNING when
// rollback is enabled. On success, status returns to PENDING.
func (c *Context) Undeploy(ctx context.Context) error {
	allowed := c.status == StatusCompleted || c.status == StatusFailed || c.rollbackEnabled
	if !allowed {
		return streamyerrors.NewBadStateError("undeploy", string(c.status), string(StatusCompleted), string(StatusFailed))
	}

	plan, err := c.DeploymentPlan()
	if err != nil {
		return err
	}

	c.log.Info("starting undeploy", "name", c.name)
	if err := orchestrator.Undeploy(ctx, c.nodes, plan); err != nil {
		c.log.Error(err, "undeploy failed", "name", c.name)
		return err
	}

	c.status = StatusPending
	c.log.Info("undeploy finished", "name", c.name)
	return nil
}

// Outputs resolves every declared output, only valid when status is
// COMPLETED or FAILED. GetAttribute/GetProperty-bound outputs resolve
// through the target node's ProcessOutput* methods (requiring the node be
// provisioned and surfacing NotProvisioned/UnknownX directly, distinct from
// property materialization's degraded-null behavior); GetInput-bound
// outputs resolve through the ordinary intrinsic evaluator; literals pass
// through unchanged. Grounded on original_source context.py's outputs
// property.
func (c *Context) Outputs() (map[string]any, error) {
	if c.status != StatusCompleted && c.status != StatusFailed {
		return nil, streamyerrors.NewBadStateError("outputs", string(c.status), string(StatusCompleted), string(StatusFailed))
	}

	result := make(map[string]any, len(c.tmpl.Outputs))
	for _, out := range c.tmpl.Outputs {
		if out.Value.IsNull {
			continue
		}
		if out.Value.Intrinsic == nil {
			result[out.Name] = out.Value.Literal
			continue
		}

		switch ref := out.Value.Intrinsic.(type) {
		case template.GetAttribute:
			n, ok := c.nodes[ref.NodeTemplateName]
			if !ok {
				return nil, streamyerrors.NewInvalidReferenceError(ref.NodeTemplateName)
			}
			v, err := n.ProcessOutputAttribute(ref.AttributeName)
			if err != nil {
				return nil, err
			}
			result[out.Name] = v
		case template.GetProperty:
			n, ok := c.nodes[ref.NodeTemplateName]
			if !ok {
				return nil, streamyerrors.NewInvalidReferenceError(ref.NodeTemplateName)
			}
			v, err := n.ProcessOutputProperty(ref.PropertyName)
			if err != nil {
				return nil, err
			}
			result[out.Name] = v
		case template.GetInput:
			v, err := intrinsic.Evaluate(ref, contextIntrinsicEnv{c}, false)
			if err != nil {
				return nil, err
			}
			result[out.Name] = v
		}
	}
	return result, nil
}
