package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/orchestra/internal/logger"
	"github.com/alexisbeaulieu97/orchestra/internal/plugin"
	"github.com/alexisbeaulieu97/orchestra/internal/template"
	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

// fakeRelationshipResolver records every Link/Unlink call it's given instead
// of dispatching through internal/relationship, since that package imports
// this one.
type fakeRelationshipResolver struct {
	linkCalls   []string
	unlinkCalls []string
	linkErr     error
	unlinkErr   error
}

func (f *fakeRelationshipResolver) Link(ctx context.Context, source, target *Node) error {
	f.linkCalls = append(f.linkCalls, source.Name()+"->"+target.Name())
	return f.linkErr
}

func (f *fakeRelationshipResolver) Unlink(ctx context.Context, source, target *Node) error {
	f.unlinkCalls = append(f.unlinkCalls, source.Name()+"->"+target.Name())
	return f.unlinkErr
}

type fakeEnv struct {
	nodes      map[string]*Node
	inputs     map[string]any
	decls      map[string]template.TemplateInput
	registry   *plugin.Registry
	relations  RelationshipResolver
	rollback   bool
	log        *logger.Logger
}

func newFakeEnv(registry *plugin.Registry, relations RelationshipResolver) *fakeEnv {
	return &fakeEnv{
		nodes:     map[string]*Node{},
		inputs:    map[string]any{},
		decls:     map[string]template.TemplateInput{},
		registry:  registry,
		relations: relations,
		log:       logger.Noop(),
	}
}

func (e *fakeEnv) NodeByName(name string) (*Node, bool) {
	n, ok := e.nodes[name]
	return n, ok
}

func (e *fakeEnv) BoundInput(name string) (any, bool) {
	v, ok := e.inputs[name]
	return v, ok
}

func (e *fakeEnv) InputDefinition(name string) (template.TemplateInput, bool) {
	d, ok := e.decls[name]
	return d, ok
}

func (e *fakeEnv) Resolver() *plugin.Registry { return e.registry }

func (e *fakeEnv) RelationshipResolver() RelationshipResolver { return e.relations }

func (e *fakeEnv) Logger() *logger.Logger { return e.log }

func (e *fakeEnv) RollbackEnabled() bool { return e.rollback }

func computeType() template.TypeDefinition {
	return template.TypeDefinition{
		ID: "tosca.nodes.Compute",
		Standard: map[string]template.InterfaceOperation{
			"create":    {Implementation: "test:create"},
			"configure": {Implementation: "test:configure"},
			"start":     {Implementation: "test:start"},
			"stop":      {Implementation: "test:stop"},
			"delete":    {Implementation: "test:delete"},
		},
		Attributes: []string{"ip"},
	}
}

func newTestNode(t *testing.T, env *fakeEnv, name string, typeDef template.TypeDefinition, props map[string]template.PropertyValue) *Node {
	t.Helper()
	nt := &template.NodeTemplate{Name: name, TypeID: typeDef.ID, Properties: props}
	n, err := NewNode(nt, typeDef, env)
	require.NoError(t, err)
	env.nodes[name] = n
	return n
}

func TestNewNode_RequiresCreateOperation(t *testing.T) {
	nt := &template.NodeTemplate{Name: "orphan", TypeID: "tosca.nodes.Root"}
	typeDef := template.TypeDefinition{ID: "tosca.nodes.Root"}

	_, err := NewNode(nt, typeDef, newFakeEnv(plugin.NewRegistry(), &fakeRelationshipResolver{}))
	var missing *streamyerrors.MissingCreateError
	require.ErrorAs(t, err, &missing)
}

func TestNode_CreateMarksProvisionedAndInvokesOperation(t *testing.T) {
	registry := plugin.NewRegistry()
	var createCalled bool
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error {
		createCalled = true
		node.UpdateRuntimeProperty("ip", "10.0.0.5")
		return nil
	})

	env := newFakeEnv(registry, &fakeRelationshipResolver{})
	node := newTestNode(t, env, "vm", computeType(), nil)

	require.False(t, node.Provisioned())
	require.NoError(t, node.Create(context.Background(), nil))
	require.True(t, createCalled)
	require.True(t, node.Provisioned())
	require.False(t, node.FailedLastEvent())
}

func TestNode_Create_InvokesPrereqLinkFirst(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error {
		return nil
	})

	rel := &fakeRelationshipResolver{}
	env := newFakeEnv(registry, rel)
	prereq := newTestNode(t, env, "network", computeType(), nil)
	dependent := newTestNode(t, env, "vm", computeType(), nil)

	require.NoError(t, dependent.Create(context.Background(), []*Node{prereq}))
	require.Equal(t, []string{"network->vm"}, rel.linkCalls)
}

func TestNode_Create_SkipsSelfPrereq(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error {
		return nil
	})
	rel := &fakeRelationshipResolver{}
	env := newFakeEnv(registry, rel)
	node := newTestNode(t, env, "vm", computeType(), nil)

	require.NoError(t, node.Create(context.Background(), []*Node{node}))
	require.Empty(t, rel.linkCalls)
}

func TestNode_StandardOperationFailure_SetsUnprovisionedAndFailedLastEvent(t *testing.T) {
	registry := plugin.NewRegistry()
	boom := errors.New("boom")
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error {
		return boom
	})

	env := newFakeEnv(registry, &fakeRelationshipResolver{})
	node := newTestNode(t, env, "vm", computeType(), nil)

	err := node.Create(context.Background(), nil)
	require.ErrorIs(t, err, boom)
	require.False(t, node.Provisioned())
	require.True(t, node.FailedLastEvent())
}

func TestNode_RollbackMode_SwallowsOperationError(t *testing.T) {
	registry := plugin.NewRegistry()
	boom := errors.New("boom")
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error {
		return boom
	})

	env := newFakeEnv(registry, &fakeRelationshipResolver{})
	env.rollback = true
	node := newTestNode(t, env, "vm", computeType(), nil)

	err := node.Create(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, node.FailedLastEvent())
	require.False(t, node.Provisioned())
}

func TestNode_RollbackMode_SkipsDestructiveEventOnUnprovisionedNode(t *testing.T) {
	registry := plugin.NewRegistry()
	var deleteCalled bool
	registry.RegisterStandard("test", "delete", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error {
		deleteCalled = true
		return nil
	})
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error {
		return nil
	})

	env := newFakeEnv(registry, &fakeRelationshipResolver{})
	env.rollback = true
	node := newTestNode(t, env, "vm", computeType(), nil)

	require.NoError(t, node.Delete(context.Background(), nil))
	require.False(t, deleteCalled)
}

func TestNode_Delete_InvokesUnlinkAfterStandardOperation(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error { return nil })
	registry.RegisterStandard("test", "delete", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error { return nil })

	rel := &fakeRelationshipResolver{}
	env := newFakeEnv(registry, rel)
	prereq := newTestNode(t, env, "network", computeType(), nil)
	dependent := newTestNode(t, env, "vm", computeType(), nil)

	require.NoError(t, dependent.Create(context.Background(), nil))
	require.NoError(t, dependent.Delete(context.Background(), []*Node{prereq}))
	require.Equal(t, []string{"network->vm"}, rel.unlinkCalls)
	require.False(t, dependent.Provisioned())
}

func TestNode_InvokeStandard_NoImplementationIsNoop(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error { return nil })

	env := newFakeEnv(registry, &fakeRelationshipResolver{})
	typeDef := template.TypeDefinition{
		ID:       "tosca.nodes.Minimal",
		Standard: map[string]template.InterfaceOperation{"create": {Implementation: "test:create"}},
	}
	node := newTestNode(t, env, "vm", typeDef, nil)

	require.NoError(t, node.Configure(context.Background()))
}

func TestNode_Properties_MaterializesLiteralsAndIntrinsics(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error { return nil })

	env := newFakeEnv(registry, &fakeRelationshipResolver{})
	env.inputs["size"] = "large"

	props := map[string]template.PropertyValue{
		"name": {Literal: "web-1"},
		"size": {Intrinsic: template.GetInput{InputName: "size"}},
	}
	node := newTestNode(t, env, "vm", computeType(), props)

	materialized, err := node.Properties()
	require.NoError(t, err)
	require.Equal(t, "web-1", materialized["name"])
	require.Equal(t, "large", materialized["size"])
}

func TestNode_Properties_ReMaterializesOnEveryCall(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error { return nil })
	registry.RegisterStandard("test2", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error {
		node.UpdateRuntimeProperty("ip", "10.0.0.9")
		return nil
	})

	env := newFakeEnv(registry, &fakeRelationshipResolver{})
	dbType := template.TypeDefinition{
		ID:         "tosca.nodes.Database",
		Standard:   map[string]template.InterfaceOperation{"create": {Implementation: "test2:create"}},
		Attributes: []string{"ip"},
	}
	db := newTestNode(t, env, "db", dbType, nil)

	webProps := map[string]template.PropertyValue{
		"connects_to": {Intrinsic: template.GetAttribute{NodeTemplateName: "db", AttributeName: "ip"}},
	}
	web := newTestNode(t, env, "web", computeType(), webProps)

	before, err := web.Properties()
	require.NoError(t, err)
	require.Nil(t, before["connects_to"])

	require.NoError(t, db.Create(context.Background(), nil))

	after, err := web.Properties()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.9", after["connects_to"])
}

func TestNode_Attributes_EmptyBeforeProvisioning(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error { return nil })

	env := newFakeEnv(registry, &fakeRelationshipResolver{})
	node := newTestNode(t, env, "vm", computeType(), nil)

	require.Empty(t, node.Attributes())

	require.NoError(t, node.Create(context.Background(), nil))
	node.UpdateRuntimeProperty("ip", "192.168.1.1")
	require.Equal(t, "192.168.1.1", node.Attributes()["ip"])
}

func TestNode_RuntimePropertyHelpers(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error { return nil })
	env := newFakeEnv(registry, &fakeRelationshipResolver{})
	node := newTestNode(t, env, "vm", computeType(), nil)

	node.BatchUpdateRuntimeProperties(map[string]any{"a": 1, "b": 2})
	require.Equal(t, map[string]any{"a": 1, "b": 2}, node.RuntimeProperties())

	node.RemoveRuntimeProperty("a")
	require.Equal(t, map[string]any{"b": 2}, node.RuntimeProperties())

	node.ReplaceRuntimeProperties(map[string]any{"c": 3})
	require.Equal(t, map[string]any{"c": 3}, node.RuntimeProperties())

	node.SetProvisioned(true)
	require.True(t, node.Provisioned())
}
