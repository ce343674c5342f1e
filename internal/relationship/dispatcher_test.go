package relationship

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/orchestra/internal/logger"
	"github.com/alexisbeaulieu97/orchestra/internal/plugin"
	"github.com/alexisbeaulieu97/orchestra/internal/runtime"
	"github.com/alexisbeaulieu97/orchestra/internal/template"
)

type fakeEnv struct {
	nodes    map[string]*runtime.Node
	registry *plugin.Registry
	disp     *Dispatcher
	log      *logger.Logger
}

func (e *fakeEnv) NodeByName(name string) (*runtime.Node, bool) {
	n, ok := e.nodes[name]
	return n, ok
}

func (e *fakeEnv) BoundInput(string) (any, bool)                             { return nil, false }
func (e *fakeEnv) InputDefinition(string) (template.TemplateInput, bool)     { return template.TemplateInput{}, false }
func (e *fakeEnv) Resolver() *plugin.Registry                                { return e.registry }
func (e *fakeEnv) RelationshipResolver() runtime.RelationshipResolver        { return e.disp }
func (e *fakeEnv) Logger() *logger.Logger                                   { return e.log }
func (e *fakeEnv) RollbackEnabled() bool                                     { return false }

func buildPair(t *testing.T, tmpl *template.Template, registry *plugin.Registry) (*fakeEnv, *runtime.Node, *runtime.Node) {
	t.Helper()
	env := &fakeEnv{nodes: map[string]*runtime.Node{}, registry: registry, log: logger.Noop()}
	env.disp = New(tmpl, registry)

	computeType := template.TypeDefinition{
		ID:       "tosca.nodes.Compute",
		Standard: map[string]template.InterfaceOperation{"create": {Implementation: "test:create"}},
	}

	sourceNT, _ := tmpl.NodeTemplateByName("web")
	targetNT, _ := tmpl.NodeTemplateByName("db")

	target, err := runtime.NewNode(targetNT, computeType, env)
	require.NoError(t, err)
	env.nodes["db"] = target

	source, err := runtime.NewNode(sourceNT, computeType, env)
	require.NoError(t, err)
	env.nodes["web"] = source

	return env, source, target
}

func TestDispatcher_BuiltinLink_CopiesRuntimeProperties(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error { return nil })

	tmpl := &template.Template{
		NodeTemplates: []template.NodeTemplate{
			{Name: "web", TypeID: "tosca.nodes.Compute", Requirements: []template.Requirement{{Node: "db"}}},
			{Name: "db", TypeID: "tosca.nodes.Compute"},
		},
	}
	env, source, target := buildPair(t, tmpl, registry)
	target.UpdateRuntimeProperty("endpoint", "db:5432")

	require.NoError(t, env.disp.Link(context.Background(), source, target))
	require.Equal(t, "db:5432", source.RuntimeProperties()["endpoint"])
}

func TestDispatcher_BuiltinUnlink_RemovesSharedKeys(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error { return nil })

	tmpl := &template.Template{
		NodeTemplates: []template.NodeTemplate{
			{Name: "web", TypeID: "tosca.nodes.Compute", Requirements: []template.Requirement{{Node: "db"}}},
			{Name: "db", TypeID: "tosca.nodes.Compute"},
		},
	}
	env, source, target := buildPair(t, tmpl, registry)
	target.UpdateRuntimeProperty("endpoint", "db:5432")
	source.UpdateRuntimeProperty("endpoint", "db:5432")
	source.UpdateRuntimeProperty("own", "mine")

	require.NoError(t, env.disp.Unlink(context.Background(), source, target))
	props := source.RuntimeProperties()
	require.NotContains(t, props, "endpoint")
	require.Equal(t, "mine", props["own"])
}

func TestDispatcher_ExplicitRelationshipType_DispatchesConfigureOperation(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error { return nil })

	var linkInvoked bool
	registry.RegisterRelationship("test", "link", func(ctx context.Context, source, target plugin.NodeHandle, inputs map[string]any) error {
		linkInvoked = true
		return nil
	})

	tmpl := &template.Template{
		NodeTemplates: []template.NodeTemplate{
			{Name: "web", TypeID: "tosca.nodes.Compute", Requirements: []template.Requirement{
				{Node: "db", Relationship: "tosca.relationships.ConnectsTo"},
			}},
			{Name: "db", TypeID: "tosca.nodes.Compute"},
		},
		RelationshipTypes: map[string]template.TypeDefinition{
			"tosca.relationships.ConnectsTo": {
				Configure: map[string]template.InterfaceOperation{"link": {Implementation: "test:link"}},
			},
		},
	}
	env, source, target := buildPair(t, tmpl, registry)

	require.NoError(t, env.disp.Link(context.Background(), source, target))
	require.True(t, linkInvoked)
}

func TestDispatcher_ExplicitRelationshipType_FallsBackToBuiltinWhenNoConfigureOp(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.RegisterStandard("test", "create", func(ctx context.Context, node plugin.NodeHandle, inputs map[string]any) error { return nil })

	tmpl := &template.Template{
		NodeTemplates: []template.NodeTemplate{
			{Name: "web", TypeID: "tosca.nodes.Compute", Requirements: []template.Requirement{
				{Node: "db", Relationship: "tosca.relationships.ConnectsTo"},
			}},
			{Name: "db", TypeID: "tosca.nodes.Compute"},
		},
		RelationshipTypes: map[string]template.TypeDefinition{
			"tosca.relationships.ConnectsTo": {},
		},
	}
	env, source, target := buildPair(t, tmpl, registry)
	target.UpdateRuntimeProperty("endpoint", "db:5432")

	require.NoError(t, env.disp.Link(context.Background(), source, target))
	require.Equal(t, "db:5432", source.RuntimeProperties()["endpoint"])
}
