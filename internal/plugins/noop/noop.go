// Package noop supplies the demonstration and test Standard/Configure
// operations referenced by spec.md §8's seeded end-to-end scenarios:
// create/configure/start/stop/delete implementations that record a marker
// in runtime properties, a fail_start operation that always errors (used to
// exercise the rollback path), and link/unlink relationship operations.
// Grounded directly on original_source's tests/plugin.py and core/noop.py.
//
// A host registers these under whatever module name its templates
// reference, e.g.:
//
//	registry.RegisterStandard("orchestra/noop", "create", noop.Create)
package noop

import (
	"context"
	"errors"

	"github.com/alexisbeaulieu97/orchestra/internal/plugin"
	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

// Create marks the node created, mirroring tests/plugin.py's create.
func Create(_ context.Context, node plugin.NodeHandle, _ map[string]any) error {
	node.UpdateRuntimeProperty("created", true)
	return nil
}

// Configure marks the node configured.
func Configure(_ context.Context, node plugin.NodeHandle, _ map[string]any) error {
	node.UpdateRuntimeProperty("configured", true)
	return nil
}

// Start marks the node started.
func Start(_ context.Context, node plugin.NodeHandle, _ map[string]any) error {
	node.UpdateRuntimeProperty("started", true)
	return nil
}

// FailStart always errors, used to exercise the rollback path in spec.md
// §8 scenario 6.
func FailStart(_ context.Context, node plugin.NodeHandle, _ map[string]any) error {
	return streamyerrors.NewOperationError(node.Name(), "start", errFailStart)
}

var errFailStart = errors.New("i must fail")

// Stop marks the node stopped.
func Stop(_ context.Context, node plugin.NodeHandle, _ map[string]any) error {
	node.UpdateRuntimeProperty("stopped", true)
	return nil
}

// Delete marks the node deleted.
func Delete(_ context.Context, node plugin.NodeHandle, _ map[string]any) error {
	node.UpdateRuntimeProperty("deleted", true)
	return nil
}

// Link copies a "target"/"source" marker pair in addition to the built-in
// pass-through relationship's batch copy, matching tests/plugin.py's link
// (used when a template names this operation explicitly instead of relying
// on internal/relationship's default pass-through).
func Link(_ context.Context, source, target plugin.NodeHandle, _ map[string]any) error {
	source.UpdateRuntimeProperty("target", target.Name())
	target.UpdateRuntimeProperty("source", source.Name())
	source.BatchUpdateRuntimeProperties(target.RuntimeProperties())
	return nil
}

// Unlink removes the markers Link added plus every key shared with target.
func Unlink(_ context.Context, source, target plugin.NodeHandle, _ map[string]any) error {
	source.RemoveRuntimeProperty("target")
	for k := range target.RuntimeProperties() {
		source.RemoveRuntimeProperty(k)
	}
	target.RemoveRuntimeProperty("source")
	return nil
}

// Register installs every operation in this package into reg under module.
func Register(reg *plugin.Registry, module string) {
	reg.RegisterStandard(module, "create", Create)
	reg.RegisterStandard(module, "configure", Configure)
	reg.RegisterStandard(module, "start", Start)
	reg.RegisterStandard(module, "fail_start", FailStart)
	reg.RegisterStandard(module, "stop", Stop)
	reg.RegisterStandard(module, "delete", Delete)
	reg.RegisterRelationship(module, "link", Link)
	reg.RegisterRelationship(module, "unlink", Unlink)
}
