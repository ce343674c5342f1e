// Package plugin implements C1, the plugin resolver: it maps a
// "module:symbol" reference to an invokable operation and caches the
// resolution. Dynamic module loading (spec.md §4.1) is replaced with the
// static-registry redesign spec.md §9 calls for: plugins register their
// operations under a module namespace at startup, and templates reference
// them by the same "module:symbol" string they would under dynamic loading.
package plugin

import "context"

// NodeHandle is the narrow view of a runtime node that operation
// implementations receive. It is declared here, rather than imported from
// internal/runtime, so that plugin has no dependency on the runtime package
// (runtime depends on plugin, not the reverse).
type NodeHandle interface {
	Name() string
	Properties() (map[string]any, error)
	Attributes() map[string]any
	RuntimeProperties() map[string]any
	UpdateRuntimeProperty(key string, value any)
	BatchUpdateRuntimeProperties(kv map[string]any)
	RemoveRuntimeProperty(key string)
}

// StandardOperation implements a single Standard lifecycle event
// (create/configure/start/stop/delete) for one node.
type StandardOperation func(ctx context.Context, node NodeHandle, inputs map[string]any) error

// RelationshipOperation implements a single Configure event (link/unlink)
// for an edge from source to target.
type RelationshipOperation func(ctx context.Context, source, target NodeHandle, inputs map[string]any) error
