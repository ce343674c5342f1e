package plugin

import (
	"strings"
	"sync"

	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

// Registry is the static module:symbol registry described in spec.md §4.1
// and §9. Plugins register their Standard/Relationship operations under a
// module namespace during startup; Resolve then behaves exactly like the
// dynamic-import contract it replaces: an unknown module is
// PluginNotFoundError, an unknown symbol within a known module is
// OperationNotFoundError, and successful resolutions are cached by the raw
// reference string.
type Registry struct {
	mu sync.RWMutex

	standard     map[string]map[string]StandardOperation
	relationship map[string]map[string]RelationshipOperation

	standardCache     map[string]StandardOperation
	relationshipCache map[string]RelationshipOperation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		standard:          make(map[string]map[string]StandardOperation),
		relationship:      make(map[string]map[string]RelationshipOperation),
		standardCache:     make(map[string]StandardOperation),
		relationshipCache: make(map[string]RelationshipOperation),
	}
}

// RegisterStandard adds a Standard lifecycle operation under module:symbol.
func (r *Registry) RegisterStandard(module, symbol string, op StandardOperation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.standard[module] == nil {
		r.standard[module] = make(map[string]StandardOperation)
	}
	r.standard[module][symbol] = op
	delete(r.standardCache, module+":"+symbol)
}

// RegisterRelationship adds a Configure relationship operation under
// module:symbol.
func (r *Registry) RegisterRelationship(module, symbol string, op RelationshipOperation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.relationship[module] == nil {
		r.relationship[module] = make(map[string]RelationshipOperation)
	}
	r.relationship[module][symbol] = op
	delete(r.relationshipCache, module+":"+symbol)
}

// splitRef validates and splits a "module:symbol" reference.
func splitRef(ref string) (module, symbol string, err error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", streamyerrors.NewInvalidReferenceError(ref)
	}
	return parts[0], parts[1], nil
}

// ResolveStandard resolves a "module:symbol" reference to a StandardOperation.
func (r *Registry) ResolveStandard(ref string) (StandardOperation, error) {
	r.mu.RLock()
	if cached, ok := r.standardCache[ref]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	module, symbol, err := splitRef(ref)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	symbols, ok := r.standard[module]
	if !ok {
		return nil, streamyerrors.NewPluginNotFoundError(module)
	}
	op, ok := symbols[symbol]
	if !ok {
		return nil, streamyerrors.NewOperationNotFoundError(module, symbol)
	}
	r.standardCache[ref] = op
	return op, nil
}

// ResolveRelationship resolves a "module:symbol" reference to a
// RelationshipOperation.
func (r *Registry) ResolveRelationship(ref string) (RelationshipOperation, error) {
	r.mu.RLock()
	if cached, ok := r.relationshipCache[ref]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	module, symbol, err := splitRef(ref)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	symbols, ok := r.relationship[module]
	if !ok {
		return nil, streamyerrors.NewPluginNotFoundError(module)
	}
	op, ok := symbols[symbol]
	if !ok {
		return nil, streamyerrors.NewOperationNotFoundError(module, symbol)
	}
	r.relationshipCache[ref] = op
	return op, nil
}
