// Package planner implements C5: converting the parsed topology template
// into a deployment plan, the per-node ordered prerequisite list used to
// derive a dependency-respecting execution order. Grounded on
// original_source context.py's recursive_dependency_collector, simplified
// to a postorder DFS over sorted requirement targets, reversed once and
// deduplicated (verified by hand-tracing a diamond-dependency example)
// plus cycle detection, which original_source's planner lacks entirely
// (spec.md §9 open question 2: implementers MUST add it).
package planner

import (
	"sort"

	"github.com/alexisbeaulieu97/orchestra/internal/template"
	streamyerrors "github.com/alexisbeaulieu97/orchestra/pkg/errors"
)

// Plan is the output of Build: for every node, its ordered prerequisite
// list (the node itself first, its transitive dependencies following,
// deduplicated), plus a global order over all nodes. Callers that need
// a dependency-respecting sequence use GlobalOrder, which flattens these
// per-node lists correctly; a single node's own Prereqs entry is not
// itself a valid execution order.
type Plan struct {
	// Order lists every node name, ascending by len(Prereqs[name]).
	Order []string
	// Prereqs maps a node name to its ordered prerequisite list.
	Prereqs map[string][]string
}

// Build constructs a Plan from tmpl's node templates and their requirement
// edges. It fails with CyclicGraphError if the requirement graph has a
// cycle.
func Build(tmpl *template.Template) (*Plan, error) {
	byName := make(map[string]*template.NodeTemplate, len(tmpl.NodeTemplates))
	for i := range tmpl.NodeTemplates {
		byName[tmpl.NodeTemplates[i].Name] = &tmpl.NodeTemplates[i]
	}

	prereqs := make(map[string][]string, len(tmpl.NodeTemplates))
	for _, nt := range tmpl.NodeTemplates {
		list, err := collectPrereqs(nt.Name, byName)
		if err != nil {
			return nil, err
		}
		prereqs[nt.Name] = list
	}

	order := make([]string, 0, len(prereqs))
	for name := range prereqs {
		order = append(order, name)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if len(prereqs[order[i]]) != len(prereqs[order[j]]) {
			return len(prereqs[order[i]]) < len(prereqs[order[j]])
		}
		return order[i] < order[j]
	})

	return &Plan{Order: order, Prereqs: prereqs}, nil
}

// collectPrereqs computes prereq(root): a postorder DFS from root over
// sorted-by-name requirement targets (each target's subtree is fully
// visited, then root is appended), then reversed once and deduplicated
// keeping first occurrence. The result starts with root itself, followed
// by its dependencies; GlobalOrder relies only on root appearing first in
// its own list, not on any ordering among the rest.
func collectPrereqs(root string, byName map[string]*template.NodeTemplate) ([]string, error) {
	var traversal []string
	visiting := make(map[string]bool)

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		if visiting[name] {
			return streamyerrors.NewCyclicGraphError(append(append([]string{}, path...), name))
		}
		visiting[name] = true
		defer delete(visiting, name)

		nt, ok := byName[name]
		if !ok {
			traversal = append(traversal, name)
			return nil
		}

		targets := make([]string, len(nt.Requirements))
		for i, req := range nt.Requirements {
			targets[i] = req.Node
		}
		sort.Strings(targets)

		for _, target := range targets {
			if err := visit(target, append(path, name)); err != nil {
				return err
			}
		}
		traversal = append(traversal, name)
		return nil
	}

	if err := visit(root, nil); err != nil {
		return nil, err
	}

	reversed := make([]string, len(traversal))
	for i, name := range traversal {
		reversed[len(traversal)-1-i] = name
	}

	seen := make(map[string]bool, len(reversed))
	result := make([]string, 0, len(reversed))
	for _, name := range reversed {
		if seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}
	return result, nil
}
