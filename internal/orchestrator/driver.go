// Package orchestrator implements C6, the lifecycle driver: it turns a
// Plan into the global sequenced node order spec.md §4.6 defines, then
// drives deploy's create/configure/start passes and undeploy's
// delete/stop-then-reverse pass across it. It depends only on
// internal/planner and internal/runtime, not on internal/deployment, so
// that the Context facade can own the driver without a dependency cycle.
package orchestrator

import (
	"context"

	"github.com/alexisbeaulieu97/orchestra/internal/planner"
	"github.com/alexisbeaulieu97/orchestra/internal/runtime"
)

// GlobalOrder computes spec.md §4.6's global sequenced node list: iterate
// plan.Order (already sorted ascending by prerequisite-list length), and
// for each entry iterate its prerequisite list in order, appending each
// node name the first time it is seen. The result is a topological-ish
// order where every node's prerequisites precede it.
func GlobalOrder(plan *planner.Plan) []string {
	seen := make(map[string]bool, len(plan.Order))
	order := make([]string, 0, len(plan.Order))
	for _, name := range plan.Order {
		for _, prereq := range plan.Prereqs[name] {
			if seen[prereq] {
				continue
			}
			seen[prereq] = true
			order = append(order, prereq)
		}
	}
	return order
}

// prereqNodes resolves name's prerequisite-name list (excluding unknown
// names, which should not occur for a validated plan) into live *Node
// pointers, in order.
func prereqNodes(name string, nodes map[string]*runtime.Node, plan *planner.Plan) []*runtime.Node {
	names := plan.Prereqs[name]
	result := make([]*runtime.Node, 0, len(names))
	for _, pn := range names {
		if n, ok := nodes[pn]; ok {
			result = append(result, n)
		}
	}
	return result
}

// Deploy runs the create, configure, start passes in strict order across
// the global sequenced node list, per spec.md §4.6: "All tasks from all
// three passes are concatenated into one sequence and awaited one by one."
// Three sequential per-pass loops produce the identical order, since
// execution here is single-threaded (spec.md §5).
//
// failed reports whether any node's event failed even though the error was
// swallowed by the operation wrapper under rollback mode (see
// runtime.Node.FailedLastEvent); the caller uses this to set status FAILED
// even when err is nil. A non-nil err means rollback was not enabled (or
// ctx was canceled, which is checked outside the wrapper) and the caller
// should abort immediately without running later passes.
func Deploy(ctx context.Context, nodes map[string]*runtime.Node, plan *planner.Plan) (failed bool, err error) {
	order := GlobalOrder(plan)
	passes := []func(*runtime.Node) error{
		func(n *runtime.Node) error { return n.Create(ctx, prereqNodes(n.Name(), nodes, plan)) },
		func(n *runtime.Node) error { return n.Configure(ctx) },
		func(n *runtime.Node) error { return n.Start(ctx) },
	}

	for _, pass := range passes {
		for _, name := range order {
			if err := ctx.Err(); err != nil {
				return true, err
			}
			n := nodes[name]
			if err := pass(n); err != nil {
				return true, err
			}
			if n.FailedLastEvent() {
				failed = true
			}
		}
	}
	return failed, nil
}

// Undeploy builds the delete pass (global order) then the stop pass
// (global order) into one flat task list and runs the whole list reversed,
// per spec.md §9 open question 1 (resolved exactly as original_source's
// context.py does it: delete-then-stop, concatenated, then the whole slice
// reversed — so every node's stop fires, in reverse global order, before
// any node's delete fires). Any error aborts immediately and propagates.
func Undeploy(ctx context.Context, nodes map[string]*runtime.Node, plan *planner.Plan) error {
	order := GlobalOrder(plan)

	type task func() error
	tasks := make([]task, 0, len(order)*2)

	for _, name := range order {
		n := nodes[name]
		tasks = append(tasks, func() error { return n.Delete(ctx, prereqNodes(n.Name(), nodes, plan)) })
	}
	for _, name := range order {
		n := nodes[name]
		tasks = append(tasks, func() error { return n.Stop(ctx) })
	}

	for i := len(tasks) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := tasks[i](); err != nil {
			return err
		}
	}
	return nil
}
