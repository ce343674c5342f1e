// Package operation implements C8: the uniform entry/exit logging and
// rollback-aware error policy that wraps every plugin-invoked operation.
// spec.md §9 replaces the teacher's (and aiorchestra's) decorator-based
// wrapping with an explicit higher-order function composing logging and
// error policy around a plain func() error.
package operation

import (
	"github.com/alexisbeaulieu97/orchestra/internal/logger"
)

// Environment is the minimal context an invocation needs: somewhere to log
// and whether rollback-mode error swallowing is in effect.
type Environment interface {
	Logger() *logger.Logger
	RollbackEnabled() bool
}

// Invoke runs fn with entry/exit/error logging. If the environment has
// rollback enabled, an error from fn is logged and swallowed (nil is
// returned); otherwise it propagates to the caller unchanged.
//
// Node, the string "node" is the node name and event the lifecycle or
// relationship event name, purely for log context.
func Invoke(env Environment, node, event string, fn func() error) error {
	log := env.Logger()
	log.Debug("invoking operation", "node", node, "event", event)

	err := fn()
	if err != nil {
		log.Error(err, "operation failed", "node", node, "event", event)
		if env.RollbackEnabled() {
			log.Info("rollback enabled, swallowing operation error", "node", node, "event", event)
			return nil
		}
		return err
	}

	log.Debug("operation finished", "node", node, "event", event)
	return nil
}
