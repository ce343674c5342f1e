package plugin

import "sync"

var (
	globalOnce sync.Once
	globalReg  *Registry
)

// Global returns a process-wide shared Registry, lazily constructed. A
// Context normally owns its own Registry, but a host running several
// deployments from one process can opt into sharing a single registry here
// instead, mirroring aiorchestra's module-import-based plugin registry
// (which was implicitly process-global in Python).
func Global() *Registry {
	globalOnce.Do(func() {
		globalReg = NewRegistry()
	})
	return globalReg
}
