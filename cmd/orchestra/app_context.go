package main

import (
	"github.com/alexisbeaulieu97/orchestra/internal/logger"
	"github.com/alexisbeaulieu97/orchestra/internal/plugin"
	"github.com/alexisbeaulieu97/orchestra/internal/plugins/noop"
)

// AppContext bundles the dependencies every subcommand needs: a logger and
// the plugin registry operations resolve against. It is built once in
// main and threaded through cobra's RunE closures, mirroring the teacher's
// cmd/streamy AppContext.
type AppContext struct {
	Logger   *logger.Logger
	Registry *plugin.Registry
}

// newAppContext builds the default registry. orchestra/noop is registered
// unconditionally: it is the only operation implementation this module
// ships, used by anyone wiring a template before writing their own plugin
// package.
func newAppContext(log *logger.Logger) *AppContext {
	registry := plugin.NewRegistry()
	noop.Register(registry, "orchestra/noop")

	return &AppContext{
		Logger:   log,
		Registry: registry,
	}
}
