package compiler

import (
	"github.com/roach88/dynsel/internal/ir"
	"github.com/roach88/dynsel/internal/registry"
)

// Apply registers compiled specs in order. Later specs with the same
// public name overwrite earlier ones, as the registry does.
func Apply(reg *registry.Registry, specs []ir.EntitySpec) {
	for _, spec := range specs {
		reg.Register(spec)
	}
}
