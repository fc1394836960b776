package registration

import (
	"github.com/tjfontaine/ethics-pipeline/internal/plugin/registry"
	"github.com/tjfontaine/ethics-pipeline/internal/plugins/adjust"
	"github.com/tjfontaine/ethics-pipeline/internal/plugins/clamp"
	"github.com/tjfontaine/ethics-pipeline/internal/plugins/rewrite"
	"github.com/tjfontaine/ethics-pipeline/internal/plugins/threshold"
)

// RegisterBuiltins registers the built-in plugin factories with c
// explicitly. This replaces init-based side effects and is intended to be
// called from cmd/ethicsctl, the runtime and tests before loading a pipeline.
func RegisterBuiltins(c *registry.Catalog) {
	adjust.RegisterFactory(c)
	clamp.RegisterFactory(c)
	threshold.RegisterFactory(c)
	rewrite.RegisterFactory(c)
}

// NewCatalog returns a catalog holding the built-in factories.
func NewCatalog() *registry.Catalog {
	c := registry.NewCatalog()
	RegisterBuiltins(c)
	return c
}
