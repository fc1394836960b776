// Package registry provides plugin factory registration and lookup.
//
// A Catalog maps descriptor types to factories. It replaces loading plugins
// by import path: every type a configuration may name has to be registered
// up front, and unknown types are rejected when the pipeline is loaded.
//
// # Adding a New Plugin
//
// Each plugin package exposes a registration function:
//
//	func RegisterFactory(c *registry.Catalog) {
//	    c.Register(registry.Factory{
//	        Type:           Type,
//	        Description:    "Clamps numeric attributes into a range",
//	        Create:         Create,
//	        ValidateParams: ValidateParams,
//	    })
//	}
//
// and is wired into registration.RegisterBuiltins.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
)

// Factory defines how to create a plugin of a specific type.
type Factory struct {
	// Type is the identifier used in descriptors (e.g. "adjust", "clamp").
	Type string

	// Description provides a human-readable description of the plugin.
	Description string

	// Create instantiates a plugin from its descriptor.
	Create func(desc domain.Descriptor) (ports.Plugin, error)

	// ValidateParams performs plugin-specific parameter validation.
	// Optional: if nil, no additional validation is performed.
	ValidateParams func(params map[string]any) error
}

// Catalog holds registered plugin factories. The zero value is not usable;
// use NewCatalog.
type Catalog struct {
	mu   sync.RWMutex
	byID map[string]Factory
	list []Factory
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]Factory)}
}

// Register adds a factory to the catalog.
// Panics if the factory is incomplete or its type is already registered,
// since both are programming errors in the registration code.
func (c *Catalog) Register(f Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f.Type == "" {
		panic("plugin factory type cannot be empty")
	}
	if f.Create == nil {
		panic(fmt.Sprintf("plugin factory %q must have a Create function", f.Type))
	}

	if _, exists := c.byID[f.Type]; exists {
		panic(fmt.Sprintf("plugin factory %q already registered", f.Type))
	}

	c.byID[f.Type] = f
	c.list = append(c.list, f)
}

// Get returns the factory for a plugin type, if registered.
func (c *Catalog) Get(pluginType string) (Factory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.byID[pluginType]
	return f, ok
}

// List returns all registered factories sorted by type.
func (c *Catalog) List() []Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Factory, len(c.list))
	copy(result, c.list)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Type < result[j].Type
	})
	return result
}

// Types returns all registered plugin type names.
func (c *Catalog) Types() []string {
	factories := c.List()
	types := make([]string, len(factories))
	for i, f := range factories {
		types[i] = f.Type
	}
	return types
}

// IsRegistered returns true if a plugin type is registered.
func (c *Catalog) IsRegistered(pluginType string) bool {
	_, ok := c.Get(pluginType)
	return ok
}

// Validate checks a descriptor against the catalog without creating the
// plugin. The returned error is a *domain.ConfigurationError.
func (c *Catalog) Validate(desc domain.Descriptor) error {
	_, err := c.resolve(desc)
	return err
}

// Create builds the plugin for a descriptor using the registered factory.
// The returned error is a *domain.ConfigurationError.
func (c *Catalog) Create(desc domain.Descriptor) (ports.Plugin, error) {
	f, err := c.resolve(desc)
	if err != nil {
		return nil, err
	}

	p, err := f.Create(desc)
	if err != nil {
		return nil, domain.NewConfigurationError(domain.ConfigErrorInstantiation, desc.Identifier(), err)
	}
	if p == nil {
		return nil, &domain.ConfigurationError{
			Kind:     domain.ConfigErrorInstantiation,
			PluginID: desc.Identifier(),
			Message:  fmt.Sprintf("factory %q returned a nil plugin", desc.Type),
		}
	}
	return p, nil
}

func (c *Catalog) resolve(desc domain.Descriptor) (Factory, error) {
	if err := desc.Validate(); err != nil {
		return Factory{}, domain.NewConfigurationError(domain.ConfigErrorMalformed, desc.Identifier(), err)
	}

	f, ok := c.Get(desc.Type)
	if !ok {
		return Factory{}, &domain.ConfigurationError{
			Kind:     domain.ConfigErrorUnknownType,
			PluginID: desc.Identifier(),
			Message:  fmt.Sprintf("unknown plugin type: %s (registered types: %v)", desc.Type, c.Types()),
		}
	}

	// Validate params if validator is provided
	if f.ValidateParams != nil {
		if err := f.ValidateParams(desc.Params); err != nil {
			return Factory{}, &domain.ConfigurationError{
				Kind:     domain.ConfigErrorMalformed,
				PluginID: desc.Identifier(),
				Message:  fmt.Sprintf("invalid params for plugin type %s", desc.Type),
				Err:      err,
			}
		}
	}
	return f, nil
}
