// Package ethics provides the public API for embedding the ethics pipeline.
// This is the stable API for external consumers.
package ethics

import (
	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
	"github.com/tjfontaine/ethics-pipeline/internal/pipeline"
	"github.com/tjfontaine/ethics-pipeline/internal/plugin/registry"
	"github.com/tjfontaine/ethics-pipeline/internal/registration"
	"github.com/tjfontaine/ethics-pipeline/internal/runtime"
)

// Runtime runs a pipeline built from configuration and reloads it when the
// configuration changes. See internal/runtime.Runtime.
type Runtime = runtime.Runtime

// Option is a functional option for configuring a Runtime.
type Option = runtime.Option

// New creates a new Runtime with the given options.
// Example:
//
//	rt, err := ethics.New(
//	    ethics.WithFileConfig("ethics.yaml"),
//	    ethics.WithEventHandler(func(ctx context.Context, e *ethics.RunEvent) error {
//	        log.Printf("%s %s", e.Type, e.RunID)
//	        return nil
//	    }),
//	)
var New = runtime.New

// Configuration options
var (
	// Config sources
	WithFileConfig     = runtime.WithFileConfig
	WithConfigProvider = runtime.WithConfigProvider
	WithoutWatch       = runtime.WithoutWatch

	// Plugin sources
	WithDescriptorSource = runtime.WithDescriptorSource
	WithDescriptors      = runtime.WithDescriptors
	WithPluginsFile      = runtime.WithPluginsFile
	WithEnvPlugins       = runtime.WithEnvPlugins

	// Storage
	WithSQLite          = runtime.WithSQLite
	WithMemoryStorage   = runtime.WithMemoryStorage
	WithStorageProvider = runtime.WithStorageProvider

	// Events
	WithEventHandler   = runtime.WithEventHandler
	WithLogEvents      = runtime.WithLogEvents
	WithEventPublisher = runtime.WithEventPublisher

	// Advanced options
	WithLogger            = runtime.WithLogger
	WithCatalog           = runtime.WithCatalog
	WithMetricsRegisterer = runtime.WithMetricsRegisterer
)

// Data model.
type (
	Action         = domain.Action
	Context        = domain.Context
	Value          = domain.Value
	Descriptor     = domain.Descriptor
	Verdict        = domain.Verdict
	PipelineResult = domain.PipelineResult
	PluginFailure  = domain.PluginFailure
	RunEvent       = domain.RunEvent
)

var (
	NewAction      = domain.NewAction
	ActionFromMap  = domain.ActionFromMap
	NewContext     = domain.NewContext
	ContextFromMap = domain.ContextFromMap
	NewVerdict     = domain.NewVerdict
	Number         = domain.Number
	Bool           = domain.Bool
)

// Plugins and their catalog.
type (
	Plugin     = ports.Plugin
	PluginFunc = ports.PluginFunc
	Factory    = registry.Factory
	Catalog    = registry.Catalog
)

// NewCatalog returns a catalog holding the built-in plugin types. Register
// custom factories on it and pass it to WithCatalog.
var NewCatalog = registration.NewCatalog

// Manager runs actions through a loaded pipeline without the runtime's
// configuration handling.
type Manager = pipeline.Manager

var (
	NewManager           = pipeline.NewManager
	NewManagerFromConfig = pipeline.NewManagerFromConfig
)

// Errors.
type (
	ConfigurationError       = domain.ConfigurationError
	DuplicateIdentifierError = domain.DuplicateIdentifierError
	PluginEvaluationError    = domain.PluginEvaluationError
)

var (
	ErrPipelineNotLoaded = domain.ErrPipelineNotLoaded
	ErrPluginNotFound    = pipeline.ErrPluginNotFound
)
