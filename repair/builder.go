package repair

import (
	"context"
	"fmt"

	"github.com/hearthwatch/sdk/events"
)

// Config holds configuration for building a repair using the SDK.
// This provides a flexible way to define repair behavior without
// implementing the full Repair interface from scratch.
type Config struct {
	name         string
	description  string
	events       []events.Type
	inspectFunc  InspectFunc
	initFunc     InitFunc
	shutdownFunc ShutdownFunc
}

// InspectFunc is the function signature for repair inspections.
// Implementations should examine the environment and reconcile the
// issues their findings warrant.
type InspectFunc func(ctx context.Context, env *Environment) error

// InitFunc is the function signature for repair initialization.
// Implementations should prepare the repair for inspections.
type InitFunc func(ctx context.Context, config map[string]any) error

// ShutdownFunc is the function signature for repair shutdown.
// Implementations should release resources and perform cleanup.
type ShutdownFunc func(ctx context.Context) error

// NewConfig creates a new repair configuration with default values.
func NewConfig() *Config {
	return &Config{
		events: []events.Type{},
	}
}

// SetName sets the repair name.
// The name should be a unique, snake_case identifier; it scopes the
// issues the repair raises.
func (c *Config) SetName(name string) *Config {
	c.name = name
	return c
}

// SetDescription sets the repair description.
// Should explain what the repair inspects and its purpose.
func (c *Config) SetDescription(desc string) *Config {
	c.description = desc
	return c
}

// SetEvents sets the event types that schedule the repair.
// An empty list subscribes the repair to every catalog event.
func (c *Config) SetEvents(types []events.Type) *Config {
	c.events = types
	return c
}

// AddEvent adds a single event type to the repair's subscriptions.
func (c *Config) AddEvent(t events.Type) *Config {
	c.events = append(c.events, t)
	return c
}

// SetInspectFunc sets the function that performs inspections.
// This is the core repair logic.
func (c *Config) SetInspectFunc(fn InspectFunc) *Config {
	c.inspectFunc = fn
	return c
}

// SetInitFunc sets the function that initializes the repair.
// If not set, a default no-op implementation is used.
func (c *Config) SetInitFunc(fn InitFunc) *Config {
	c.initFunc = fn
	return c
}

// SetShutdownFunc sets the function that shuts down the repair.
// If not set, a default no-op implementation is used.
func (c *Config) SetShutdownFunc(fn ShutdownFunc) *Config {
	c.shutdownFunc = fn
	return c
}

// Validate checks if the configuration is valid and complete.
func (c *Config) Validate() error {
	if c.name == "" {
		return fmt.Errorf("repair name is required")
	}
	if c.description == "" {
		return fmt.Errorf("repair description is required")
	}
	if c.inspectFunc == nil {
		return fmt.Errorf("inspect function is required")
	}
	return nil
}

// New creates a new repair from the configuration.
// Returns an error if the configuration is invalid.
func New(cfg *Config) (Repair, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid repair config: %w", err)
	}

	// Set defaults for optional functions
	initFunc := cfg.initFunc
	if initFunc == nil {
		initFunc = func(ctx context.Context, config map[string]any) error {
			return nil
		}
	}

	shutdownFunc := cfg.shutdownFunc
	if shutdownFunc == nil {
		shutdownFunc = func(ctx context.Context) error {
			return nil
		}
	}

	return &sdkRepair{
		name:         cfg.name,
		description:  cfg.description,
		events:       cfg.events,
		inspectFunc:  cfg.inspectFunc,
		initFunc:     initFunc,
		shutdownFunc: shutdownFunc,
	}, nil
}

// sdkRepair is the internal implementation of the Repair interface.
// It wraps user-provided functions to implement the full Repair
// interface along with the optional Initializer and Shutdowner
// interfaces.
type sdkRepair struct {
	name         string
	description  string
	events       []events.Type
	inspectFunc  InspectFunc
	initFunc     InitFunc
	shutdownFunc ShutdownFunc
}

// Name returns the repair's unique identifier.
func (r *sdkRepair) Name() string {
	return r.name
}

// Description returns a description of what the repair inspects.
func (r *sdkRepair) Description() string {
	return r.description
}

// Events returns the event types that schedule the repair.
func (r *sdkRepair) Events() []events.Type {
	return r.events
}

// Inspect performs an inspection using the configured inspect function.
func (r *sdkRepair) Inspect(ctx context.Context, env *Environment) error {
	return r.inspectFunc(ctx, env)
}

// Initialize calls the configured init function.
func (r *sdkRepair) Initialize(ctx context.Context, config map[string]any) error {
	return r.initFunc(ctx, config)
}

// Shutdown calls the configured shutdown function.
func (r *sdkRepair) Shutdown(ctx context.Context) error {
	return r.shutdownFunc(ctx)
}
