package nasc

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/toutaio/toutago-nasc-injector/config"
)

// Module groups related registrations.
//
// Example:
//
//	type LoggingModule struct{}
//
//	func (m *LoggingModule) Register(c *nasc.Container) error {
//	    return c.RegisterAll(
//	        nasc.Bind[Logger, *ConsoleLogger](),
//	        nasc.ValueProvider(LogLevel, "info"),
//	    )
//	}
type Module interface {
	Register(c *Container) error
}

// BootableModule is an optional interface for modules that need a boot phase.
// Boot is called by BootModules after all modules have been registered.
//
// Example:
//
//	func (m *DatabaseModule) Boot(c *nasc.Container) error {
//	    db, err := nasc.Get[*Database](c)
//	    if err != nil {
//	        return err
//	    }
//	    return db.Ping()
//	}
type BootableModule interface {
	Module
	Boot(c *Container) error
}

// ConditionalModule is an optional interface for modules that should only be
// registered in some configurations.
type ConditionalModule interface {
	Module
	ShouldRegister(c *Container) bool
}

// moduleEntry tracks a registered module.
type moduleEntry struct {
	module Module
	booted bool
}

// RegisterModule registers a module with the container.
// The module's Register method is called immediately. Registering the same
// module value twice is a no-op, also when both calls race.
func (c *Container) RegisterModule(module Module) error {
	if module == nil {
		return errors.New("module cannot be nil")
	}

	if conditional, ok := module.(ConditionalModule); ok && !conditional.ShouldRegister(c) {
		c.logger.Debug("module skipped", slog.String("module", fmt.Sprintf("%T", module)))
		return nil
	}

	if !c.reserveModule(module) {
		return nil
	}
	defer c.releaseModule(module)

	if err := module.Register(c); err != nil {
		return fmt.Errorf("module %T registration failed: %w", module, err)
	}

	c.mu.Lock()
	c.modules = append(c.modules, &moduleEntry{module: module})
	c.mu.Unlock()

	c.logger.Debug("module registered", slog.String("module", fmt.Sprintf("%T", module)))
	return nil
}

// reserveModule claims module for registration. It reports false when the
// same value is already registered or being registered. Values of
// non-comparable types are always accepted.
func (c *Container) reserveModule(module Module) bool {
	if !reflect.TypeOf(module).Comparable() {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pending[module]; ok {
		return false
	}
	for _, entry := range c.modules {
		if reflect.TypeOf(entry.module) == reflect.TypeOf(module) && entry.module == module {
			return false
		}
	}

	if c.pending == nil {
		c.pending = make(map[Module]struct{})
	}
	c.pending[module] = struct{}{}
	return true
}

func (c *Container) releaseModule(module Module) {
	if !reflect.TypeOf(module).Comparable() {
		return
	}

	c.mu.Lock()
	delete(c.pending, module)
	c.mu.Unlock()
}

// BootModules calls Boot on every registered BootableModule that has not been
// booted yet, in registration order. It stops at the first error; modules
// after the failing one stay unbooted and are retried on the next call.
// Concurrent calls are serialized so each module boots at most once.
func (c *Container) BootModules() error {
	c.bootMu.Lock()
	defer c.bootMu.Unlock()

	c.mu.Lock()
	entries := make([]*moduleEntry, len(c.modules))
	copy(entries, c.modules)
	c.mu.Unlock()

	for _, entry := range entries {
		c.mu.Lock()
		booted := entry.booted
		c.mu.Unlock()
		if booted {
			continue
		}

		bootable, ok := entry.module.(BootableModule)
		if !ok {
			continue
		}
		if err := bootable.Boot(c); err != nil {
			return fmt.Errorf("module %T boot failed: %w", entry.module, err)
		}

		c.mu.Lock()
		entry.booted = true
		c.mu.Unlock()
	}

	return nil
}

// Modules returns the registered modules in registration order.
func (c *Container) Modules() []Module {
	c.mu.Lock()
	defer c.mu.Unlock()

	modules := make([]Module, len(c.modules))
	for i, entry := range c.modules {
		modules[i] = entry.module
	}
	return modules
}

// ProvidersModule is a Module that registers a fixed list of providers.
type ProvidersModule []*Provider

// Register implements Module.
func (m ProvidersModule) Register(c *Container) error {
	return c.RegisterAll(m...)
}

// ConfigModule returns a module that registers a value provider for each
// token from the configuration values keyed by the token's identifier.
//
//	var Port = nasc.NewInjectionToken("http.port")
//	container.RegisterModule(nasc.ConfigModule(cfg, Port))
func ConfigModule(cfg *config.Config, tokens ...*InjectionToken) Module {
	return &configModule{cfg: cfg, tokens: tokens}
}

type configModule struct {
	cfg    *config.Config
	tokens []*InjectionToken
}

func (m *configModule) Register(c *Container) error {
	if m.cfg == nil {
		return errors.New("config cannot be nil")
	}

	providers, err := m.cfg.Providers(m.tokens...)
	if err != nil {
		return err
	}
	return c.RegisterAll(providers...)
}
