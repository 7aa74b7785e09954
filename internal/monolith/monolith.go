// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/fd1az/prediction-arb/internal/config"
	"github.com/fd1az/prediction-arb/internal/di"
	"github.com/fd1az/prediction-arb/internal/logger"
	"github.com/fd1az/prediction-arb/internal/venue"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	VenueRegistry() *venue.Registry
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// Stopper is implemented by modules holding background work.
type Stopper interface {
	Shutdown(context.Context) error
}

type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	venueRegistry *venue.Registry
	container     di.Container
	modules       []Module
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface) *app {
	venues := venue.DefaultRegistry()

	container := di.NewContainer()

	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("venues", venues)

	return &app{
		config:        cfg,
		logger:        log,
		venueRegistry: venues,
		container:     container,
	}
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) VenueRegistry() *venue.Registry {
	return a.venueRegistry
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules in order.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
		a.modules = append(a.modules, m)
	}
	return nil
}

// Close stops started modules in reverse order and returns the first error.
func (a *app) Close(ctx context.Context) error {
	var first error
	for i := len(a.modules) - 1; i >= 0; i-- {
		s, ok := a.modules[i].(Stopper)
		if !ok {
			continue
		}
		if err := s.Shutdown(ctx); err != nil && first == nil {
			first = err
		}
	}
	a.modules = nil
	return first
}
