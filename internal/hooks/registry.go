package hooks

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/nebari-dev/modelconfig/internal/config"
	"gorm.io/gorm"
)

// Deps are the shared resources handed to hook factories.
type Deps struct {
	DB     *gorm.DB
	Config config.ConfigurationConfig
	Logger *slog.Logger
}

// Factory constructs a hook instance.
type Factory func(deps Deps) (any, error)

// Registry maps hook names from configuration to factories. Names are resolved
// once, when the dispatcher is built.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in hooks.
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.Register("log", func(d Deps) (any, error) { return NewLogHook(d.Logger), nil })
	r.Register("audit", func(d Deps) (any, error) { return NewAuditHook(d.DB) })
	r.Register("pagination", func(d Deps) (any, error) {
		return NewPaginationHook(d.Config.Pagination.DefaultPerPage, d.Config.Pagination.MaxPerPage), nil
	})
	r.Register("envelope", func(d Deps) (any, error) { return NewEnvelopeHook("results"), nil })
	r.Register("valkey", func(d Deps) (any, error) {
		return NewValkeyHook(d.Config.Valkey.Addr, d.Config.Valkey.Channel)
	})
	return r
}

// Register adds or replaces a named factory.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Names lists registered hook names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build instantiates the named hooks in order and wraps them in a Dispatcher.
func (r *Registry) Build(names []string, deps Deps) (*Dispatcher, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	instances := make([]any, 0, len(names))
	release := func() {
		for _, h := range instances {
			if c, ok := h.(io.Closer); ok {
				c.Close()
			}
		}
	}
	for _, name := range names {
		f, ok := r.factories[name]
		if !ok {
			release()
			return nil, fmt.Errorf("unknown hook %q (available: %v)", name, r.Names())
		}
		h, err := f(deps)
		if err != nil {
			release()
			return nil, fmt.Errorf("failed to create hook %q: %w", name, err)
		}
		instances = append(instances, h)
		deps.Logger.Info("Registered configuration hook", "hook", name)
	}
	return NewDispatcher(instances...)
}
