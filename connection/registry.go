// Package connection resolves connection keys to execution providers.
//
// A Registry holds named providers and implements databoy.Resolver:
//
//	reg := connection.NewRegistry()
//	if err := reg.Load(ctx, cfg); err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.Close()
//	s := databoy.ForConnection(reg, "reporting")
package connection

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/databoy/dialect"
	"github.com/syssam/databoy/dialect/sql"
)

// ProviderFactory creates providers for the provisioned vendor.
type ProviderFactory interface {
	CreateProvider(ctx context.Context, dsn string) (dialect.Provider, error)
}

// FactoryFunc adapts a function to a ProviderFactory.
type FactoryFunc func(ctx context.Context, dsn string) (dialect.Provider, error)

// CreateProvider implements ProviderFactory.
func (f FactoryFunc) CreateProvider(ctx context.Context, dsn string) (dialect.Provider, error) {
	return f(ctx, dsn)
}

// Registry maps connection names to providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]dialect.Provider
	order     []string
	def       string
	factory   ProviderFactory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]dialect.Provider)}
}

// SetFactory sets the factory used for provisioned connections.
func (r *Registry) SetFactory(f ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factory = f
}

// SetDefault names the connection resolved for the empty key.
func (r *Registry) SetDefault(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.def = name
}

// Register adds a provider under name, replacing any previous one.
func (r *Registry) Register(name string, p dialect.Provider) error {
	if name == "" {
		return fmt.Errorf("connection: empty connection name")
	}
	if p == nil {
		return fmt.Errorf("connection: nil provider for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.providers[name] = p
	return nil
}

// Names returns the registered connection names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Resolve returns the provider registered under key. The empty key
// selects the default connection, or the first registered one when no
// default is set.
func (r *Registry) Resolve(_ context.Context, key string) (dialect.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if key == "" {
		key = r.def
	}
	if key == "" {
		if len(r.order) == 0 {
			return nil, fmt.Errorf("connection: no connections registered")
		}
		key = r.order[0]
	}
	p, ok := r.providers[key]
	if !ok {
		return nil, fmt.Errorf("connection: unknown connection %q (registered: %v)", key, r.order)
	}
	return p, nil
}

// Open creates a provider for one configured connection.
func (r *Registry) Open(ctx context.Context, c Connection) (dialect.Provider, error) {
	dsn, err := c.ResolveDSN()
	if err != nil {
		return nil, err
	}
	if c.Vendor == dialect.Provisioned {
		r.mu.RLock()
		f := r.factory
		r.mu.RUnlock()
		if f == nil {
			return nil, fmt.Errorf("connection: %q is provisioned but no provider factory is set", c.Name)
		}
		p, err := f.CreateProvider(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connection: provision %q: %w", c.Name, err)
		}
		return p, nil
	}
	var opts []sql.Option
	if c.Driver != "" {
		opts = append(opts, sql.WithDriverName(c.Driver))
	}
	drv, err := sql.Open(c.Vendor, dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("connection: open %q: %w", c.Name, err)
	}
	return drv, nil
}

// Load opens and registers every connection of cfg.
func (r *Registry) Load(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, c := range cfg.Connections {
		p, err := r.Open(ctx, c)
		if err != nil {
			return err
		}
		if err := r.Register(c.Name, p); err != nil {
			return err
		}
	}
	if cfg.Default != "" {
		r.SetDefault(cfg.Default)
	}
	return nil
}

// Close closes every registered provider that implements io.Closer.
func (r *Registry) Close() error {
	r.mu.Lock()
	providers := make([]dialect.Provider, 0, len(r.order))
	for _, name := range r.order {
		providers = append(providers, r.providers[name])
	}
	r.providers = make(map[string]dialect.Provider)
	r.order = nil
	r.mu.Unlock()

	var g errgroup.Group
	for _, p := range providers {
		c, ok := p.(io.Closer)
		if !ok {
			continue
		}
		g.Go(c.Close)
	}
	return g.Wait()
}
