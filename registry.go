package databoy

import (
	"context"
	"fmt"
	"sync"

	"github.com/syssam/databoy/dialect"
)

// ReturnValueCommand reads a column back from a row after the row has been
// written. Unkeyed commands feed the registry's last value; keyed commands
// are stored under their key.
type ReturnValueCommand struct {
	table    string
	column   string
	idColumn string
	id       any
	key      string

	mu       sync.Mutex
	value    any
	resolved bool
}

// Key returns the registry key, or "" for an unkeyed command.
func (c *ReturnValueCommand) Key() string { return c.key }

// Column returns the column read back by the command.
func (c *ReturnValueCommand) Column() string { return c.column }

// Statement returns the SELECT used to read the value.
func (c *ReturnValueCommand) Statement() string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", c.column, c.table, c.idColumn, dialect.Literal(c.id))
}

// Value returns the resolved value and whether the command has run.
func (c *ReturnValueCommand) Value() (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.resolved
}

// resolve runs the SELECT through p and stores the first column of the
// first row.
func (c *ReturnValueCommand) resolve(ctx context.Context, p dialect.Provider) error {
	stmt := c.Statement()
	rows, err := p.Query(ctx, stmt, dialect.SelectSingle)
	if err != nil {
		return &ProviderError{Op: "query", Table: c.table, Statement: stmt, Err: err}
	}
	if len(rows) == 0 {
		return &MissingReturnValueError{Key: c.key, Reason: fmt.Sprintf("no row returned by %q", stmt)}
	}
	v, ok := rows[0].First()
	if !ok {
		return &MissingReturnValueError{Key: c.key, Reason: fmt.Sprintf("no column returned by %q", stmt)}
	}
	c.mu.Lock()
	c.value, c.resolved = v, true
	c.mu.Unlock()
	return nil
}

// ValueStore keeps resolved keyed values beyond a single registry, for
// example to share generated keys between test processes.
type ValueStore interface {
	// Put stores a value. It returns a *DuplicateReturnKeyError when the key
	// already holds a value.
	Put(ctx context.Context, key string, value any) error
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) (any, bool, error)
	// Clear removes every stored value.
	Clear(ctx context.Context) error
}

// Registry holds return-value commands for one or more sessions.
//
// Each session owns a fresh Registry unless WithRegistry shares one. The
// registry is safe for concurrent use, but sessions sharing key names must
// still commit in order.
type Registry struct {
	mu    sync.Mutex
	last  *ReturnValueCommand
	keyed map[string]*ReturnValueCommand
	store ValueStore
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithValueStore publishes resolved keyed values to s and falls back to it
// for keys not registered locally.
func WithValueStore(s ValueStore) RegistryOption {
	return func(r *Registry) { r.store = s }
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{keyed: make(map[string]*ReturnValueCommand)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register records cmd. An unkeyed command replaces the last value; a
// keyed command fails when its key is already registered.
func (r *Registry) Register(cmd *ReturnValueCommand) error {
	if cmd == nil {
		return &NullArgumentError{Name: "command"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cmd.key == "" {
		r.last = cmd
		return nil
	}
	if _, ok := r.keyed[cmd.key]; ok {
		return &DuplicateReturnKeyError{Key: cmd.key}
	}
	r.keyed[cmd.key] = cmd
	return nil
}

// LastValue returns the value of the last registered unkeyed command.
func (r *Registry) LastValue() (any, error) {
	r.mu.Lock()
	cmd := r.last
	r.mu.Unlock()
	if cmd == nil {
		return nil, &MissingReturnValueError{Reason: "no return value is registered"}
	}
	v, ok := cmd.Value()
	if !ok {
		return nil, &MissingReturnValueError{Reason: "registered but not yet resolved"}
	}
	return v, nil
}

// ValueAt returns the value registered under key.
func (r *Registry) ValueAt(ctx context.Context, key string) (any, error) {
	if key == "" {
		return nil, &NullArgumentError{Name: "key"}
	}
	r.mu.Lock()
	cmd, ok := r.keyed[key]
	store := r.store
	r.mu.Unlock()
	if ok {
		v, resolved := cmd.Value()
		if !resolved {
			return nil, &MissingReturnValueError{Key: key, Reason: "registered but not yet resolved"}
		}
		return v, nil
	}
	if store != nil {
		v, found, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("databoy: value store: get %q: %w", key, err)
		}
		if found {
			return v, nil
		}
	}
	return nil, &MissingReturnValueError{Key: key}
}

// Reset forgets every command and clears the value store.
func (r *Registry) Reset(ctx context.Context) error {
	r.mu.Lock()
	r.last = nil
	r.keyed = make(map[string]*ReturnValueCommand)
	store := r.store
	r.mu.Unlock()
	if store != nil {
		if err := store.Clear(ctx); err != nil {
			return fmt.Errorf("databoy: value store: clear: %w", err)
		}
	}
	return nil
}

// publish hands a resolved keyed value to the value store.
func (r *Registry) publish(ctx context.Context, cmd *ReturnValueCommand) error {
	r.mu.Lock()
	store := r.store
	r.mu.Unlock()
	if store == nil || cmd.key == "" {
		return nil
	}
	v, _ := cmd.Value()
	if err := store.Put(ctx, cmd.key, v); err != nil {
		return fmt.Errorf("databoy: value store: put %q: %w", cmd.key, err)
	}
	return nil
}
