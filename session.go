package databoy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syssam/databoy/dialect"
	"github.com/syssam/databoy/naming"
)

// Resolver maps a connection key to an execution provider.
// connection.Registry is the standard implementation.
type Resolver interface {
	Resolve(ctx context.Context, key string) (dialect.Provider, error)
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc func(ctx context.Context, key string) (dialect.Provider, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, key string) (dialect.Provider, error) {
	return f(ctx, key)
}

// Session accumulates batches and commits them in one pass.
type Session struct {
	resolver    Resolver
	key         string
	registry    *Registry
	logger      *slog.Logger
	conventions naming.Conventions
	batches     []*Batch
	errs        []error
	committed   bool
}

// Option configures a Session.
type Option func(*Session)

// WithProvider commits the session through p.
func WithProvider(p dialect.Provider) Option {
	return func(s *Session) {
		s.resolver = ResolverFunc(func(context.Context, string) (dialect.Provider, error) {
			return p, nil
		})
	}
}

// WithResolver resolves the provider through r when the session commits.
func WithResolver(r Resolver) Option {
	return func(s *Session) { s.resolver = r }
}

// WithConnection sets the connection key passed to the resolver.
// The empty key selects the resolver's default connection.
func WithConnection(key string) Option {
	return func(s *Session) { s.key = key }
}

// WithRegistry shares a return-value registry between sessions.
func WithRegistry(r *Registry) Option {
	return func(s *Session) { s.registry = r }
}

// WithLogger sets the session logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithConventions sets the naming conventions used by Entity.
func WithConventions(c naming.Conventions) Option {
	return func(s *Session) { s.conventions = c }
}

// NewSession returns an empty session.
func NewSession(opts ...Option) *Session {
	s := &Session{conventions: naming.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// ForConnection returns a session resolving its provider through r under key.
func ForConnection(r Resolver, key string, opts ...Option) *Session {
	return NewSession(append([]Option{WithResolver(r), WithConnection(key)}, opts...)...)
}

// Registry returns the session's return-value registry.
func (s *Session) Registry() *Registry { return s.registry }

// Batches returns the batches in declaration order.
func (s *Session) Batches() []*Batch { return s.batches }

// ForTable appends a new batch for table. Repeated names create
// independent batches.
func (s *Session) ForTable(table string) *Batch {
	if table == "" {
		s.record(&NullArgumentError{Name: "table"})
	}
	b := &Batch{session: s, table: table}
	s.batches = append(s.batches, b)
	return b
}

// Entity appends a row built from a struct using the session conventions.
func (s *Session) Entity(v any) *Row {
	desc, err := s.conventions.Describe(v)
	if err != nil {
		s.record(err)
		return newRow(&Batch{session: s})
	}
	r := s.ForTable(desc.Table).Row(desc.IDColumn, desc.ID)
	for _, f := range desc.Fields {
		r.Data(f.Column, f.Value)
	}
	return r
}

// Err returns the errors recorded while building the session.
func (s *Session) Err() error { return errors.Join(s.errs...) }

func (s *Session) record(err error) { s.errs = append(s.errs, err) }

func (s *Session) provider(ctx context.Context) (dialect.Provider, error) {
	if s.resolver == nil {
		return nil, ErrNoProvider
	}
	p, err := s.resolver.Resolve(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("databoy: resolve connection %q: %w", s.key, err)
	}
	if p == nil {
		return nil, ErrNoProvider
	}
	return p, nil
}

// Commit executes the session.
//
// Rows marked DeleteFirst are deleted first, walking batches and rows in
// reverse declaration order. Every row is then written in declaration
// order, each followed by its return-value reads. The first failure stops
// the commit; statements already executed are not rolled back.
//
// Errors recorded while building the session are returned before any
// statement runs.
func (s *Session) Commit(ctx context.Context) error {
	if s.committed {
		return ErrSessionCommitted
	}
	if err := s.Err(); err != nil {
		return err
	}
	p, err := s.provider(ctx)
	if err != nil {
		return err
	}
	s.committed = true

	start := time.Now()
	lp := &loggedProvider{Provider: p, logger: s.logger}
	lp.phase = "delete"
	for i := len(s.batches) - 1; i >= 0; i-- {
		rows := s.batches[i].rows
		for j := len(rows) - 1; j >= 0; j-- {
			if err := rows[j].DoDelete(ctx, lp); err != nil {
				return err
			}
		}
	}
	lp.phase = "write"
	var nrows int
	for _, b := range s.batches {
		for _, r := range b.rows {
			if err := r.DoWrite(ctx, lp); err != nil {
				return err
			}
			nrows++
		}
	}
	s.logger.InfoContext(ctx, "databoy: commit finished",
		"batches", len(s.batches),
		"rows", nrows,
		"statements", lp.count.Load(),
		"duration", time.Since(start),
	)
	return nil
}

// Exec runs stmt immediately through the session provider.
func (s *Session) Exec(ctx context.Context, stmt string) error {
	p, err := s.provider(ctx)
	if err != nil {
		return err
	}
	if err := p.Exec(ctx, stmt); err != nil {
		return &ProviderError{Op: "exec", Statement: stmt, Err: err}
	}
	return nil
}

// Query starts a value query on table through the session provider.
func (s *Session) Query(ctx context.Context, table string) (*ValueQuery, error) {
	p, err := s.provider(ctx)
	if err != nil {
		return nil, err
	}
	return QueryTable(p, table), nil
}

// loggedProvider logs and counts the statements of a commit.
type loggedProvider struct {
	dialect.Provider
	logger *slog.Logger
	phase  string
	count  atomic.Int64
}

func (p *loggedProvider) Exec(ctx context.Context, query string) error {
	p.count.Add(1)
	p.logger.DebugContext(ctx, "databoy: exec", "phase", p.phase, "sql", query)
	return p.Provider.Exec(ctx, query)
}

func (p *loggedProvider) Query(ctx context.Context, query string, mode dialect.SelectMode) ([]dialect.Result, error) {
	p.count.Add(1)
	p.logger.DebugContext(ctx, "databoy: query", "phase", p.phase, "sql", query)
	return p.Provider.Query(ctx, query, mode)
}
