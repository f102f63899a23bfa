package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/databoy/dialect"
)

// QueryStats holds statement execution statistics.
type QueryStats struct {
	// TotalQueries is the number of row-returning statements executed.
	TotalQueries atomic.Int64
	// TotalExecs is the number of statements executed without rows.
	TotalExecs atomic.Int64
	// TotalDuration is the time spent executing statements, in nanoseconds.
	TotalDuration atomic.Int64
	// SlowQueries counts statements exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors counts failed statements.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// Statements returns the number of statements executed.
func (s StatsSnapshot) Statements() int64 { return s.TotalQueries + s.TotalExecs }

// AvgDuration returns the average statement duration.
func (s StatsSnapshot) AvgDuration() time.Duration {
	total := s.Statements()
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgDuration(),
		s.SlowQueries, s.Errors,
	)
}

// SlowQueryHook is called when a statement exceeds the slow threshold.
type SlowQueryHook func(ctx context.Context, query string, duration time.Duration)

// StatsDriver wraps a Provider with execution statistics.
type StatsDriver struct {
	dialect.Provider
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the threshold for slow statement detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements to the default logger.
func WithSlowQueryLog() StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = func(ctx context.Context, query string, duration time.Duration) {
			slog.WarnContext(ctx, "slow statement detected",
				"driver", driverName(s.Provider),
				"duration", duration,
				"sql", query,
			)
		}
	}
}

// driverName reports the database/sql driver behind p, or its vendor when
// p is not a Driver.
func driverName(p dialect.Provider) string {
	if n, ok := p.(interface{ DriverName() string }); ok {
		return n.DriverName()
	}
	return string(p.Vendor())
}

// NewStatsDriver wraps a Provider with statistics collection.
//
// Example:
//
//	drv, _ := sql.Open(dialect.SQLServer, dsn)
//	stats := sql.NewStatsDriver(drv, sql.WithSlowQueryLog())
//	session := databoy.NewSession(databoy.WithProvider(stats))
//	...
//	fmt.Println(stats.QueryStats().Stats())
func NewStatsDriver(p dialect.Provider, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Provider:      p,
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the underlying QueryStats for reading statistics.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the current slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold updates the slow statement threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// Query executes a query and records statistics.
func (d *StatsDriver) Query(ctx context.Context, query string, mode dialect.SelectMode) ([]dialect.Result, error) {
	start := time.Now()
	rows, err := d.Provider.Query(ctx, query, mode)
	d.record(ctx, query, start, err, true)
	return rows, err
}

// Exec executes a statement and records statistics.
func (d *StatsDriver) Exec(ctx context.Context, query string) error {
	start := time.Now()
	err := d.Provider.Exec(ctx, query)
	d.record(ctx, query, start, err, false)
	return err
}

func (d *StatsDriver) record(ctx context.Context, query string, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		d.stats.TotalQueries.Add(1)
	} else {
		d.stats.TotalExecs.Add(1)
	}
	d.stats.TotalDuration.Add(int64(duration))
	if err != nil {
		d.stats.Errors.Add(1)
	}

	d.mu.RLock()
	threshold := d.slowThreshold
	hook := d.slowHook
	d.mu.RUnlock()

	if duration > threshold {
		d.stats.SlowQueries.Add(1)
		if hook != nil {
			hook(ctx, query, duration)
		}
	}
}

// DebugDriver wraps a Provider with statement logging.
type DebugDriver struct {
	dialect.Provider
	log func(context.Context, ...any)
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLog sets a custom log function.
func DebugWithLog(logFunc func(context.Context, ...any)) DebugOption {
	return func(d *DebugDriver) {
		d.log = logFunc
	}
}

// DebugWithLogger logs statements through l at debug level.
func DebugWithLogger(l *slog.Logger) DebugOption {
	return DebugWithLog(func(ctx context.Context, v ...any) {
		l.DebugContext(ctx, fmt.Sprint(v...))
	})
}

// NewDebugDriver wraps a Provider with statement logging.
//
// Example:
//
//	drv, _ := sql.Open(dialect.SQLite, "file:test.db")
//	debug := sql.NewDebugDriver(drv, sql.DebugWithLog(func(ctx context.Context, v ...any) {
//	    log.Println(v...)
//	}))
func NewDebugDriver(p dialect.Provider, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Provider: p,
		log: func(_ context.Context, v ...any) {
			slog.Info(fmt.Sprint(v...))
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Query logs and executes a query.
func (d *DebugDriver) Query(ctx context.Context, query string, mode dialect.SelectMode) ([]dialect.Result, error) {
	d.log(ctx, fmt.Sprintf("query(%s): %s", mode, query))
	return d.Provider.Query(ctx, query, mode)
}

// Exec logs and executes a statement.
func (d *DebugDriver) Exec(ctx context.Context, query string) error {
	d.log(ctx, fmt.Sprintf("exec: %s", query))
	return d.Provider.Exec(ctx, query)
}

var (
	_ dialect.Provider = (*StatsDriver)(nil)
	_ dialect.Provider = (*DebugDriver)(nil)
)

// OpenWithStats opens a connection with statistics collection enabled.
func OpenWithStats(vendor dialect.Vendor, dsn string, opts ...StatsOption) (*StatsDriver, *QueryStats, error) {
	drv, err := Open(vendor, dsn)
	if err != nil {
		return nil, nil, err
	}
	stats := NewStatsDriver(drv, opts...)
	return stats, stats.QueryStats(), nil
}
