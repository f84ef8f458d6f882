package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrPoolClosed is returned by Acquire once Close has begun.
	ErrPoolClosed = errors.New("connection pool is shutting down")

	// ErrAcquireTimeout is returned when no connection becomes available
	// within the configured connection timeout.
	ErrAcquireTimeout = errors.New("timed out waiting for a connection")

	// ErrPoolExhausted is returned by the creation path when the pool is
	// already at MaxConnections. Acquire converts it into a wait; it only
	// escapes to callers of Initialize with a misconfigured pool.
	ErrPoolExhausted = errors.New("connection pool is at capacity")
)

// acquirePollInterval is how often a blocked Acquire re-checks for an idle
// connection. Wake-up latency after a Release is bounded by this interval.
const acquirePollInterval = 100 * time.Millisecond

// Pool owns a bounded collection of Connections and the acquisition
// protocol around them. All mutation of the two collections happens under
// mu; callers never touch them directly.
type Pool struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	conns    []*Connection // every live connection, bounded by MaxConnections
	idle     []*Connection // not lent out; reused LIFO
	reserved int           // creation slots claimed but not yet connected
	closed   bool

	// newConn is the creation seam; tests substitute it.
	newConn func() *Connection
}

// Status is a read-only snapshot of pool state for operational tooling.
type Status struct {
	TotalConnections     int `json:"total_connections"`
	AvailableConnections int `json:"available_connections"`
	MinConnections       int `json:"min_connections"`
	MaxConnections       int `json:"max_connections"`
}

// NewPool creates an empty pool bound to cfg. No connections are opened
// until Initialize or the first Acquire.
func NewPool(cfg Config, logger *zap.Logger) *Pool {
	p := &Pool{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "pool")),
	}
	p.newConn = func() *Connection { return New(cfg, logger) }
	return p
}

// Initialize eagerly creates MinConnections connections. If any creation
// fails after exhausting its retries, Initialize fails outright; it does not
// roll back connections already created.
func (p *Pool) Initialize(ctx context.Context) error {
	p.logger.Info("initializing connection pool",
		zap.Int("min_connections", p.cfg.MinConnections),
		zap.Int("max_connections", p.cfg.MaxConnections))

	for i := 0; i < p.cfg.MinConnections; i++ {
		conn, err := p.create(ctx)
		if err != nil {
			return fmt.Errorf("initializing pool: %w", err)
		}
		p.mu.Lock()
		p.idle = append(p.idle, conn)
		p.mu.Unlock()
	}

	p.logger.Info("connection pool ready", zap.Int("connections", p.cfg.MinConnections))
	return nil
}

// create builds and connects one Connection, retrying the handshake with
// linear backoff. The capacity slot is reserved up front so concurrent
// creations cannot overshoot MaxConnections while the lock is released for
// the (slow) connect.
func (p *Pool) create(ctx context.Context) (*Connection, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if len(p.conns)+p.reserved >= p.cfg.MaxConnections {
		p.mu.Unlock()
		return nil, ErrPoolExhausted
	}
	p.reserved++
	conn := p.newConn()
	p.mu.Unlock()

	err := Retry(ctx, p.logger, p.cfg.MaxRetries, p.cfg.RetryInterval, conn.Connect)

	p.mu.Lock()
	p.reserved--
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	p.conns = append(p.conns, conn)
	p.mu.Unlock()
	return conn, nil
}

// Acquire returns a connection for exclusive use by the caller. Released
// connections are reused most-recently-first, and no fairness is promised
// among concurrent waiters. Every connection is health-checked at hand-off;
// a stale one is discarded and the acquisition restarts, all under a single
// deadline derived from ConnectionTimeout.
func (p *Pool) Acquire(ctx context.Context) (*Connection, error) {
	deadline := time.Now().Add(p.cfg.ConnectionTimeout)

	// The attempt cap bounds the discard loop when every idle connection
	// turns out to be stale at once.
	for attempt := 0; attempt <= p.cfg.MaxConnections; attempt++ {
		conn, err := p.obtain(ctx, deadline)
		if err != nil {
			return nil, err
		}
		if conn.IsHealthy(ctx) {
			return conn, nil
		}
		p.logger.Warn("discarding unhealthy connection", zap.String("conn_id", conn.ID()))
		p.discard(conn)
	}
	return nil, fmt.Errorf("%w: repeated health-check failures", ErrAcquireTimeout)
}

// obtain runs the acquisition steps short of the health check: fail if
// closed, pop the idle stack, grow if below capacity, otherwise poll until
// a release or the deadline.
func (p *Pool) obtain(ctx context.Context, deadline time.Time) (*Connection, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}
		if n := len(p.idle); n > 0 {
			conn := p.idle[n-1]
			p.idle = p.idle[:n-1]
			p.mu.Unlock()
			return conn, nil
		}
		canGrow := len(p.conns)+p.reserved < p.cfg.MaxConnections
		p.mu.Unlock()

		if canGrow {
			conn, err := p.create(ctx)
			if err == nil {
				return conn, nil
			}
			if !errors.Is(err, ErrPoolExhausted) {
				return nil, err
			}
			// Lost the growth race; fall through to the wait path.
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w after %s", ErrAcquireTimeout, p.cfg.ConnectionTimeout)
		}
		wait := acquirePollInterval
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Release returns a borrowed connection to the idle stack. It is idempotent
// and ignores connections the pool does not own; safety over strictness.
func (p *Pool) Release(conn *Connection) {
	if conn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if !containsConn(p.conns, conn) || containsConn(p.idle, conn) {
		return
	}
	p.idle = append(p.idle, conn)
}

// discard removes a connection from the pool entirely and closes it
// best-effort. The close error is moot: the connection is being thrown away.
func (p *Pool) discard(conn *Connection) {
	p.mu.Lock()
	p.conns = removeConn(p.conns, conn)
	p.idle = removeConn(p.idle, conn)
	p.mu.Unlock()

	if err := conn.Close(); err != nil {
		p.logger.Warn("failed to close discarded connection",
			zap.String("conn_id", conn.ID()),
			zap.Error(err))
	}
}

// HealthCheck is a coarse liveness probe: acquire, check, release. Any
// failure along the way reads as unhealthy rather than an error.
func (p *Pool) HealthCheck(ctx context.Context) bool {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return false
	}
	healthy := conn.IsHealthy(ctx)
	p.Release(conn)
	return healthy
}

// Close drains the pool: acquisitions start failing immediately, every live
// connection is closed concurrently, and individual close failures are
// logged but never surfaced. The pool is inert afterwards.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	conns := p.conns
	p.conns = nil
	p.idle = nil
	p.mu.Unlock()

	p.logger.Info("closing connection pool", zap.Int("connections", len(conns)))

	var g errgroup.Group
	for _, conn := range conns {
		conn := conn
		g.Go(func() error {
			if err := conn.Close(); err != nil {
				p.logger.Warn("failed to close connection during shutdown",
					zap.String("conn_id", conn.ID()),
					zap.Error(err))
			}
			return nil
		})
	}
	g.Wait()

	p.logger.Info("connection pool closed")
}

// Status returns a snapshot of the pool's sizing and availability.
func (p *Pool) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		TotalConnections:     len(p.conns),
		AvailableConnections: len(p.idle),
		MinConnections:       p.cfg.MinConnections,
		MaxConnections:       p.cfg.MaxConnections,
	}
}

func containsConn(conns []*Connection, conn *Connection) bool {
	for _, c := range conns {
		if c == conn {
			return true
		}
	}
	return false
}

func removeConn(conns []*Connection, conn *Connection) []*Connection {
	for i, c := range conns {
		if c == conn {
			return append(conns[:i], conns[i+1:]...)
		}
	}
	return conns
}
