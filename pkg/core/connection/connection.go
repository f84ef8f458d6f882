// Package connection provides database connection pooling and management.
package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotConnected is returned when a statement is executed on a connection
// that has not completed Connect.
var ErrNotConnected = errors.New("connection is not established")

// Config holds the settings shared by every connection the pool creates.
type Config struct {
	Driver            string        // Go sql driver name (e.g. "sqlite3", "mysql")
	DSN               string        // Connection string
	ProbeSQL          string        // Cheap validation query; defaults to "SELECT 1"
	MinConnections    int           // Connections created eagerly by Initialize
	MaxConnections    int           // Hard upper bound on live connections
	ConnectionTimeout time.Duration // Maximum wait for an acquisition
	RetryInterval     time.Duration // Base delay between connect retries
	MaxRetries        int           // Connect attempts per connection
}

// DefaultConfig returns sensible defaults for a connection pool.
func DefaultConfig() Config {
	return Config{
		Driver:            "sqlite3",
		ProbeSQL:          "SELECT 1",
		MinConnections:    1,
		MaxConnections:    10,
		ConnectionTimeout: 30 * time.Second,
		RetryInterval:     5 * time.Second,
		MaxRetries:        3,
	}
}

// Connection wraps a single underlying database handle. It is owned by the
// Pool for its whole lifetime; callers only borrow it between Acquire and
// Release. The handle is opened with SetMaxOpenConns(1) so one Connection
// maps to exactly one engine link.
type Connection struct {
	id        string
	driver    string
	dsn       string
	probeSQL  string
	db        *sql.DB
	connected bool
	logger    *zap.Logger
}

// New creates an unconnected Connection bound to the given config.
func New(cfg Config, logger *zap.Logger) *Connection {
	probe := cfg.ProbeSQL
	if probe == "" {
		probe = "SELECT 1"
	}
	id := uuid.NewString()[:8]
	return &Connection{
		id:       id,
		driver:   cfg.Driver,
		dsn:      cfg.DSN,
		probeSQL: probe,
		logger:   logger.With(zap.String("component", "connection"), zap.String("conn_id", id)),
	}
}

// ID returns the connection's identifier, used in audit logs.
func (c *Connection) ID() string {
	return c.id
}

// DB returns the underlying handle for dialect introspection queries.
// It is nil before Connect succeeds.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Connect establishes the underlying handle and validates reachability with
// the probe query. It never retries; retry policy belongs to the pool.
func (c *Connection) Connect(ctx context.Context) error {
	db, err := sql.Open(c.driver, c.dsn)
	if err != nil {
		c.logger.Error("failed to open database handle",
			zap.String("target", c.dsn),
			zap.Error(err))
		return fmt.Errorf("opening %s handle: %w", c.driver, err)
	}
	// One engine link per Connection; lending discipline lives in the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, c.probeSQL); err != nil {
		db.Close()
		c.logger.Error("connection validation failed",
			zap.String("target", c.dsn),
			zap.Error(err))
		return fmt.Errorf("validating connection to %s: %w", c.dsn, err)
	}

	c.db = db
	c.connected = true
	c.logger.Info("connected to database", zap.String("target", c.dsn))
	return nil
}

// ResultSet holds the outcome of a single statement execution.
type ResultSet struct {
	Columns      []string        `json:"columns,omitempty"`
	Rows         [][]interface{} `json:"rows,omitempty"`
	RowCount     int             `json:"row_count"`
	RowsAffected int64           `json:"rows_affected"`
	LastInsertID int64           `json:"last_insert_id,omitempty"`
	Duration     time.Duration   `json:"duration"`
}

// Execute runs a statement with optional bound parameters. Both the attempt
// and the outcome are logged with timing; this is an audit trail, not
// optional instrumentation.
func (c *Connection) Execute(ctx context.Context, statement string, params ...interface{}) (*ResultSet, error) {
	if !c.connected {
		return nil, ErrNotConnected
	}

	c.logger.Debug("executing statement",
		zap.String("sql", statement),
		zap.Any("params", params))

	start := time.Now()

	if returnsRows(statement) {
		rows, err := c.db.QueryContext(ctx, statement, params...)
		elapsed := time.Since(start)
		if err != nil {
			c.logger.Error("statement failed",
				zap.String("sql", statement),
				zap.Duration("elapsed", elapsed),
				zap.Error(err))
			return nil, err
		}
		defer rows.Close()

		rs, err := collectRows(rows)
		if err != nil {
			return nil, err
		}
		rs.Duration = time.Since(start)
		c.logger.Info("statement executed",
			zap.String("sql", statement),
			zap.Int("rows_returned", rs.RowCount),
			zap.Duration("elapsed", rs.Duration))
		return rs, nil
	}

	res, err := c.db.ExecContext(ctx, statement, params...)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error("statement failed",
			zap.String("sql", statement),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}

	rs := &ResultSet{Duration: elapsed}
	if n, err := res.RowsAffected(); err == nil {
		rs.RowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		rs.LastInsertID = id
	}
	c.logger.Info("statement executed",
		zap.String("sql", statement),
		zap.Int64("rows_affected", rs.RowsAffected),
		zap.Duration("elapsed", elapsed))
	return rs, nil
}

// Transaction runs fn atomically. Commit and rollback outcomes are logged
// with elapsed time; a failed rollback is logged separately before the
// original error propagates.
func (c *Connection) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if !c.connected {
		return ErrNotConnected
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	c.logger.Debug("transaction started")
	start := time.Now()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.logger.Error("rollback failed", zap.Error(rbErr))
		}
		c.logger.Warn("transaction rolled back",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		c.logger.Error("commit failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return fmt.Errorf("committing transaction: %w", err)
	}

	c.logger.Info("transaction committed", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// IsHealthy reports whether the connection can still reach the engine.
// The probe is advisory; the underlying error is swallowed.
func (c *Connection) IsHealthy(ctx context.Context) bool {
	if !c.connected {
		return false
	}
	_, err := c.db.ExecContext(ctx, c.probeSQL)
	return err == nil
}

// Close releases the underlying handle. Close failures are logged and
// returned, not swallowed.
func (c *Connection) Close() error {
	if c.db == nil {
		c.connected = false
		return nil
	}
	err := c.db.Close()
	c.connected = false
	if err != nil {
		c.logger.Error("failed to close connection", zap.Error(err))
		return err
	}
	c.logger.Info("connection closed")
	return nil
}

// returnsRows reports whether a statement produces a row set rather than an
// affected-row count. Classification is by leading keyword; the engine stays
// authoritative on actual semantics.
func returnsRows(statement string) bool {
	switch firstKeyword(statement) {
	case "SELECT", "WITH", "EXPLAIN", "PRAGMA", "SHOW", "DESCRIBE", "VALUES":
		return true
	}
	return false
}

// firstKeyword returns the first SQL keyword, upper-cased, skipping line and
// block comments.
func firstKeyword(statement string) string {
	s := statement
	for {
		s = strings.TrimSpace(s)
		switch {
		case strings.HasPrefix(s, "--"):
			if i := strings.IndexByte(s, '\n'); i >= 0 {
				s = s[i+1:]
				continue
			}
			return ""
		case strings.HasPrefix(s, "/*"):
			if i := strings.Index(s, "*/"); i >= 0 {
				s = s[i+2:]
				continue
			}
			return ""
		}
		break
	}
	end := len(s)
	for i, r := range s {
		if !isKeywordChar(r) {
			end = i
			break
		}
	}
	return strings.ToUpper(s[:end])
}

func isKeywordChar(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// collectRows drains a row set into memory. Byte slices are copied to
// strings so results survive rows.Close and marshal cleanly.
func collectRows(rows *sql.Rows) (*ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rs.RowCount = len(rs.Rows)
	return rs, nil
}
