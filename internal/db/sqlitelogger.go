package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// QueryObserver receives the duration of every statement run through a
// logging connector. op is "exec" or "query".
type QueryObserver func(op string, elapsed time.Duration)

// loggingConnector opens sqlite3 connections and wraps them so every statement
// is logged at debug level.
type loggingConnector struct {
	dsn     string
	logger  *slog.Logger
	observe QueryObserver
	driver  *sqlite3.SQLiteDriver
}

type loggingConn struct {
	conn *sqlite3.SQLiteConn
	c    *loggingConnector
}

type loggingStmt struct {
	stmt  driver.Stmt
	query string
	c     *loggingConnector
}

// NewLoggingConnector returns a driver.Connector for dsn that logs each
// statement with its arguments and duration. Use sql.OpenDB(connector).
// A nil logger means slog.Default(); observe may be nil.
func NewLoggingConnector(dsn string, logger *slog.Logger, observe QueryObserver) (driver.Connector, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite3-log: empty dsn")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingConnector{dsn: dsn, logger: logger, observe: observe, driver: &sqlite3.SQLiteDriver{}}, nil
}

func (c *loggingConnector) Driver() driver.Driver {
	return c.driver
}

func (c *loggingConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.driver.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	sc, ok := conn.(*sqlite3.SQLiteConn)
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("sqlite3-log: unexpected connection type %T", conn)
	}
	return &loggingConn{conn: sc, c: c}, nil
}

func (c *loggingConnector) log(ctx context.Context, op, query string, args []driver.NamedValue, start time.Time, err error) {
	elapsed := time.Since(start)
	if c.observe != nil {
		c.observe(op, elapsed)
	}
	attrs := []any{
		"op", op,
		"sql", query,
		"args", formatArgs(args),
		"duration", elapsed,
	}
	if err != nil && !errors.Is(err, driver.ErrSkip) {
		attrs = append(attrs, "error", err)
	}
	c.logger.DebugContext(ctx, "sql", attrs...)
}

func (c *loggingConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *loggingConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	stmt, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &loggingStmt{stmt: stmt, query: query, c: c.c}, nil
}

// ExecContext runs query directly on the connection, which lets sqlite3
// execute scripts holding several statements.
func (c *loggingConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	start := time.Now()
	res, err := c.conn.ExecContext(ctx, query, args)
	c.c.log(ctx, "exec", query, args, start, err)
	return res, err
}

func (c *loggingConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	start := time.Now()
	rows, err := c.conn.QueryContext(ctx, query, args)
	c.c.log(ctx, "query", query, args, start, err)
	return rows, err
}

func (c *loggingConn) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *loggingConn) Close() error {
	return c.conn.Close()
}

func (c *loggingConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *loggingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return c.conn.BeginTx(ctx, opts)
}

func (s *loggingStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), toNamed(args))
}

func (s *loggingStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	start := time.Now()
	res, err := s.stmt.(driver.StmtExecContext).ExecContext(ctx, args)
	s.c.log(ctx, "exec", s.query, args, start, err)
	return res, err
}

func (s *loggingStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), toNamed(args))
}

func (s *loggingStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	start := time.Now()
	rows, err := s.stmt.(driver.StmtQueryContext).QueryContext(ctx, args)
	s.c.log(ctx, "query", s.query, args, start, err)
	return rows, err
}

func (s *loggingStmt) Close() error {
	return s.stmt.Close()
}

func (s *loggingStmt) NumInput() int {
	return s.stmt.NumInput()
}

func toNamed(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, v := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}

func formatArgs(args []driver.NamedValue) []string {
	out := make([]string, len(args))
	for i, a := range args {
		v := formatArg(a.Value)
		if a.Name != "" {
			v = a.Name + "=" + v
		}
		out[i] = v
	}
	return out
}

func formatArg(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
