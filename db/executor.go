package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"

	"github.com/burrowdb/burrow/telemetry"
)

// EngineError wraps a failure reported by SQLite. The engine's message
// is passed through verbatim to callers.
type EngineError struct {
	err error
}

func (e *EngineError) Error() string {
	return e.err.Error()
}

func (e *EngineError) Unwrap() error {
	return e.err
}

// TableAccessError reports a table name rejected before any statement
// reached the engine: either not a bare SQLite identifier, or excluded
// by the configured access patterns.
type TableAccessError struct {
	Table  string
	Reason string
}

func (e *TableAccessError) Error() string {
	return fmt.Sprintf("table %q: %s", e.Table, e.Reason)
}

// tableIdentRe admits bare SQLite identifiers only. The introspection
// statement interpolates the table name directly into PRAGMA text, so
// anything else is rejected up front.
var tableIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Executor owns the process's single SQLite handle. All statement
// execution routes through it; the handle is never shared out.
type Executor struct {
	db            *sql.DB
	listTablesSQL string
	globs         []glob.Glob
	cache         *SchemaCache
}

// NewExecutor opens the SQLite database at path. The handle is capped
// to one underlying connection so the engine remains the only
// serialization point for interleaved calls.
func NewExecutor(path string, globs []glob.Glob, cacheSize int) (*Executor, error) {
	sqlDB, err := sql.Open(SQLiteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	listSQL, _, err := goqu.Dialect("sqlite3").
		From("sqlite_master").
		Select("name").
		Where(
			goqu.C("type").Eq("table"),
			goqu.C("name").NotLike("sqlite_%"),
		).
		Order(goqu.C("name").Asc()).
		ToSQL()
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to build catalog query: %w", err)
	}

	cache, err := NewSchemaCache(cacheSize)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	log.Info().Str("path", path).Msg("Database opened")
	return &Executor{
		db:            sqlDB,
		listTablesSQL: listSQL,
		globs:         globs,
		cache:         cache,
	}, nil
}

// Close releases the database handle.
func (e *Executor) Close() error {
	return e.db.Close()
}

// Ping verifies the handle is still usable.
func (e *Executor) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

// ExecuteRead runs a read statement and returns the result rows in the
// engine's result order.
func (e *Executor) ExecuteRead(ctx context.Context, query string) ([]Row, error) {
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &EngineError{err: err}
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, &EngineError{err: err}
	}

	telemetry.RowsReturned.Observe(float64(len(result)))
	return result, nil
}

// ExecuteWrite runs a mutating statement and returns the affected row
// count. The schema cache is purged because any write may have altered
// table definitions the cache describes.
func (e *Executor) ExecuteWrite(ctx context.Context, query string) (int64, error) {
	res, err := e.db.ExecContext(ctx, query)
	if err != nil {
		return 0, &EngineError{err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, &EngineError{err: err}
	}

	e.cache.Purge()
	telemetry.RowsAffected.Observe(float64(affected))
	return affected, nil
}

// ListTables queries the schema catalog for user tables, filtered by
// the configured access patterns. No user input reaches the statement.
func (e *Executor) ListTables(ctx context.Context) ([]Row, error) {
	rows, err := e.db.QueryContext(ctx, e.listTablesSQL)
	if err != nil {
		return nil, &EngineError{err: err}
	}
	defer rows.Close()

	all, err := scanRows(rows)
	if err != nil {
		return nil, &EngineError{err: err}
	}

	result := make([]Row, 0, len(all))
	for _, row := range all {
		name, ok := row.Get("name")
		if !ok {
			continue
		}
		if s, ok := name.(string); ok && e.tableAllowed(s) {
			result = append(result, row)
		}
	}
	return result, nil
}

// DescribeTable returns column metadata for one table via
// PRAGMA table_info. The table name is interpolated directly into the
// statement text; tableIdentRe rejects anything that is not a bare
// identifier before the interpolation happens.
func (e *Executor) DescribeTable(ctx context.Context, table string) ([]Row, error) {
	if !tableIdentRe.MatchString(table) {
		return nil, &TableAccessError{Table: table, Reason: "not a valid table identifier"}
	}
	if !e.tableAllowed(table) {
		return nil, &TableAccessError{Table: table, Reason: "not permitted by access patterns"}
	}

	if cached, ok := e.cache.Get(table); ok {
		return cached, nil
	}

	rows, err := e.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, &EngineError{err: err}
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, &EngineError{err: err}
	}

	e.cache.Put(table, result)
	return result, nil
}

func (e *Executor) tableAllowed(name string) bool {
	for _, g := range e.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
