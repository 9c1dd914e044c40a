package db

import (
	"context"
	"errors"
	"testing"

	"github.com/gobwas/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T, patterns ...string) *Executor {
	t.Helper()
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		globs = append(globs, glob.MustCompile(p))
	}

	e, err := NewExecutor(":memory:", globs, 16)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestExecuteReadAndWrite(t *testing.T) {
	e := newTestExecutor(t)
	ctx := context.Background()

	_, err := e.ExecuteWrite(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	affected, err := e.ExecuteWrite(ctx, "INSERT INTO t (name) VALUES ('a'), ('b'), ('c')")
	require.NoError(t, err)
	assert.EqualValues(t, 3, affected)

	rows, err := e.ExecuteRead(ctx, "SELECT id, name FROM t ORDER BY id")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "name"}, rows[0].Columns)

	name, ok := rows[1].Get("name")
	require.True(t, ok)
	assert.Equal(t, "b", name)
}

func TestExecuteRead_EngineErrorVerbatim(t *testing.T) {
	e := newTestExecutor(t)

	_, err := e.ExecuteRead(context.Background(), "SELECT * FROM missing")
	require.Error(t, err)

	var engineErr *EngineError
	require.True(t, errors.As(err, &engineErr))
	assert.Contains(t, err.Error(), "no such table: missing")
}

func TestExecuteWrite_ConstraintViolation(t *testing.T) {
	e := newTestExecutor(t)
	ctx := context.Background()

	_, err := e.ExecuteWrite(ctx, "CREATE TABLE u (id INTEGER PRIMARY KEY, email TEXT UNIQUE)")
	require.NoError(t, err)
	_, err = e.ExecuteWrite(ctx, "INSERT INTO u (email) VALUES ('x@y.z')")
	require.NoError(t, err)

	_, err = e.ExecuteWrite(ctx, "INSERT INTO u (email) VALUES ('x@y.z')")
	var engineErr *EngineError
	require.True(t, errors.As(err, &engineErr))
}

func TestListTables(t *testing.T) {
	e := newTestExecutor(t)
	ctx := context.Background()

	rows, err := e.ListTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = e.ExecuteWrite(ctx, "CREATE TABLE beta (id INTEGER)")
	require.NoError(t, err)
	_, err = e.ExecuteWrite(ctx, "CREATE TABLE alpha (id INTEGER)")
	require.NoError(t, err)

	rows, err = e.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// ordered by name
	first, _ := rows[0].Get("name")
	second, _ := rows[1].Get("name")
	assert.Equal(t, "alpha", first)
	assert.Equal(t, "beta", second)
}

func TestListTables_AccessPatterns(t *testing.T) {
	e := newTestExecutor(t, "orders_*")
	ctx := context.Background()

	_, err := e.ExecuteWrite(ctx, "CREATE TABLE orders_2024 (id INTEGER)")
	require.NoError(t, err)
	_, err = e.ExecuteWrite(ctx, "CREATE TABLE users (id INTEGER)")
	require.NoError(t, err)

	rows, err := e.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	name, _ := rows[0].Get("name")
	assert.Equal(t, "orders_2024", name)
}

func TestDescribeTable(t *testing.T) {
	e := newTestExecutor(t)
	ctx := context.Background()

	_, err := e.ExecuteWrite(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT NOT NULL, note TEXT DEFAULT 'x')")
	require.NoError(t, err)

	rows, err := e.DescribeTable(ctx, "t")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// declaration order preserved
	n0, _ := rows[0].Get("name")
	n1, _ := rows[1].Get("name")
	n2, _ := rows[2].Get("name")
	assert.Equal(t, "id", n0)
	assert.Equal(t, "name", n1)
	assert.Equal(t, "note", n2)

	pk, _ := rows[0].Get("pk")
	assert.EqualValues(t, 1, pk)
	notNull, _ := rows[1].Get("notnull")
	assert.EqualValues(t, 1, notNull)
}

func TestDescribeTable_RejectsBadIdentifier(t *testing.T) {
	e := newTestExecutor(t)

	for _, name := range []string{"t; DROP TABLE t", "a b", "1abc", "", "t)"} {
		_, err := e.DescribeTable(context.Background(), name)
		var accessErr *TableAccessError
		require.True(t, errors.As(err, &accessErr), "expected rejection for %q", name)
		assert.Contains(t, err.Error(), "not a valid table identifier")
	}
}

func TestDescribeTable_RejectsFilteredTable(t *testing.T) {
	e := newTestExecutor(t, "orders_*")
	ctx := context.Background()

	_, err := e.ExecuteWrite(ctx, "CREATE TABLE users (id INTEGER)")
	require.NoError(t, err)

	_, err = e.DescribeTable(ctx, "users")
	var accessErr *TableAccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Contains(t, err.Error(), "not permitted")
}

func TestDescribeTable_CachePurgedOnWrite(t *testing.T) {
	e := newTestExecutor(t)
	ctx := context.Background()

	_, err := e.ExecuteWrite(ctx, "CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)

	rows, err := e.DescribeTable(ctx, "t")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, e.cache.Len())

	// schema change purges the cache; the next describe sees it
	_, err = e.ExecuteWrite(ctx, "ALTER TABLE t ADD COLUMN name TEXT")
	require.NoError(t, err)
	assert.Equal(t, 0, e.cache.Len())

	rows, err = e.DescribeTable(ctx, "t")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
