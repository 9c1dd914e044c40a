package dispatch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gobwas/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burrowdb/burrow/catalog"
	"github.com/burrowdb/burrow/db"
	"github.com/burrowdb/burrow/insight"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	executor, err := db.NewExecutor(":memory:", []glob.Glob{glob.MustCompile("*")}, 16)
	require.NoError(t, err)
	t.Cleanup(func() { executor.Close() })
	return NewDispatcher(executor, insight.NewLedger())
}

func TestDispatch_UnknownOperation(t *testing.T) {
	d := newTestDispatcher(t)

	env := d.Dispatch(context.Background(), "truncate_everything", map[string]any{"query": "x"})
	assert.True(t, env.IsError)
	assert.Contains(t, env.Text(), "unknown operation: truncate_everything")
}

func TestDispatch_ReadQueryRejectsWrite(t *testing.T) {
	d := newTestDispatcher(t)

	env := d.Dispatch(context.Background(), catalog.OpReadQuery, map[string]any{
		"query": "UPDATE t SET x=1",
	})
	assert.True(t, env.IsError)
	assert.Equal(t, MsgOnlySelect, env.Text())
}

func TestDispatch_WriteQueryRejectsSelect(t *testing.T) {
	d := newTestDispatcher(t)

	env := d.Dispatch(context.Background(), catalog.OpWriteQuery, map[string]any{
		"query": "SELECT * FROM t",
	})
	assert.True(t, env.IsError)
	assert.Equal(t, MsgNoSelectOnWrite, env.Text())
}

func TestDispatch_CreateTableRejectsInsert(t *testing.T) {
	d := newTestDispatcher(t)

	env := d.Dispatch(context.Background(), catalog.OpCreateTable, map[string]any{
		"query": "INSERT INTO t VALUES (1)",
	})
	assert.True(t, env.IsError)
	assert.Equal(t, MsgOnlyCreateTable, env.Text())
}

func TestDispatch_ListTablesEmptyDatabase(t *testing.T) {
	d := newTestDispatcher(t)

	env := d.Dispatch(context.Background(), catalog.OpListTables, nil)
	require.False(t, env.IsError)
	assert.Equal(t, "[]", env.Text())
}

func TestDispatch_FullTableLifecycle(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	env := d.Dispatch(ctx, catalog.OpCreateTable, map[string]any{
		"query": "CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT)",
	})
	require.False(t, env.IsError, env.Text())
	assert.Equal(t, MsgTableCreated, env.Text())

	// describe_table returns both columns in declaration order with
	// the primary key flagged
	env = d.Dispatch(ctx, catalog.OpDescribeTable, map[string]any{"table_name": "t"})
	require.False(t, env.IsError, env.Text())

	var columns []map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.Text()), &columns))
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0]["name"])
	assert.Equal(t, "name", columns[1]["name"])
	assert.EqualValues(t, 1, columns[0]["pk"])
	assert.EqualValues(t, 0, columns[1]["pk"])

	// write then read back
	env = d.Dispatch(ctx, catalog.OpWriteQuery, map[string]any{
		"query": "INSERT INTO t (name) VALUES ('alpha'), ('beta')",
	})
	require.False(t, env.IsError, env.Text())

	var writeResult map[string]int64
	require.NoError(t, json.Unmarshal([]byte(env.Text()), &writeResult))
	assert.EqualValues(t, 2, writeResult["affected_rows"])

	env = d.Dispatch(ctx, catalog.OpReadQuery, map[string]any{
		"query": "SELECT name FROM t ORDER BY id",
	})
	require.False(t, env.IsError, env.Text())

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.Text()), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "alpha", rows[0]["name"])
	assert.Equal(t, "beta", rows[1]["name"])

	// the new table shows up in list_tables
	env = d.Dispatch(ctx, catalog.OpListTables, nil)
	require.False(t, env.IsError, env.Text())
	assert.Contains(t, env.Text(), `"name":"t"`)
}

func TestDispatch_EngineErrorPassedThrough(t *testing.T) {
	d := newTestDispatcher(t)

	env := d.Dispatch(context.Background(), catalog.OpReadQuery, map[string]any{
		"query": "SELECT * FROM missing_table",
	})
	assert.True(t, env.IsError)
	assert.Contains(t, env.Text(), "no such table")
}

func TestDispatch_AppendInsightRoundTrip(t *testing.T) {
	d := newTestDispatcher(t)

	env := d.Dispatch(context.Background(), catalog.OpAppendInsight, map[string]any{
		"insight": "X",
	})
	require.False(t, env.IsError)
	assert.Equal(t, MsgInsightAdded, env.Text())

	memo := d.Ledger().Synthesize()
	assert.Contains(t, memo, "- X\n")
}

func TestDispatch_DescribeTableRejectsBadIdentifier(t *testing.T) {
	d := newTestDispatcher(t)

	env := d.Dispatch(context.Background(), catalog.OpDescribeTable, map[string]any{
		"table_name": "t; DROP TABLE t",
	})
	assert.True(t, env.IsError)
	assert.Contains(t, env.Text(), "not a valid table identifier")
}
