// Package dispatch routes named operation calls through validation,
// category checking, and execution, and shapes every outcome into the
// response envelope.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/burrowdb/burrow/catalog"
	"github.com/burrowdb/burrow/db"
	"github.com/burrowdb/burrow/insight"
	"github.com/burrowdb/burrow/sqlkind"
	"github.com/burrowdb/burrow/telemetry"
)

// Category rejection messages. Pinned by tests.
const (
	MsgOnlySelect      = "Only SELECT queries are allowed for read_query"
	MsgNoSelectOnWrite = "SELECT queries are not allowed for write_query"
	MsgOnlyCreateTable = "Only CREATE TABLE statements are allowed"

	MsgTableCreated = "Table created successfully"
	MsgInsightAdded = "Insight added to memo"
)

// QueryExecutor is the statement execution surface the dispatcher
// drives. *db.Executor implements it.
type QueryExecutor interface {
	ExecuteRead(ctx context.Context, query string) ([]db.Row, error)
	ExecuteWrite(ctx context.Context, query string) (int64, error)
	ListTables(ctx context.Context) ([]db.Row, error)
	DescribeTable(ctx context.Context, table string) ([]db.Row, error)
}

// Dispatcher is the stateless façade over the executor and the insight
// ledger. One instance serves every call for the process lifetime.
type Dispatcher struct {
	executor QueryExecutor
	ledger   *insight.Ledger
}

// NewDispatcher wires the dispatcher to its collaborators.
func NewDispatcher(executor QueryExecutor, ledger *insight.Ledger) *Dispatcher {
	return &Dispatcher{executor: executor, ledger: ledger}
}

// Ledger exposes the insight ledger for the memo surface.
func (d *Dispatcher) Ledger() *insight.Ledger {
	return d.ledger
}

// Dispatch runs one operation call end to end. Every outcome,
// including panics from below, terminates in an envelope; no error
// crosses this boundary.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (env Envelope) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("operation", name).Interface("panic", r).Msg("Recovered panic in dispatch")
			env = errorEnvelope(fmt.Sprintf("internal error: %v", r))
		}

		result := "ok"
		if env.IsError {
			result = "error"
		}
		telemetry.OperationsTotal.With(name, result).Inc()
		telemetry.OperationDurationSeconds.With(name).Observe(time.Since(start).Seconds())
	}()

	valid, desc, verr := catalog.Validate(name, args)
	if verr != nil {
		log.Debug().Str("operation", name).Str("reason", verr.Reason).Msg("Rejected call")
		return errorEnvelope(verr.Error())
	}

	switch desc.Category {
	case catalog.ReadQuery:
		return d.readQuery(ctx, valid.String(catalog.ArgQuery))
	case catalog.WriteQuery:
		return d.writeQuery(ctx, valid.String(catalog.ArgQuery))
	case catalog.SchemaDefinition:
		return d.createTable(ctx, valid.String(catalog.ArgQuery))
	case catalog.ListTables:
		return d.listTables(ctx)
	case catalog.DescribeTable:
		return d.describeTable(ctx, valid.String(catalog.ArgTableName))
	case catalog.AppendInsight:
		return d.appendInsight(valid.String(catalog.ArgInsight))
	default:
		return errorEnvelope(fmt.Sprintf("operation %s has no execution path", name))
	}
}

func (d *Dispatcher) readQuery(ctx context.Context, query string) Envelope {
	if sqlkind.Classify(query) != sqlkind.Read {
		return errorEnvelope(MsgOnlySelect)
	}

	rows, err := d.executor.ExecuteRead(ctx, query)
	if err != nil {
		return errorEnvelope(err.Error())
	}
	return rowsEnvelope(rows)
}

func (d *Dispatcher) writeQuery(ctx context.Context, query string) Envelope {
	if sqlkind.Classify(query) == sqlkind.Read {
		return errorEnvelope(MsgNoSelectOnWrite)
	}

	affected, err := d.executor.ExecuteWrite(ctx, query)
	if err != nil {
		return errorEnvelope(err.Error())
	}

	payload, err := json.Marshal(map[string]int64{"affected_rows": affected})
	if err != nil {
		return errorEnvelope(err.Error())
	}
	return textEnvelope(string(payload))
}

func (d *Dispatcher) createTable(ctx context.Context, query string) Envelope {
	if sqlkind.Classify(query) != sqlkind.SchemaDefinition {
		return errorEnvelope(MsgOnlyCreateTable)
	}

	if _, err := d.executor.ExecuteWrite(ctx, query); err != nil {
		return errorEnvelope(err.Error())
	}
	return textEnvelope(MsgTableCreated)
}

func (d *Dispatcher) listTables(ctx context.Context) Envelope {
	rows, err := d.executor.ListTables(ctx)
	if err != nil {
		return errorEnvelope(err.Error())
	}
	return rowsEnvelope(rows)
}

func (d *Dispatcher) describeTable(ctx context.Context, table string) Envelope {
	rows, err := d.executor.DescribeTable(ctx, table)
	if err != nil {
		return errorEnvelope(err.Error())
	}
	return rowsEnvelope(rows)
}

func (d *Dispatcher) appendInsight(text string) Envelope {
	d.ledger.Append(text)
	return textEnvelope(MsgInsightAdded)
}

// rowsEnvelope serializes result rows as a JSON array in the envelope
// text, preserving row and column order.
func rowsEnvelope(rows []db.Row) Envelope {
	payload, err := json.Marshal(rows)
	if err != nil {
		return errorEnvelope(err.Error())
	}
	return textEnvelope(string(payload))
}
