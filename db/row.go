package db

import (
	"bytes"
	"database/sql"
	"encoding/base64"
	"encoding/json"
)

// Row is one result row with column order preserved from the engine's
// result set. Values hold nil, int64, float64, string, or []byte.
type Row struct {
	Columns []string
	Values  []any
}

// MarshalJSON renders the row as a JSON object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		switch v := r.Values[i].(type) {
		case []byte:
			// Blobs are not valid JSON text; base64 them.
			val, err = json.Marshal(base64.StdEncoding.EncodeToString(v))
		default:
			val, err = json.Marshal(v)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value of the named column.
func (r Row) Get(column string) (any, bool) {
	for i, col := range r.Columns {
		if col == column {
			return r.Values[i], true
		}
	}
	return nil, false
}

// scanRows drains a result set into Rows, preserving column order.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, Row{Columns: cols, Values: values})
	}
	return out, rows.Err()
}
