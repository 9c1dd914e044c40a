// Package sqlkind classifies SQL statements by their leading keyword.
//
// This is a deliberate textual heuristic, not a parser. Statements
// preceded by comments, CTEs (WITH ... SELECT), and multi-statement
// payloads are not recognized as reads; callers depend on that
// permissive behavior for the write path, so do not tighten it.
package sqlkind

import "strings"

// Kind is the coarse category of a SQL statement.
type Kind int

const (
	// Read is a statement beginning with SELECT.
	Read Kind = iota
	// Write is any statement that is neither a SELECT nor a CREATE TABLE.
	Write
	// SchemaDefinition is a statement beginning with CREATE TABLE.
	SchemaDefinition
)

func (k Kind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	case SchemaDefinition:
		return "schema_definition"
	default:
		return "unknown"
	}
}

// Classify inspects only the leading keyword(s) of sql.
func Classify(sql string) Kind {
	upper := strings.ToUpper(strings.TrimSpace(sql))

	if strings.HasPrefix(upper, "SELECT") {
		return Read
	}
	if isCreateTable(upper) {
		return SchemaDefinition
	}
	return Write
}

// isCreateTable matches CREATE TABLE with any run of whitespace
// between the two keywords.
func isCreateTable(upper string) bool {
	rest, ok := strings.CutPrefix(upper, "CREATE")
	if !ok {
		return false
	}
	trimmed := strings.TrimLeft(rest, " \t\r\n")
	// Require whitespace after CREATE so CREATETABLE does not match.
	return len(trimmed) != len(rest) && strings.HasPrefix(trimmed, "TABLE")
}
