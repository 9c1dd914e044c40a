// Package catalog declares the fixed set of operations the gateway
// exposes. The descriptors are the single source of truth: the HTTP
// catalog endpoint renders them and the argument validator enforces
// them, so the advertised shape and the accepted shape cannot drift.
package catalog

// Category identifies the execution path an operation routes to.
type Category int

const (
	ReadQuery Category = iota
	WriteQuery
	SchemaDefinition
	ListTables
	DescribeTable
	AppendInsight
)

func (c Category) String() string {
	switch c {
	case ReadQuery:
		return "read_query"
	case WriteQuery:
		return "write_query"
	case SchemaDefinition:
		return "schema_definition"
	case ListTables:
		return "list_tables"
	case DescribeTable:
		return "describe_table"
	case AppendInsight:
		return "append_insight"
	default:
		return "unknown"
	}
}

// ArgType is the primitive type of an operation argument. The fixed
// catalog only declares string arguments today, but the validator is
// written against the declaration rather than that assumption.
type ArgType string

const (
	TypeString ArgType = "string"
)

// ArgSpec declares one named argument of an operation. Description is
// advisory only; it is advertised but never enforced.
type ArgSpec struct {
	Name        string
	Type        ArgType
	Required    bool
	Description string
}

// Descriptor declares one callable operation.
type Descriptor struct {
	Name        string
	Description string
	Category    Category
	Args        []ArgSpec
}

// Operation names as they appear in the catalog.
const (
	OpReadQuery     = "read_query"
	OpWriteQuery    = "write_query"
	OpCreateTable   = "create_table"
	OpListTables    = "list_tables"
	OpDescribeTable = "describe_table"
	OpAppendInsight = "append_insight"
)

// Argument field names.
const (
	ArgQuery     = "query"
	ArgTableName = "table_name"
	ArgInsight   = "insight"
)

var descriptors = []Descriptor{
	{
		Name:        OpReadQuery,
		Description: "Execute a SELECT query on the SQLite database",
		Category:    ReadQuery,
		Args: []ArgSpec{
			{Name: ArgQuery, Type: TypeString, Required: true, Description: "SELECT SQL query to execute"},
		},
	},
	{
		Name:        OpWriteQuery,
		Description: "Execute an INSERT, UPDATE, or DELETE query on the SQLite database",
		Category:    WriteQuery,
		Args: []ArgSpec{
			{Name: ArgQuery, Type: TypeString, Required: true, Description: "SQL query to execute"},
		},
	},
	{
		Name:        OpCreateTable,
		Description: "Create a new table in the SQLite database",
		Category:    SchemaDefinition,
		Args: []ArgSpec{
			{Name: ArgQuery, Type: TypeString, Required: true, Description: "CREATE TABLE SQL statement"},
		},
	},
	{
		Name:        OpListTables,
		Description: "List all tables in the SQLite database",
		Category:    ListTables,
		Args:        []ArgSpec{},
	},
	{
		Name:        OpDescribeTable,
		Description: "Get the schema information for a specific table",
		Category:    DescribeTable,
		Args: []ArgSpec{
			{Name: ArgTableName, Type: TypeString, Required: true, Description: "Name of the table to describe"},
		},
	},
	{
		Name:        OpAppendInsight,
		Description: "Add a business insight to the memo",
		Category:    AppendInsight,
		Args: []ArgSpec{
			{Name: ArgInsight, Type: TypeString, Required: true, Description: "Business insight discovered from data analysis"},
		},
	},
}

var byName = func() map[string]*Descriptor {
	m := make(map[string]*Descriptor, len(descriptors))
	for i := range descriptors {
		m[descriptors[i].Name] = &descriptors[i]
	}
	return m
}()

// Descriptors returns the advertised catalog in declaration order.
func Descriptors() []Descriptor {
	return descriptors
}

// Lookup resolves an operation name. The second return is false for
// names not in the catalog.
func Lookup(name string) (*Descriptor, bool) {
	d, ok := byName[name]
	return d, ok
}
