package parse

import "github.com/starsql/starsql/internal/sqltype"

// Query is the top level type returned by Parse.
type Query interface {
	stmt()
}

// CreateDatabaseStmt creates a new database.
type CreateDatabaseStmt struct {
	Name string
}

// CreateTableStmt creates a table with the given columns.
type CreateTableStmt struct {
	Table string
	Cols  []ColumnInfo
}

// ColumnInfo describes one column in a CREATE TABLE statement.
type ColumnInfo struct {
	Name       string
	Type       sqltype.SqlType
	PrimaryKey bool
	NotNull    bool
}

// DropTableStmt removes a table.
type DropTableStmt struct {
	Table string
}

// UseStmt switches the working database.
type UseStmt struct {
	Database string
}

// DescribeStmt reports a table's column layout.
type DescribeStmt struct {
	Table string
}

// InsertStmt inserts one row.
type InsertStmt struct {
	Table  string
	Values []sqltype.Value
}

// SelectStmt reads rows, optionally filtered by a single condition.
type SelectStmt struct {
	Table string
	Cond  *Condition
}

// Condition is one comparison in a WHERE clause.
type Condition struct {
	Col   string
	Op    sqltype.CompOp
	Value sqltype.Value
}

func (CreateDatabaseStmt) stmt() {}
func (CreateTableStmt) stmt()    {}
func (DropTableStmt) stmt()      {}
func (UseStmt) stmt()            {}
func (DescribeStmt) stmt()       {}
func (InsertStmt) stmt()         {}
func (SelectStmt) stmt()         {}
