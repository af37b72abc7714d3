// Package starsql is an early-stage SQL database server. Its storage core
// is a persistent B*-tree index over fixed-width heap rows; the SQL
// surface, executor and wire protocol above it are thin skeletons.
//
// This root package is the embedding API: it opens databases and tables
// and hands out the pieces a host needs to store and index rows without
// going through the TCP server.
package starsql

import (
	"github.com/starsql/starsql/internal/bstar"
	"github.com/starsql/starsql/internal/engine"
	"github.com/starsql/starsql/internal/meta"
	"github.com/starsql/starsql/internal/sqltype"
)

// Version of the library.
const Version = "0.2.0"

// Re-exported storage types for embedding callers.
type (
	// Database is a directory of tables.
	Database = meta.Database
	// Table is a named column layout.
	Table = meta.Table
	// Column describes one table column.
	Column = sqltype.Column
	// SqlType is a column type.
	SqlType = sqltype.SqlType
	// Value is a single column value.
	Value = sqltype.Value
)

// CreateDatabase creates a database directory at path.
func CreateDatabase(path string) (*Database, error) {
	return meta.CreateDatabase(path)
}

// OpenDatabase opens an existing database directory.
func OpenDatabase(path string) (*Database, error) {
	return meta.LoadDatabase(path)
}

// OpenEngine opens the storage engine of a table.
func OpenEngine(t *Table) (engine.Engine, error) {
	return engine.New(t)
}

// Index is a persistent B*-tree over uint64 keys, mapping each key to the
// heap offset of its row.
type Index = bstar.Tree[bstar.Uint64]

// IndexEntry is one key/offset pair of an Index.
type IndexEntry = bstar.KeyAddr[bstar.Uint64]

// CreateIndex creates an index for the given column of a table. The order
// fixes the node capacity for the life of the index.
func CreateIndex(t *Table, column string, order uint64) (*Index, error) {
	return bstar.Create[bstar.Uint64](t.IndexPath(column), t.DataPath(), order)
}

// OpenIndex reopens an index created with CreateIndex.
func OpenIndex(t *Table, column string) (*Index, error) {
	return bstar.Load[bstar.Uint64](t.IndexPath(column))
}

// DropIndex removes an index's files.
func DropIndex(t *Table, column string) error {
	return bstar.Remove(t.IndexPath(column))
}
