// Package engine provides the storage engines that read and write table
// data. The flat-file engine appends fixed-width rows to a heap file; the
// offset of each inserted row is what a clustered index stores as its
// payload address.
package engine

import (
	"github.com/starsql/starsql/internal/meta"
	"github.com/starsql/starsql/internal/sqltype"
)

// Engine is the storage engine interface. An engine is responsible for
// reading and writing the rows of one table.
type Engine interface {
	// CreateTable creates the table's data file.
	CreateTable() error
	// Table returns the table the engine operates on.
	Table() *meta.Table
	// InsertRow appends one row and returns its heap offset.
	InsertRow(values []sqltype.Value) (uint64, error)
	// FullScan returns every row of the table.
	FullScan() (*Rows, error)
	// Lookup returns the rows whose value in column columnIndex satisfies
	// the comparison against value.
	Lookup(columnIndex int, value sqltype.Value, op sqltype.CompOp) (*Rows, error)
	// Close releases the engine's resources.
	Close() error
}

// New constructs the engine a table was created with.
func New(t *meta.Table) (Engine, error) {
	switch t.Engine() {
	case meta.FlatFileID:
		return NewFlatFile(t), nil
	default:
		return nil, ErrUnknownEngine
	}
}
