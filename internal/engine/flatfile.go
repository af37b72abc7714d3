package engine

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/golang/glog"

	"github.com/starsql/starsql/internal/meta"
	"github.com/starsql/starsql/internal/sqltype"
	"github.com/starsql/starsql/internal/utils"
)

// ErrUnknownEngine is returned for a table created with an engine id this
// build does not provide.
var ErrUnknownEngine = errors.New("unknown storage engine")

// ErrRowArity is returned when an inserted row does not supply one value
// per column.
var ErrRowArity = errors.New("row value count does not match column count")

// FlatFile is the heap storage engine: rows are encoded fixed-width and
// appended to the table's data file. Row addresses are byte offsets into
// that file and stay valid until the table is rewritten.
type FlatFile struct {
	table *meta.Table
	dat   *os.File
}

// NewFlatFile creates a flat-file engine for the table. The data file is
// opened lazily.
func NewFlatFile(t *meta.Table) *FlatFile {
	return &FlatFile{table: t}
}

// CreateTable creates the empty data file.
func (e *FlatFile) CreateTable() error {
	f, err := os.OpenFile(e.table.DataPath(), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return utils.WrapError("creating data file", err)
	}
	glog.Infof("created data file %q", e.table.DataPath())
	e.dat = f
	return nil
}

// Table returns the table the engine operates on.
func (e *FlatFile) Table() *meta.Table { return e.table }

// Close releases the data file handle.
func (e *FlatFile) Close() error {
	if e.dat == nil {
		return nil
	}
	err := e.dat.Close()
	e.dat = nil
	return err
}

func (e *FlatFile) open() error {
	if e.dat != nil {
		return nil
	}
	f, err := os.OpenFile(e.table.DataPath(), os.O_RDWR, 0)
	if err != nil {
		return utils.WrapError("opening data file", err)
	}
	e.dat = f
	return nil
}

// InsertRow encodes values and appends them as one row, returning the byte
// offset the row was written at.
func (e *FlatFile) InsertRow(values []sqltype.Value) (uint64, error) {
	if err := e.open(); err != nil {
		return 0, err
	}
	columns := e.table.Columns()
	if len(values) != len(columns) {
		return 0, ErrRowArity
	}

	var row bytes.Buffer
	for i, c := range columns {
		if _, err := c.Type.EncodeInto(&row, values[i]); err != nil {
			return 0, utils.WrapError("encoding column "+c.Name, err)
		}
	}

	offset, err := e.dat.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := e.dat.Write(row.Bytes()); err != nil {
		return 0, utils.WrapError("appending row", err)
	}
	return uint64(offset), nil
}

// RowAt decodes the row stored at the given heap offset, as handed out by
// InsertRow and stored in an index.
func (e *FlatFile) RowAt(offset uint64) (*Row, error) {
	if err := e.open(); err != nil {
		return nil, err
	}
	buf := make([]byte, e.table.RowSize())
	if _, err := e.dat.ReadAt(buf, int64(offset)); err != nil {
		return nil, utils.WrapError("reading row", err)
	}
	return decodeRow(e.table.Columns(), buf)
}

// FullScan reads the entire heap. The data file is memory-mapped read-only
// for the duration of the scan and the rows are decoded from the mapping.
func (e *FlatFile) FullScan() (*Rows, error) {
	return e.scan(func(*Row) (bool, error) { return true, nil })
}

// Lookup scans the heap and keeps the rows whose value in columnIndex
// satisfies the comparison against value.
func (e *FlatFile) Lookup(columnIndex int, value sqltype.Value, op sqltype.CompOp) (*Rows, error) {
	columns := e.table.Columns()
	if columnIndex < 0 || columnIndex >= len(columns) {
		return nil, sqltype.ErrInvalidType
	}
	col := columns[columnIndex]
	return e.scan(func(r *Row) (bool, error) {
		return col.Compare(r.Values[columnIndex], value, op)
	})
}

func (e *FlatFile) scan(keep func(*Row) (bool, error)) (*Rows, error) {
	if err := e.open(); err != nil {
		return nil, err
	}

	info, err := e.dat.Stat()
	if err != nil {
		return nil, err
	}
	rows := &Rows{Columns: e.table.Columns()}
	if info.Size() == 0 {
		return rows, nil
	}

	m, err := mmap.Map(e.dat, mmap.RDONLY, 0)
	if err != nil {
		return nil, utils.WrapError("mapping data file", err)
	}
	defer func() {
		if uerr := m.Unmap(); uerr != nil {
			glog.Warningf("unmapping %q: %v", e.table.DataPath(), uerr)
		}
	}()

	rowSize := int(e.table.RowSize())
	for off := 0; off+rowSize <= len(m); off += rowSize {
		row, err := decodeRow(rows.Columns, m[off:off+rowSize])
		if err != nil {
			return nil, err
		}
		row.Offset = uint64(off)
		ok, err := keep(row)
		if err != nil {
			return nil, err
		}
		if ok {
			rows.Data = append(rows.Data, *row)
		}
	}
	return rows, nil
}
