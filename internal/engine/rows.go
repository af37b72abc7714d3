package engine

import (
	"bytes"

	"github.com/starsql/starsql/internal/sqltype"
)

// Row is one decoded table row plus its heap offset.
type Row struct {
	Offset uint64
	Values []sqltype.Value
}

// Rows is a decoded result set.
type Rows struct {
	Columns []sqltype.Column
	Data    []Row
}

// Len returns the number of rows in the set.
func (r *Rows) Len() int { return len(r.Data) }

func decodeRow(columns []sqltype.Column, buf []byte) (*Row, error) {
	rd := bytes.NewReader(buf)
	row := &Row{Values: make([]sqltype.Value, 0, len(columns))}
	for _, c := range columns {
		v, err := c.Type.DecodeFrom(rd)
		if err != nil {
			return nil, err
		}
		row.Values = append(row.Values, v)
	}
	return row, nil
}
