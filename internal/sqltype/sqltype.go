// Package sqltype defines the column types of the storage layer and their
// fixed-width binary encoding. Rows are encoded big-endian, one column after
// another; every column occupies the same number of bytes in every row so
// that heap offsets stay computable.
package sqltype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidType is returned when a value does not match the column type it
// is encoded or compared under.
var ErrInvalidType = errors.New("value does not match column type")

// Kind enumerates the supported column types.
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindBool
	KindChar
	KindVarChar
)

// SqlType is a column type: a kind plus a length for the character kinds.
type SqlType struct {
	Kind Kind   `msgpack:"kind"`
	Len  uint16 `msgpack:"len"`
}

// IntType is a 4-byte signed integer column.
func IntType() SqlType { return SqlType{Kind: KindInt} }

// BoolType is a 1-byte boolean column.
func BoolType() SqlType { return SqlType{Kind: KindBool} }

// CharType is a fixed-length string column of n bytes, zero padded.
func CharType(n uint8) SqlType { return SqlType{Kind: KindChar, Len: uint16(n)} }

// VarCharType is a string column with capacity n. The stored form is a
// 2-byte length prefix followed by n bytes, so the column width is fixed.
func VarCharType(n uint16) SqlType { return SqlType{Kind: KindVarChar, Len: n} }

// Size returns the on-disk width of one value of this type.
func (t SqlType) Size() uint32 {
	switch t.Kind {
	case KindInt:
		return 4
	case KindBool:
		return 1
	case KindChar:
		return uint32(t.Len)
	case KindVarChar:
		return 2 + uint32(t.Len)
	default:
		return 0
	}
}

func (t SqlType) String() string {
	switch t.Kind {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindChar:
		return fmt.Sprintf("char(%d)", t.Len)
	case KindVarChar:
		return fmt.Sprintf("varchar(%d)", t.Len)
	default:
		return fmt.Sprintf("sqltype(%d)", t.Kind)
	}
}

// ValueKind tags the variant a Value holds.
type ValueKind uint8

const (
	ValInt ValueKind = iota + 1
	ValBool
	ValString
)

// Value is a single column value as produced by the query layer.
type Value struct {
	Kind ValueKind
	Int  int64
	Bool bool
	Str  string
}

func (v Value) String() string {
	switch v.Kind {
	case ValInt:
		return fmt.Sprintf("%d", v.Int)
	case ValBool:
		return fmt.Sprintf("%t", v.Bool)
	case ValString:
		return v.Str
	default:
		return "<null>"
	}
}

// IntValue wraps an integer literal.
func IntValue(v int64) Value { return Value{Kind: ValInt, Int: v} }

// BoolValue wraps a boolean literal.
func BoolValue(v bool) Value { return Value{Kind: ValBool, Bool: v} }

// StringValue wraps a string literal.
func StringValue(v string) Value { return Value{Kind: ValString, Str: v} }

// EncodeInto writes v under this column type and returns the bytes written,
// always exactly Size(). ErrInvalidType is returned when the value variant
// does not match the type or an integer is out of range.
func (t SqlType) EncodeInto(w io.Writer, v Value) (uint32, error) {
	switch t.Kind {
	case KindInt:
		if v.Kind != ValInt {
			return 0, ErrInvalidType
		}
		if v.Int > 1<<31-1 || v.Int < -(1<<31) {
			return 0, ErrInvalidType
		}
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(int32(v.Int)))
		if _, err := w.Write(buf[:]); err != nil {
			return 0, err
		}
		return 4, nil

	case KindBool:
		if v.Kind != ValBool {
			return 0, ErrInvalidType
		}
		b := byte(0)
		if v.Bool {
			b = 1
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return 0, err
		}
		return 1, nil

	case KindChar:
		if v.Kind != ValString {
			return 0, ErrInvalidType
		}
		buf := padded(v.Str, uint32(t.Len))
		if _, err := w.Write(buf); err != nil {
			return 0, err
		}
		return uint32(len(buf)), nil

	case KindVarChar:
		if v.Kind != ValString {
			return 0, ErrInvalidType
		}
		s := v.Str
		if len(s) > int(t.Len) {
			s = s[:t.Len]
		}
		var pre [2]byte
		binary.BigEndian.PutUint16(pre[:], uint16(len(s)))
		if _, err := w.Write(pre[:]); err != nil {
			return 0, err
		}
		buf := make([]byte, t.Len)
		copy(buf, s)
		if _, err := w.Write(buf); err != nil {
			return 0, err
		}
		return t.Size(), nil

	default:
		return 0, ErrInvalidType
	}
}

// DecodeFrom reads one value of this column type.
func (t SqlType) DecodeFrom(r io.Reader) (Value, error) {
	buf := make([]byte, t.Size())
	if _, err := io.ReadFull(r, buf); err != nil {
		return Value{}, err
	}
	return t.Decode(buf)
}

// Decode interprets exactly Size() bytes as one value of this column type.
func (t SqlType) Decode(buf []byte) (Value, error) {
	if uint32(len(buf)) != t.Size() {
		return Value{}, ErrInvalidType
	}
	switch t.Kind {
	case KindInt:
		return IntValue(int64(int32(binary.BigEndian.Uint32(buf)))), nil
	case KindBool:
		return BoolValue(buf[0] != 0), nil
	case KindChar:
		return StringValue(trimPadding(buf)), nil
	case KindVarChar:
		n := binary.BigEndian.Uint16(buf[:2])
		if uint16(len(buf)-2) < n {
			return Value{}, ErrInvalidType
		}
		return StringValue(string(buf[2 : 2+n])), nil
	default:
		return Value{}, ErrInvalidType
	}
}

// padded converts s into a buffer of exactly n bytes, truncating long
// strings one short of capacity and filling the remainder with zeros.
func padded(s string, n uint32) []byte {
	buf := make([]byte, n)
	if n == 0 {
		return buf
	}
	if uint32(len(s)) >= n {
		s = s[:n-1]
	}
	copy(buf, s)
	return buf
}

func trimPadding(buf []byte) string {
	end := len(buf)
	for end > 0 && buf[end-1] == 0 {
		end--
	}
	return string(buf[:end])
}
