// Package meta manages database and table metadata on disk. A database is a
// directory; each table stores its column layout in a <table>.tbl file
// inside it, a magic number followed by a msgpack body that carries the
// format version.
package meta

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/starsql/starsql/internal/sqltype"
	"github.com/starsql/starsql/internal/utils"
)

const (
	magicNumber uint64 = 0x73746172_73716C31 // "starsql1"
	versionNo   byte   = 1

	tableExt = "tbl"
	dataExt  = "dat"
)

// Errors surfaced by the metadata layer.
var (
	ErrWrongMagic   = errors.New("table file has wrong magic number")
	ErrLoadDatabase = errors.New("database does not exist")
	ErrAddColumn    = errors.New("column already exists")
	ErrRemoveColumn = errors.New("column does not exist")
)

// EngineID selects the storage engine of a table.
type EngineID uint8

// FlatFileID identifies the flat-file heap engine.
const FlatFileID EngineID = 1

// Database is a named directory holding table files.
type Database struct {
	Name string
}

// CreateDatabase creates the database directory.
func CreateDatabase(name string) (*Database, error) {
	d := &Database{Name: name}
	if err := os.Mkdir(name, 0o755); err != nil {
		return nil, utils.WrapError("creating database dir", err)
	}
	glog.Infof("created new database %q", name)
	return d, nil
}

// LoadDatabase opens an existing database.
func LoadDatabase(name string) (*Database, error) {
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() {
		glog.Warningf("could not load database %q", name)
		return nil, ErrLoadDatabase
	}
	glog.Infof("loaded database %q", name)
	return &Database{Name: name}, nil
}

// Delete removes the database directory and everything in it.
func (d *Database) Delete() error {
	glog.Infof("deleting database %q and all its tables", d.Name)
	return os.RemoveAll(d.Name)
}

// tableMeta is the persisted part of a table definition.
type tableMeta struct {
	Version  byte             `msgpack:"version"`
	EngineID EngineID         `msgpack:"engine"`
	Columns  []sqltype.Column `msgpack:"columns"`
}

// Table is a named column layout inside a database.
type Table struct {
	db   *Database
	Name string
	meta tableMeta
}

// CreateTable creates a table in the database and persists its metadata.
func (d *Database) CreateTable(name string, columns []sqltype.Column, engine EngineID) (*Table, error) {
	t := &Table{
		db:   d,
		Name: name,
		meta: tableMeta{Version: versionNo, EngineID: engine, Columns: columns},
	}
	if err := t.Save(); err != nil {
		return nil, err
	}
	glog.Infof("created new table %q.%q", d.Name, name)
	return t, nil
}

// LoadTable reads a table definition back from its .tbl file.
func (d *Database) LoadTable(name string) (*Table, error) {
	path := tablePath(d.Name, name, tableExt)
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.WrapError("opening table file", err)
	}
	defer f.Close()

	magic, err := utils.ReadUint64(f, 0)
	if err != nil {
		return nil, utils.WrapError("reading table magic", err)
	}
	if magic != magicNumber {
		glog.Warningf("table file %q has magic %#x", path, magic)
		return nil, ErrWrongMagic
	}
	if _, err := f.Seek(8, 0); err != nil {
		return nil, err
	}

	var m tableMeta
	if err := msgpack.NewDecoder(f).Decode(&m); err != nil {
		return nil, utils.WrapError("decoding table metadata", err)
	}

	glog.Infof("loaded table %q.%q (%d columns)", d.Name, name, len(m.Columns))
	return &Table{db: d, Name: name, meta: m}, nil
}

// Save writes the table metadata file.
func (t *Table) Save() error {
	f, err := os.OpenFile(t.MetadataPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return utils.WrapError("opening table file", err)
	}
	defer f.Close()

	if err := utils.WriteUint64(f, 0, magicNumber); err != nil {
		return utils.WrapError("writing table magic", err)
	}
	if _, err := f.Seek(8, 0); err != nil {
		return err
	}
	if err := msgpack.NewEncoder(f).Encode(&t.meta); err != nil {
		return utils.WrapError("encoding table metadata", err)
	}
	return nil
}

// Delete removes the table's metadata and data files.
func (t *Table) Delete() error {
	glog.Infof("removing table %q.%q", t.db.Name, t.Name)
	if err := os.Remove(t.MetadataPath()); err != nil {
		return err
	}
	err := os.Remove(t.DataPath())
	if err != nil && os.IsNotExist(err) {
		// The data file only exists once the engine created it.
		return nil
	}
	return err
}

// Columns returns the table's column layout.
func (t *Table) Columns() []sqltype.Column {
	return t.meta.Columns
}

// Engine returns the engine id the table was created with.
func (t *Table) Engine() EngineID {
	return t.meta.EngineID
}

// RowSize returns the fixed byte width of one encoded row.
func (t *Table) RowSize() uint32 {
	var size uint32
	for _, c := range t.meta.Columns {
		size += c.Type.Size()
	}
	return size
}

// AddColumn appends a column to the definition. The change is in-memory
// until Save.
func (t *Table) AddColumn(name string, typ sqltype.SqlType, allowNull bool, description string, isPrimaryKey bool) error {
	for _, c := range t.meta.Columns {
		if c.Name == name {
			glog.Warningf("column %q already exists on %q", name, t.Name)
			return ErrAddColumn
		}
	}
	t.meta.Columns = append(t.meta.Columns, sqltype.NewColumn(name, typ, allowNull, description, isPrimaryKey))
	glog.Infof("column %q added to %q", name, t.Name)
	return nil
}

// RemoveColumn drops a column from the definition. The change is in-memory
// until Save.
func (t *Table) RemoveColumn(name string) error {
	for i, c := range t.meta.Columns {
		if c.Name == name {
			t.meta.Columns = append(t.meta.Columns[:i], t.meta.Columns[i+1:]...)
			glog.Infof("column %q removed from %q", name, t.Name)
			return nil
		}
	}
	glog.Warningf("column %q not found on %q", name, t.Name)
	return ErrRemoveColumn
}

// MetadataPath returns the path of the .tbl file.
func (t *Table) MetadataPath() string {
	return tablePath(t.db.Name, t.Name, tableExt)
}

// DataPath returns the path of the heap data file.
func (t *Table) DataPath() string {
	return tablePath(t.db.Name, t.Name, dataExt)
}

// IndexPath returns the base path for an index over the named column; the
// index appends its own file extensions.
func (t *Table) IndexPath(column string) string {
	return filepath.Join(t.db.Name, fmt.Sprintf("%s.%s", t.Name, column))
}

func tablePath(database, name, ext string) string {
	return filepath.Join(database, fmt.Sprintf("%s.%s", name, ext))
}
