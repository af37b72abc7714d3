package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starsql/starsql/internal/sqltype"
)

func testColumns() []sqltype.Column {
	return []sqltype.Column{
		sqltype.NewColumn("id", sqltype.IntType(), false, "row id", true),
		sqltype.NewColumn("active", sqltype.BoolType(), false, "", false),
		sqltype.NewColumn("name", sqltype.VarCharType(32), true, "display name", false),
	}
}

func newDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := CreateDatabase(filepath.Join(t.TempDir(), "testdb"))
	require.NoError(t, err)
	return db
}

func TestCreateAndLoadDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mydb")
	db, err := CreateDatabase(dir)
	require.NoError(t, err)
	require.Equal(t, dir, db.Name)

	loaded, err := LoadDatabase(dir)
	require.NoError(t, err)
	require.Equal(t, dir, loaded.Name)

	require.NoError(t, db.Delete())
	_, err = LoadDatabase(dir)
	require.ErrorIs(t, err, ErrLoadDatabase)
}

func TestCreateAndLoadTable(t *testing.T) {
	db := newDatabase(t)

	table, err := db.CreateTable("users", testColumns(), FlatFileID)
	require.NoError(t, err)
	require.FileExists(t, table.MetadataPath())

	loaded, err := db.LoadTable("users")
	require.NoError(t, err)
	require.Equal(t, FlatFileID, loaded.Engine())
	require.Equal(t, testColumns(), loaded.Columns())
	require.Equal(t, uint32(4+1+34), loaded.RowSize())
}

func TestLoadTableWrongMagic(t *testing.T) {
	db := newDatabase(t)

	path := filepath.Join(db.Name, "broken.tbl")
	require.NoError(t, os.WriteFile(path, []byte("this is not a table file"), 0o666))

	_, err := db.LoadTable("broken")
	require.ErrorIs(t, err, ErrWrongMagic)
}

func TestAddAndRemoveColumn(t *testing.T) {
	db := newDatabase(t)
	table, err := db.CreateTable("users", testColumns(), FlatFileID)
	require.NoError(t, err)

	require.ErrorIs(t, table.AddColumn("id", sqltype.IntType(), false, "", false), ErrAddColumn)

	require.NoError(t, table.AddColumn("age", sqltype.IntType(), true, "", false))
	require.NoError(t, table.Save())

	loaded, err := db.LoadTable("users")
	require.NoError(t, err)
	require.Len(t, loaded.Columns(), 4)

	require.NoError(t, loaded.RemoveColumn("active"))
	require.ErrorIs(t, loaded.RemoveColumn("ghost"), ErrRemoveColumn)
	require.NoError(t, loaded.Save())

	reloaded, err := db.LoadTable("users")
	require.NoError(t, err)
	require.Len(t, reloaded.Columns(), 3)
}

func TestDeleteTable(t *testing.T) {
	db := newDatabase(t)
	table, err := db.CreateTable("gone", testColumns(), FlatFileID)
	require.NoError(t, err)

	require.NoError(t, table.Delete())
	require.NoFileExists(t, table.MetadataPath())
}
