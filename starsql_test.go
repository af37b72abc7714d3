package starsql

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starsql/starsql/internal/bstar"
	"github.com/starsql/starsql/internal/meta"
	"github.com/starsql/starsql/internal/sqltype"
)

func TestEmbeddingRoundTrip(t *testing.T) {
	db, err := CreateDatabase(filepath.Join(t.TempDir(), "embedded"))
	require.NoError(t, err)

	table, err := db.CreateTable("events", []Column{
		sqltype.NewColumn("id", sqltype.IntType(), false, "", true),
		sqltype.NewColumn("tag", sqltype.VarCharType(8), false, "", false),
	}, meta.FlatFileID)
	require.NoError(t, err)

	eng, err := OpenEngine(table)
	require.NoError(t, err)
	defer eng.Close()
	require.NoError(t, eng.CreateTable())

	idx, err := CreateIndex(table, "id", 2)
	require.NoError(t, err)

	for i := int64(1); i <= 20; i++ {
		off, err := eng.InsertRow([]Value{sqltype.IntValue(i), sqltype.StringValue("ev")})
		require.NoError(t, err)
		ok, err := idx.Insert(IndexEntry{Key: bstar.Uint64(i), Addr: off})
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.NoError(t, idx.Close())

	// Reopen through the table, as an embedding host would.
	idx, err = OpenIndex(table, "id")
	require.NoError(t, err)
	require.Equal(t, uint64(20), idx.Len())
	require.Equal(t, table.DataPath(), idx.Target())

	entry, err := idx.Lookup(13)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.NoError(t, idx.Close())

	require.NoError(t, DropIndex(table, "id"))
	_, err = OpenIndex(table, "id")
	require.Error(t, err)
}
