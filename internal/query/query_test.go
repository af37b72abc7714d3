package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starsql/starsql/internal/sqltype"
)

func newExecutor(t *testing.T) *Executor {
	t.Helper()
	e := NewExecutor(t.TempDir())

	_, err := e.Run("CREATE DATABASE shop")
	require.NoError(t, err)
	_, err = e.Run("CREATE TABLE users (id int PRIMARY KEY, active bool, name varchar(16))")
	require.NoError(t, err)
	return e
}

func TestExecutorRequiresDatabase(t *testing.T) {
	e := NewExecutor(t.TempDir())
	_, err := e.Run("CREATE TABLE t (x int)")
	require.ErrorIs(t, err, ErrNoDatabase)
}

func TestInsertAndSelect(t *testing.T) {
	e := newExecutor(t)

	res, err := e.Run("INSERT INTO users VALUES (1, true, 'ada')")
	require.NoError(t, err)
	require.Equal(t, "1 row inserted", res.Message)
	_, err = e.Run("INSERT INTO users VALUES (2, false, 'grace')")
	require.NoError(t, err)

	res, err = e.Run("SELECT * FROM users")
	require.NoError(t, err)
	require.NotNil(t, res.Rows)
	require.Equal(t, 2, res.Rows.Len())

	res, err = e.Run("SELECT * FROM users WHERE id = 2")
	require.NoError(t, err)
	require.Equal(t, 1, res.Rows.Len())
	require.Equal(t, sqltype.StringValue("grace"), res.Rows.Data[0].Values[2])

	_, err = e.Run("SELECT * FROM users WHERE ghost = 1")
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestUseExistingDatabase(t *testing.T) {
	dir := t.TempDir()

	e := NewExecutor(dir)
	_, err := e.Run("CREATE DATABASE shop")
	require.NoError(t, err)
	_, err = e.Run("CREATE TABLE items (id int)")
	require.NoError(t, err)

	other := NewExecutor(dir)
	_, err = other.Run("USE shop")
	require.NoError(t, err)
	res, err := other.Run("DESCRIBE items")
	require.NoError(t, err)
	require.Contains(t, res.Message, "id int")
}

func TestDropTable(t *testing.T) {
	e := newExecutor(t)

	_, err := e.Run("DROP TABLE users")
	require.NoError(t, err)

	_, err = e.Run("SELECT * FROM users")
	require.Error(t, err)
}
