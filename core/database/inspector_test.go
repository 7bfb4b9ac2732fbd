package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_entries (id INTEGER PRIMARY KEY, entry_key TEXT, path TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_entries")
	require.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}
	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["entry_key"])
	assert.Equal(t, "text", colMap["path"])

	// PRAGMA table_info yields no rows and no error for unknown tables.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE test_entries (id INTEGER PRIMARY KEY, Path TEXT)").Error)

	missing, err := MissingColumns(db, "test_entries", "path", "values", "catalog")
	require.NoError(t, err)
	assert.Equal(t, []string{"catalog", "values"}, missing)
}
