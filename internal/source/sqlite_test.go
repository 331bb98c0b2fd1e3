package source

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func createTestDB(t *testing.T, table string, records []string) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec("CREATE TABLE " + quoteIdent(table) + " (id TEXT PRIMARY KEY, record TEXT NOT NULL)")
	require.NoError(t, err)

	for i, rec := range records {
		_, err = db.Exec("INSERT INTO "+quoteIdent(table)+" (id, record) VALUES (?, ?)",
			string(rune('a'+i)), rec)
		require.NoError(t, err)
	}
	return dbPath
}

func TestStreamSQLite(t *testing.T) {
	t.Run("records in id order", func(t *testing.T) {
		dbPath := createTestDB(t, DefaultTable, []string{
			`{"name":"Alice","tags":["x"]}`,
			`{"name":"Bob","tags":[]}`,
		})

		var ids []string
		var names []any
		err := StreamSQLite(dbPath, "", func(id string, record any) error {
			ids = append(ids, id)
			names = append(names, record.(map[string]any)["name"])
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids)
		assert.Equal(t, []any{"Alice", "Bob"}, names)
	})

	t.Run("custom table", func(t *testing.T) {
		dbPath := createTestDB(t, "pages", []string{`{"n":1}`})
		count := 0
		require.NoError(t, StreamSQLite(dbPath, "pages", func(string, any) error {
			count++
			return nil
		}))
		assert.Equal(t, 1, count)
	})

	t.Run("callback error stops", func(t *testing.T) {
		dbPath := createTestDB(t, DefaultTable, []string{`{}`, `{}`})
		stop := errors.New("stop")
		calls := 0
		err := StreamSQLite(dbPath, "", func(string, any) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	})

	t.Run("bad record", func(t *testing.T) {
		dbPath := createTestDB(t, DefaultTable, []string{`{not json`})
		err := StreamSQLite(dbPath, "", func(string, any) error { return nil })
		assert.ErrorContains(t, err, "parse record a")
	})

	t.Run("missing table", func(t *testing.T) {
		dbPath := createTestDB(t, "other", nil)
		err := StreamSQLite(dbPath, "", func(string, any) error { return nil })
		assert.Error(t, err)
	})
}
