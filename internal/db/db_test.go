package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenForTesting(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	var tableName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='inspectors'").Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "inspectors", tableName)
}

func TestOpenForTestingIsolated(t *testing.T) {
	first, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Close() })

	second, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	_, err = first.Exec("INSERT INTO inspectors (name) VALUES ('Иванов И.И.')")
	require.NoError(t, err)

	var n int
	require.NoError(t, second.QueryRow("SELECT COUNT(*) FROM inspectors").Scan(&n))
	assert.Zero(t, n)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspectors.db")

	first, err := Open(path)
	require.NoError(t, err)
	_, err = first.Exec("INSERT INTO inspectors (name) VALUES ('Петров П.П.')")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, second.Close()) })

	var n int
	require.NoError(t, second.QueryRow("SELECT COUNT(*) FROM inspectors").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestCreatedAtDefaultsToInsertionTime(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("INSERT INTO inspectors (name) VALUES ('Сидоров С.С.')")
	require.NoError(t, err)

	var createdAt string
	require.NoError(t, db.QueryRow("SELECT CAST(createdAt AS TEXT) FROM inspectors").Scan(&createdAt))
	assert.NotEmpty(t, createdAt)
}

func TestOpenFailsOnUnwritablePath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "inspectors.db"))
	assert.Error(t, err)
}

func TestNameIsNotNull(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("INSERT INTO inspectors (name) VALUES (NULL)")
	assert.Error(t, err)
}
