package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDBCreatesSchema(t *testing.T) {
	t.Parallel()

	database, err := NewDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	// Both base tables exist and accept rows.
	_, err = database.Exec(`
		INSERT INTO sessions (session_id, result_json, created_at)
		VALUES ('s1', '{}', 1)`)
	assert.NoError(t, err)

	_, err = database.Exec(`
		INSERT INTO live_verdicts (verdict_id, session_id, view, aligned, message, tick_at)
		VALUES ('v1', 's1', 'frontal', 1, 'ok', 1)`)
	assert.NoError(t, err)
}

func TestNewDBOnDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "screening.db")
	database, err := NewDB(path)
	require.NoError(t, err)
	defer database.Close()

	assert.FileExists(t, path)
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	// Migrations live at the repo root; this package sits two levels down.
	migrationsDir := filepath.Join("..", "..", "migrations")

	path := filepath.Join(t.TempDir(), "screening.db")
	database, err := NewDB(path)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.MigrateUp(migrationsDir))

	version, dirty, err := database.MigrateVersion(migrationsDir)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	// Up is idempotent.
	assert.NoError(t, database.MigrateUp(migrationsDir))

	require.NoError(t, database.MigrateDown(migrationsDir))
	version, dirty, err = database.MigrateVersion(migrationsDir)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Zero(t, version)
}
