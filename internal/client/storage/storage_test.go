package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestInitDatabase_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "wallet.db")

	s, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"goose_db_version", "cards", "user_groups", "card_groups", "card_images", "metadata"} {
		assert.True(t, tableExists(t, s.DB, table), table)
	}

	assert.NotNil(t, s.Cards(s.DB))
	assert.NotNil(t, s.Groups(s.DB))
	assert.NotNil(t, s.Images(s.DB))
	assert.NotNil(t, s.Metadata(s.DB))
}

func TestInitDatabase_InMemory(t *testing.T) {
	s, err := InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, tableExists(t, s.DB, "cards"))
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "wallet.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
}

func TestOpen_EnforcesForeignKeys(t *testing.T) {
	s, err := InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.DB.Exec(`INSERT INTO card_groups (card_id, group_name) VALUES (42, 'nope')`)
	require.Error(t, err)
}

func TestRunMigrations_Error(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	err = RunMigrations(ctx, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
