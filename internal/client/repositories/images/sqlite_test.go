package images

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/cardkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

func setupDB(t *testing.T) (*sql.DB, int64) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, "."))

	res, err := db.Exec(`INSERT INTO cards (store_name, card_id) VALUES ('s', 'c')`)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return db, id
}

func TestSetListDelete(t *testing.T) {
	db, cardID := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	m, err := r.List(ctx, cardID)
	require.NoError(t, err)
	assert.Empty(t, m)

	require.NoError(t, r.Set(ctx, cardID, models.ImageFront, "k1"))
	require.NoError(t, r.Set(ctx, cardID, models.ImageIcon, "k2"))
	require.NoError(t, r.Set(ctx, cardID, models.ImageFront, "k3"))

	m, err = r.List(ctx, cardID)
	require.NoError(t, err)
	assert.Equal(t, map[models.ImageLocation]string{models.ImageFront: "k3", models.ImageIcon: "k2"}, m)

	require.NoError(t, r.Delete(ctx, cardID, models.ImageFront))
	m, err = r.List(ctx, cardID)
	require.NoError(t, err)
	assert.Equal(t, map[models.ImageLocation]string{models.ImageIcon: "k2"}, m)
}

func TestList_BadLocation(t *testing.T) {
	db, cardID := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := db.Exec(`INSERT INTO card_images (card_id, location, object_key) VALUES (?, 'side', 'k')`, cardID)
	require.NoError(t, err)

	_, err = r.List(context.Background(), cardID)
	require.ErrorIs(t, err, common.ErrParse)
}
