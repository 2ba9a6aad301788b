package images

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) List(ctx context.Context, cardID int64) (map[models.ImageLocation]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT location, object_key FROM card_images WHERE card_id = ?`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to select images of card %d: %w", cardID, err)
	}
	defer rows.Close()

	result := make(map[models.ImageLocation]string)
	for rows.Next() {
		var loc, key string
		if err := rows.Scan(&loc, &key); err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		l, err := models.ParseImageLocation(loc)
		if err != nil {
			return nil, err
		}
		result[l] = key
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate image rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, cardID int64, loc models.ImageLocation, objectKey string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO card_images (card_id, location, object_key) VALUES (?, ?, ?)
		ON CONFLICT(card_id, location) DO UPDATE SET object_key = excluded.object_key
	`, cardID, loc.String(), objectKey)
	if err != nil {
		return fmt.Errorf("failed to set %s image of card %d: %w", loc, cardID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, cardID int64, loc models.ImageLocation) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM card_images WHERE card_id = ? AND location = ?`, cardID, loc.String())
	if err != nil {
		return fmt.Errorf("failed to delete %s image of card %d: %w", loc, cardID, err)
	}
	return nil
}
