package groups

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
	"github.com/dmitrijs2005/cardkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Group, error) {
	return r.query(ctx, `SELECT name, sort_order FROM user_groups ORDER BY sort_order, name`)
}

func (r *SQLiteRepository) Create(ctx context.Context, name string) (models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Group{}, fmt.Errorf("group name: %w", common.ErrFieldEmpty)
	}

	var g models.Group
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_groups (name, sort_order)
		VALUES (?, (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM user_groups))
		RETURNING name, sort_order`, name).Scan(&g.Name, &g.Order)
	if err != nil {
		return models.Group{}, fmt.Errorf("failed to create group %q: %w", name, err)
	}
	return g, nil
}

func (r *SQLiteRepository) ForCard(ctx context.Context, cardID int64) ([]models.Group, error) {
	return r.query(ctx, `
		SELECT g.name, g.sort_order
		FROM user_groups g JOIN card_groups cg ON cg.group_name = g.name
		WHERE cg.card_id = ?
		ORDER BY g.sort_order, g.name`, cardID)
}

func (r *SQLiteRepository) SetForCard(ctx context.Context, cardID int64, groups []models.Group) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM card_groups WHERE card_id = ?`, cardID); err != nil {
		return fmt.Errorf("failed to clear groups of card %d: %w", cardID, err)
	}

	for _, g := range groups {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO user_groups (name, sort_order)
			VALUES (?, (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM user_groups))
			ON CONFLICT(name) DO NOTHING`, g.Name)
		if err != nil {
			return fmt.Errorf("failed to ensure group %q: %w", g.Name, err)
		}

		_, err = r.db.ExecContext(ctx, `
			INSERT INTO card_groups (card_id, group_name) VALUES (?, ?)
			ON CONFLICT DO NOTHING`, cardID, g.Name)
		if err != nil {
			return fmt.Errorf("failed to link card %d to group %q: %w", cardID, g.Name, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select groups: %w", err)
	}
	defer rows.Close()

	result := []models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.Name, &g.Order); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return result, nil
}
