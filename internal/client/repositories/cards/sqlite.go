package cards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
	"github.com/dmitrijs2005/cardkeeper/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const cardColumns = `id, store_name, note, valid_from, expiry, balance, balance_type,
	card_id, barcode_id, barcode_type, header_color, starred, archived, last_used`

func (r *SQLiteRepository) Create(ctx context.Context, c *models.Card) (int64, error) {
	query := `INSERT INTO cards (store_name, note, valid_from, expiry, balance, balance_type,
			card_id, barcode_id, barcode_type, header_color, starred, archived, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, args(c)...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get card id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, c *models.Card) error {
	query := `UPDATE cards SET store_name = ?, note = ?, valid_from = ?, expiry = ?, balance = ?,
			balance_type = ?, card_id = ?, barcode_id = ?, barcode_type = ?, header_color = ?,
			starred = ?, archived = ?, last_used = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, append(args(c), c.ID)...)
	if err != nil {
		return fmt.Errorf("failed to update card %d: %w", c.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("card %d: %w", c.ID, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %d: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Card, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY store_name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var result []models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cards SET last_used = ? WHERE id = ?`, at.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to touch card %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("card %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func args(c *models.Card) []any {
	var balanceType, barcodeType sql.NullString
	if c.BalanceType != nil {
		balanceType = sql.NullString{String: c.BalanceType.String(), Valid: true}
	}
	if c.BarcodeType != nil {
		barcodeType = sql.NullString{String: c.BarcodeType.String(), Valid: true}
	}

	var barcodeID sql.NullString
	if c.BarcodeID != nil {
		barcodeID = sql.NullString{String: *c.BarcodeID, Valid: true}
	}

	var headerColor sql.NullInt64
	if c.HeaderColor != nil {
		headerColor = sql.NullInt64{Int64: int64(*c.HeaderColor), Valid: true}
	}

	var lastUsed int64
	if !c.LastUsed.IsZero() {
		lastUsed = c.LastUsed.UnixMilli()
	}

	return []any{
		c.StoreName, c.Note, millis(c.ValidFrom), millis(c.Expiry), c.Balance.String(), balanceType,
		c.CardID, barcodeID, barcodeType, headerColor, c.Starred, c.Archived, lastUsed,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (*models.Card, error) {
	var (
		c                        models.Card
		validFrom, expiry        sql.NullInt64
		headerColor              sql.NullInt64
		balance                  string
		balanceType, barcodeType sql.NullString
		barcodeID                sql.NullString
		lastUsed                 int64
	)

	err := s.Scan(&c.ID, &c.StoreName, &c.Note, &validFrom, &expiry, &balance, &balanceType,
		&c.CardID, &barcodeID, &barcodeType, &headerColor, &c.Starred, &c.Archived, &lastUsed)
	if err != nil {
		return nil, err
	}

	c.ValidFrom = fromMillis(validFrom)
	c.Expiry = fromMillis(expiry)
	if lastUsed != 0 {
		c.LastUsed = time.UnixMilli(lastUsed)
	}

	c.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("card %d balance %q: %w", c.ID, balance, err)
	}
	if balanceType.Valid {
		u, err := currency.ParseISO(balanceType.String)
		if err != nil {
			return nil, fmt.Errorf("card %d balance type: %w", c.ID, err)
		}
		c.BalanceType = &u
	}
	if barcodeType.Valid {
		s, err := barcode.ParseSymbology(barcodeType.String)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", c.ID, err)
		}
		c.BarcodeType = &s
	}
	if barcodeID.Valid {
		v := barcodeID.String
		c.BarcodeID = &v
	}
	if headerColor.Valid {
		v := uint32(headerColor.Int64)
		c.HeaderColor = &v
	}
	return &c, nil
}

func millis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64)
	return &t
}
