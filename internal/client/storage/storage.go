// Package storage opens the wallet database, applies migrations and vends
// repositories bound to it.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/cardkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/cardkeeper/internal/client/repositories/cards"
	"github.com/dmitrijs2005/cardkeeper/internal/client/repositories/groups"
	"github.com/dmitrijs2005/cardkeeper/internal/client/repositories/images"
	"github.com/dmitrijs2005/cardkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cardkeeper/internal/dbx"
)

// Storage owns the database handle.
type Storage struct {
	DB *sql.DB
}

// Cards returns a cards repository bound to db, which may be a transaction.
func (s *Storage) Cards(db dbx.DBTX) cards.Repository { return cards.NewSQLiteRepository(db) }

func (s *Storage) Groups(db dbx.DBTX) groups.Repository { return groups.NewSQLiteRepository(db) }

func (s *Storage) Images(db dbx.DBTX) images.Repository { return images.NewSQLiteRepository(db) }

func (s *Storage) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Open opens the SQLite database at dsn. The pool is limited to a single
// connection so that ":memory:" databases and foreign key enforcement
// apply to every statement.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// InitDatabase opens dsn and migrates it to the latest schema.
func InitDatabase(ctx context.Context, dsn string) (*Storage, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{DB: db}, nil
}
