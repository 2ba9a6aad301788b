// Package cards persists loyalty cards in the local SQLite database.
//
// Images are not stored here; see the images repository for their object
// keys. All methods accept a dbx.DBTX so they can run inside a transaction.
package cards

import (
	"context"
	"time"

	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
)

type Repository interface {
	// Create inserts card and returns the assigned id. card.ID is ignored.
	Create(ctx context.Context, card *models.Card) (int64, error)

	// Update overwrites the row with card.ID; common.ErrNotFound if absent.
	Update(ctx context.Context, card *models.Card) error

	// GetByID returns common.ErrNotFound when no card has id.
	GetByID(ctx context.Context, id int64) (*models.Card, error)

	// List returns all cards ordered by store name.
	List(ctx context.Context) ([]models.Card, error)

	Delete(ctx context.Context, id int64) error

	// Touch records when the card was last used.
	Touch(ctx context.Context, id int64, at time.Time) error
}
