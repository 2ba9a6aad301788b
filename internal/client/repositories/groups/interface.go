// Package groups persists user-defined card groups and card membership.
package groups

import (
	"context"

	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
)

type Repository interface {
	// List returns all groups in display order.
	List(ctx context.Context) ([]models.Group, error)

	// Create appends a group at the end of the list. Names are unique.
	Create(ctx context.Context, name string) (models.Group, error)

	// ForCard returns the groups cardID belongs to, in display order.
	ForCard(ctx context.Context, cardID int64) ([]models.Group, error)

	// SetForCard replaces the card's memberships. Groups that do not exist
	// yet are created.
	SetForCard(ctx context.Context, cardID int64, groups []models.Group) error
}
