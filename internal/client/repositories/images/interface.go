// Package images indexes where each card image lives in the blob store.
package images

import (
	"context"

	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
)

type Repository interface {
	// List returns the object key per image location of a card.
	List(ctx context.Context, cardID int64) (map[models.ImageLocation]string, error)
	// Set records the object key for one image, replacing any previous one.
	Set(ctx context.Context, cardID int64, loc models.ImageLocation, objectKey string) error
	Delete(ctx context.Context, cardID int64, loc models.ImageLocation) error
}
