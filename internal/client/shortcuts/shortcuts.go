// Package shortcuts maintains presentation state derived from saved cards:
// the recently used cards list and change notifications for other
// processes (launchers, widgets) over NATS.
package shortcuts

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cardkeeper/internal/logging"
)

const (
	// RecentKey is the metadata key holding the recent card ids.
	RecentKey = "shortcuts.recent"
	// Subject is the NATS subject card updates are published on.
	Subject = "cardkeeper.cards.updated"

	DefaultLimit = 4
)

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Update is the notification payload.
type Update struct {
	ID        int64     `json:"id"`
	StoreName string    `json:"store_name"`
	Archived  bool      `json:"archived"`
	Recent    []int64   `json:"recent"`
	At        time.Time `json:"at"`
}

type Refresher struct {
	meta      metadata.Repository
	publisher Publisher
	limit     int
	logger    logging.Logger
	now       func() time.Time
}

// NewRefresher builds a refresher; publisher may be nil.
func NewRefresher(meta metadata.Repository, publisher Publisher, limit int, logger logging.Logger) *Refresher {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Refresher{meta: meta, publisher: publisher, limit: limit, logger: logger, now: time.Now}
}

// Refresh moves card to the front of the recent list, or drops it when the
// card is archived, and then notifies subscribers.
func (r *Refresher) Refresh(ctx context.Context, card models.Card) error {
	recent, err := r.Recent(ctx)
	if err != nil {
		return err
	}

	recent = slices.DeleteFunc(recent, func(id int64) bool { return id == card.ID })
	if !card.Archived {
		recent = append([]int64{card.ID}, recent...)
	}
	if len(recent) > r.limit {
		recent = recent[:r.limit]
	}

	if err := metadata.SetJSON(ctx, r.meta, RecentKey, recent); err != nil {
		return fmt.Errorf("store recent cards: %w", err)
	}

	if r.publisher == nil {
		return nil
	}

	payload, err := json.Marshal(Update{
		ID:        card.ID,
		StoreName: card.StoreName,
		Archived:  card.Archived,
		Recent:    recent,
		At:        r.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}
	if err := r.publisher.Publish(Subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", Subject, err)
	}
	r.logger.Debug(ctx, "card update published", "id", card.ID)
	return nil
}

// Recent returns the recent card ids, most recent first.
func (r *Refresher) Recent(ctx context.Context) ([]int64, error) {
	recent, _, err := metadata.GetJSON[[]int64](ctx, r.meta, RecentKey)
	if err != nil {
		return nil, fmt.Errorf("load recent cards: %w", err)
	}
	return recent, nil
}
