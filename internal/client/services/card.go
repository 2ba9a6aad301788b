// Package services implements the card data gateway: loading cards from
// the database, an import link or a blank template, and saving a card with
// its images and groups as one logical operation.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/cardkeeper/internal/client/imagestore"
	"github.com/dmitrijs2005/cardkeeper/internal/client/importuri"
	"github.com/dmitrijs2005/cardkeeper/internal/client/models"
	"github.com/dmitrijs2005/cardkeeper/internal/client/storage"
	"github.com/dmitrijs2005/cardkeeper/internal/common"
	"github.com/dmitrijs2005/cardkeeper/internal/dbx"
	"github.com/dmitrijs2005/cardkeeper/internal/logging"
)

type CardService interface {
	Load(ctx context.Context, req models.LoadRequest) (*models.LoadedCard, error)
	Save(ctx context.Context, card models.Card, groups []models.Group) (*models.Card, error)
	ListCards(ctx context.Context) ([]models.Card, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	CreateGroup(ctx context.Context, name string) (models.Group, error)
}

// ShortcutRefresher updates presentation state derived from a saved card.
type ShortcutRefresher interface {
	Refresh(ctx context.Context, card models.Card) error
}

type cardService struct {
	storage   *storage.Storage
	images    imagestore.Store
	refresher ShortcutRefresher
	logger    logging.Logger
}

// NewCardService wires the gateway. refresher may be nil.
func NewCardService(st *storage.Storage, images imagestore.Store, refresher ShortcutRefresher, logger logging.Logger) CardService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &cardService{storage: st, images: images, refresher: refresher, logger: logger}
}

func (s *cardService) Load(ctx context.Context, req models.LoadRequest) (*models.LoadedCard, error) {
	allGroups, err := s.storage.Groups(s.storage.DB).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing groups: %w", err)
	}

	result := &models.LoadedCard{AllGroups: allGroups}

	switch {
	case req.ImportRef != "":
		card, err := importuri.Parse(req.ImportRef)
		if err != nil {
			return nil, err
		}
		result.Card = card

	case req.ID > 0:
		card, err := s.storage.Cards(s.storage.DB).GetByID(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("error loading card %d: %w", req.ID, err)
		}
		if err := s.loadImages(ctx, card); err != nil {
			return nil, err
		}

		if req.Duplicate {
			card.ID = models.NewCardID
		} else {
			result.Groups, err = s.storage.Groups(s.storage.DB).ForCard(ctx, card.ID)
			if err != nil {
				return nil, fmt.Errorf("error loading groups of card %d: %w", card.ID, err)
			}
		}
		result.Card = *card

	default:
		result.Card = models.NewCard()
	}

	return result, nil
}

func (s *cardService) loadImages(ctx context.Context, card *models.Card) error {
	keys, err := s.storage.Images(s.storage.DB).List(ctx, card.ID)
	if err != nil {
		return fmt.Errorf("error listing images of card %d: %w", card.ID, err)
	}

	for loc, key := range keys {
		data, err := s.images.Get(ctx, key)
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn(ctx, "image blob missing", "card", card.ID, "location", loc.String(), "key", key)
			continue
		}
		if err != nil {
			return fmt.Errorf("error reading %s image of card %d: %w", loc, card.ID, err)
		}
		card.SetImage(loc, data)
	}
	return nil
}

// Save inserts or updates card, stores its images and group memberships and
// returns the canonical persisted card. Image blobs are written before the
// transaction; blobs of a failed save are removed again, and blobs replaced
// by a successful one are removed after commit.
func (s *cardService) Save(ctx context.Context, card models.Card, groups []models.Group) (*models.Card, error) {
	var previous map[models.ImageLocation]string
	if !card.IsNew() {
		var err error
		previous, err = s.storage.Images(s.storage.DB).List(ctx, card.ID)
		if err != nil {
			return nil, fmt.Errorf("error listing images of card %d: %w", card.ID, err)
		}
	}

	written, err := s.putImages(ctx, card)
	if err != nil {
		return nil, err
	}

	id, err := dbx.WithTxResult(ctx, s.storage.DB, nil, func(ctx context.Context, tx dbx.DBTX) (int64, error) {
		id := card.ID
		if card.IsNew() {
			var err error
			if id, err = s.storage.Cards(tx).Create(ctx, &card); err != nil {
				return 0, err
			}
		} else if err := s.storage.Cards(tx).Update(ctx, &card); err != nil {
			return 0, err
		}

		imagesRepo := s.storage.Images(tx)
		for _, loc := range models.ImageLocations {
			if key, ok := written[loc]; ok {
				if err := imagesRepo.Set(ctx, id, loc, key); err != nil {
					return 0, err
				}
			} else if _, had := previous[loc]; had {
				if err := imagesRepo.Delete(ctx, id, loc); err != nil {
					return 0, err
				}
			}
		}

		if err := s.storage.Groups(tx).SetForCard(ctx, id, groups); err != nil {
			return 0, err
		}
		return id, nil
	})
	if err != nil {
		s.deleteBlobs(ctx, written)
		return nil, fmt.Errorf("error saving card: %w", err)
	}

	s.deleteBlobs(ctx, previous)

	saved, err := s.reload(ctx, id)
	if err != nil {
		// The card is committed; answer with what was written so a retry
		// updates it instead of inserting a copy.
		s.logger.Warn(ctx, "error reloading saved card", "card", id, "error", err)
		saved = &card
		saved.ID = id
	}

	if s.refresher != nil {
		if err := s.refresher.Refresh(ctx, *saved); err != nil {
			s.logger.Error(ctx, "shortcut refresh failed", "card", id, "error", err)
		}
	}

	s.logger.Info(ctx, "card saved", "card", id)
	return saved, nil
}

func (s *cardService) reload(ctx context.Context, id int64) (*models.Card, error) {
	card, err := s.storage.Cards(s.storage.DB).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reloading card %d: %w", id, err)
	}
	if err := s.loadImages(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// putImages stores every non-empty image concurrently and returns the new
// object keys by location.
func (s *cardService) putImages(ctx context.Context, card models.Card) (map[models.ImageLocation]string, error) {
	var (
		mu      sync.Mutex
		written = make(map[models.ImageLocation]string)
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, loc := range models.ImageLocations {
		data := card.Image(loc)
		if len(data) == 0 {
			continue
		}
		g.Go(func() error {
			key, err := s.images.Put(gctx, data)
			if err != nil {
				return fmt.Errorf("error storing %s image: %w", loc, err)
			}
			mu.Lock()
			written[loc] = key
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.deleteBlobs(ctx, written)
		return nil, err
	}
	return written, nil
}

func (s *cardService) deleteBlobs(ctx context.Context, keys map[models.ImageLocation]string) {
	for loc, key := range keys {
		if err := s.images.Delete(ctx, key); err != nil {
			s.logger.Warn(ctx, "error deleting image blob", "location", loc.String(), "key", key, "error", err)
		}
	}
}

func (s *cardService) ListCards(ctx context.Context) ([]models.Card, error) {
	cards, err := s.storage.Cards(s.storage.DB).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing cards: %w", err)
	}
	return cards, nil
}

func (s *cardService) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.storage.Groups(s.storage.DB).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing groups: %w", err)
	}
	return groups, nil
}

func (s *cardService) CreateGroup(ctx context.Context, name string) (models.Group, error) {
	g, err := s.storage.Groups(s.storage.DB).Create(ctx, name)
	if err != nil {
		return models.Group{}, fmt.Errorf("error creating group: %w", err)
	}
	return g, nil
}
