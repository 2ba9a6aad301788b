package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/client/config"
	"github.com/dmitrijs2005/cardkeeper/internal/client/imagestore"
	"github.com/dmitrijs2005/cardkeeper/internal/client/services"
	"github.com/dmitrijs2005/cardkeeper/internal/client/session"
	"github.com/dmitrijs2005/cardkeeper/internal/client/shortcuts"
	"github.com/dmitrijs2005/cardkeeper/internal/client/storage"
	"github.com/dmitrijs2005/cardkeeper/internal/currency"
	"github.com/dmitrijs2005/cardkeeper/internal/logging"
)

// RecentLister lists recently saved cards. *shortcuts.Refresher implements it.
type RecentLister interface {
	Recent(ctx context.Context) ([]int64, error)
}

type App struct {
	config     *config.Config
	cards      services.CardService
	recent     RecentLister
	renderer   *barcode.Renderer
	currencies *currency.Service
	logger     logging.Logger

	in  io.Reader
	out io.Writer

	closers []func() error
}

// NewApp opens the database and image store described by c and builds the
// services on top of them.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, c.LogFormat, os.Stderr)

	st, err := storage.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	app := &App{
		config:     c,
		renderer:   barcode.NewRenderer(c.Display()),
		currencies: currency.NewService(),
		logger:     logger,
		in:         os.Stdin,
		out:        os.Stdout,
		closers:    []func() error{st.Close},
	}

	images, err := newImageStore(ctx, c)
	if err != nil {
		app.Close()
		return nil, err
	}

	var publisher shortcuts.Publisher
	if c.NatsURL != "" {
		nc, err := shortcuts.Connect(c.NatsURL, c.NatsToken)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("error connecting to NATS: %w", err)
		}
		app.closers = append(app.closers, func() error { nc.Close(); return nil })
		publisher = nc
		logger.Info(ctx, "publishing card updates", "url", c.NatsURL, "subject", shortcuts.Subject)
	}

	refresher := shortcuts.NewRefresher(st.Metadata(st.DB), publisher, c.RecentLimit, logger)
	app.recent = refresher
	app.cards = services.NewCardService(st, images, refresher, logger)

	return app, nil
}

func newImageStore(ctx context.Context, c *config.Config) (imagestore.Store, error) {
	if c.S3.Enabled() {
		s, err := imagestore.NewS3Store(ctx, c.S3.Options())
		if err != nil {
			return nil, fmt.Errorf("error initializing S3 image store: %w", err)
		}
		return s, nil
	}

	s, err := imagestore.NewFileStore(c.ImageDir)
	if err != nil {
		return nil, fmt.Errorf("error initializing image directory: %w", err)
	}
	return s, nil
}

// Close releases everything NewApp opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn(context.Background(), "error closing resource", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) newSession() *session.Session {
	return session.New(a.cards, a.renderer, session.Options{
		Workers:       a.config.RenderWorkers,
		RenderTimeout: a.config.RenderTimeout,
		Currencies:    a.currencies,
		Logger:        a.logger,
	})
}
