package config

import (
	"time"

	"github.com/dmitrijs2005/cardkeeper/internal/barcode"
	"github.com/dmitrijs2005/cardkeeper/internal/client/imagestore"
	"github.com/dmitrijs2005/cardkeeper/internal/client/shortcuts"
)

// Config holds runtime settings for the cardkeeper CLI.
type Config struct {
	DatabaseDSN string
	// ImageDir holds card images unless S3 is configured.
	ImageDir string

	LogLevel  string
	LogFormat string

	// ScreenDensity and ScreenWidthPx describe the display barcodes are
	// rendered for.
	ScreenDensity float64
	ScreenWidthPx int

	RenderWorkers int
	RenderTimeout time.Duration

	RecentLimit int
	NatsURL     string
	NatsToken   string

	S3 S3Config
}

// S3Config selects the S3 image store when Bucket is set.
type S3Config struct {
	Endpoint string
	Region   string
	Bucket   string
	User     string
	Password string
	Prefix   string
}

func (c S3Config) Enabled() bool { return c.Bucket != "" }

func (c S3Config) Options() imagestore.S3Options {
	return imagestore.S3Options{
		Endpoint: c.Endpoint,
		Region:   c.Region,
		Bucket:   c.Bucket,
		User:     c.User,
		Password: c.Password,
		Prefix:   c.Prefix,
	}
}

// Display returns the render target described by the config.
func (c *Config) Display() barcode.Display {
	return barcode.Display{Density: c.ScreenDensity, WidthPx: c.ScreenWidthPx}
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "cardkeeper.db"
	c.ImageDir = "images"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.ScreenDensity = 2
	c.ScreenWidthPx = 1080
	c.RenderWorkers = 2
	c.RenderTimeout = 5 * time.Second
	c.RecentLimit = shortcuts.DefaultLimit
	c.S3.Region = "us-east-1"
}

// LoadConfig builds a Config from defaults, the environment, an optional
// JSON file and command-line flags, later sources taking precedence. It
// returns the arguments that are not configuration flags.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, nil, err
	}
	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}
