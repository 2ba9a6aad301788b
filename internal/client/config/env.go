package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix starts every environment variable read by the config.
const EnvPrefix = "CARDKEEPER_"

// parseEnv overlays Config with CARDKEEPER_* variables. Variables from
// dotenv are loaded first when the file exists; real environment variables
// win over it.
func parseEnv(cfg *Config, dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	str("DATABASE_DSN", &cfg.DatabaseDSN)
	str("IMAGE_DIR", &cfg.ImageDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("NATS_URL", &cfg.NatsURL)
	str("NATS_TOKEN", &cfg.NatsToken)
	str("S3_ENDPOINT", &cfg.S3.Endpoint)
	str("S3_REGION", &cfg.S3.Region)
	str("S3_BUCKET", &cfg.S3.Bucket)
	str("S3_USER", &cfg.S3.User)
	str("S3_PASSWORD", &cfg.S3.Password)
	str("S3_PREFIX", &cfg.S3.Prefix)

	if v, ok := os.LookupEnv(EnvPrefix + "SCREEN_DENSITY"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sSCREEN_DENSITY: %w", EnvPrefix, err)
		}
		cfg.ScreenDensity = f
	}

	ints := map[string]*int{
		"SCREEN_WIDTH":   &cfg.ScreenWidthPx,
		"RENDER_WORKERS": &cfg.RenderWorkers,
		"RECENT_LIMIT":   &cfg.RecentLimit,
	}
	for name, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv(EnvPrefix + "RENDER_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sRENDER_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.RenderTimeout = d
	}

	return nil
}
