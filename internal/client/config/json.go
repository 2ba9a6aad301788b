package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/cardkeeper/internal/flagx"
	"github.com/dmitrijs2005/cardkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero so that a file only overrides what
// it names.
type JsonConfig struct {
	DatabaseDSN   *string         `json:"database_dsn"`
	ImageDir      *string         `json:"image_dir"`
	LogLevel      *string         `json:"log_level"`
	LogFormat     *string         `json:"log_format"`
	ScreenDensity *float64        `json:"screen_density"`
	ScreenWidthPx *int            `json:"screen_width_px"`
	RenderWorkers *int            `json:"render_workers"`
	RenderTimeout *timex.Duration `json:"render_timeout"`
	RecentLimit   *int            `json:"recent_limit"`
	NatsURL       *string         `json:"nats_url"`
	NatsToken     *string         `json:"nats_token"`
	S3            *JsonS3Config   `json:"s3"`
}

type JsonS3Config struct {
	Endpoint string `json:"endpoint"`
	Region   string `json:"region"`
	Bucket   string `json:"bucket"`
	User     string `json:"user"`
	Password string `json:"password"`
	Prefix   string `json:"prefix"`
}

// parseJson overlays Config with the JSON file named by -c or -config in
// args. Without either flag nothing is loaded.
func parseJson(cfg *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFileFlag(args)
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", jsonConfigFile, err)
	}

	set(&cfg.DatabaseDSN, jc.DatabaseDSN)
	set(&cfg.ImageDir, jc.ImageDir)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.ScreenDensity, jc.ScreenDensity)
	set(&cfg.ScreenWidthPx, jc.ScreenWidthPx)
	set(&cfg.RenderWorkers, jc.RenderWorkers)
	set(&cfg.RecentLimit, jc.RecentLimit)
	set(&cfg.NatsURL, jc.NatsURL)
	set(&cfg.NatsToken, jc.NatsToken)
	if jc.RenderTimeout != nil {
		cfg.RenderTimeout = jc.RenderTimeout.Duration
	}
	if jc.S3 != nil {
		cfg.S3 = S3Config(*jc.S3)
	}

	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
