package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/cardkeeper/internal/flagx"
)

// configFlags lists the flags parseFlags owns, including the config file
// flags consumed by parseJson.
var configFlags = []string{
	"-d", "-images", "-l", "-density", "-screen", "-w", "-nats",
	"-c", "-config", "--c", "--config",
}

// parseFlags populates Config from command-line flags and returns the
// arguments it does not own.
//
//	-d string         database file
//	-images string    image directory
//	-l string         log level
//	-density float    screen density
//	-screen int       screen width in pixels
//	-w int            render workers
//	-nats string      NATS server URL for card update notifications
func parseFlags(cfg *Config, args []string) ([]string, error) {
	own, rest := flagx.SplitArgs(args, configFlags)

	fs := flag.NewFlagSet("cardkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database file")
	fs.StringVar(&cfg.ImageDir, "images", cfg.ImageDir, "image directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.Float64Var(&cfg.ScreenDensity, "density", cfg.ScreenDensity, "screen density")
	fs.IntVar(&cfg.ScreenWidthPx, "screen", cfg.ScreenWidthPx, "screen width in pixels")
	fs.IntVar(&cfg.RenderWorkers, "w", cfg.RenderWorkers, "render workers")
	fs.StringVar(&cfg.NatsURL, "nats", cfg.NatsURL, "NATS server URL")

	var ignored string
	fs.StringVar(&ignored, "c", "", "config file")
	fs.StringVar(&ignored, "config", "", "config file")

	if err := fs.Parse(own); err != nil {
		return nil, err
	}
	return rest, nil
}
