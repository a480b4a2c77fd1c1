// Package server parses freight service flags and launches the service.
package server

import (
	"context"
	"flag"

	entrypoint "github.com/EmreGurenekli/yolnext/internal/platform/cmd"
	app "github.com/EmreGurenekli/yolnext/internal/services/freight/app"
)

// Config holds freight command configuration.
type Config struct {
	Addr string `env:"YOLNEXT_HTTP_ADDR" envDefault:":8080"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The freight HTTP server address")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the freight HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceFreight, func(context.Context) error {
		return app.Run(ctx, cfg.Addr)
	})
}
