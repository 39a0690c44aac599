// Package codenames parses the server configuration and runs the game server.
package codenames

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	entrypoint "github.com/mikeczech/codenames/internal/platform/cmd"
	"github.com/mikeczech/codenames/internal/platform/logging"
	"github.com/mikeczech/codenames/internal/services/codenames/app"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/storage/integrity"
)

// Config holds the server command configuration.
type Config struct {
	HTTPAddr    string  `env:"CODENAMES_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr    string  `env:"CODENAMES_GRPC_ADDR" envDefault:":8081"`
	DBPath      string  `env:"CODENAMES_DB_PATH" envDefault:"data/codenames.db"`
	LogLevel    string  `env:"CODENAMES_LOG_LEVEL" envDefault:"info"`
	LogFormat   string  `env:"CODENAMES_LOG_FORMAT" envDefault:"json"`
	NumBlue     int     `env:"CODENAMES_NUM_BLUE" envDefault:"9"`
	NumRed      int     `env:"CODENAMES_NUM_RED" envDefault:"9"`
	NumNeutral  int     `env:"CODENAMES_NUM_NEUTRAL" envDefault:"9"`
	NumAssassin int     `env:"CODENAMES_NUM_ASSASSIN" envDefault:"1"`
	WordsFile   string  `env:"CODENAMES_WORDS_FILE"`
	PublicURL   string  `env:"CODENAMES_PUBLIC_URL"`
	RateLimit   float64 `env:"CODENAMES_RATE_LIMIT" envDefault:"5"`
	RateBurst   int     `env:"CODENAMES_RATE_BURST" envDefault:"10"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC listen address (empty disables gRPC)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the sqlite database")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (json or console)")
	fs.IntVar(&cfg.NumBlue, "num-blue", cfg.NumBlue, "blue words per board")
	fs.IntVar(&cfg.NumRed, "num-red", cfg.NumRed, "red words per board")
	fs.IntVar(&cfg.NumNeutral, "num-neutral", cfg.NumNeutral, "neutral words per board")
	fs.IntVar(&cfg.NumAssassin, "num-assassin", cfg.NumAssassin, "assassin words per board")
	fs.StringVar(&cfg.WordsFile, "words-file", cfg.WordsFile, "word list replacing the stored corpus, one word per line")
	fs.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "base URL encoded in invite QR codes")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "mutations per second per session (0 disables)")
	fs.IntVar(&cfg.RateBurst, "rate-burst", cfg.RateBurst, "mutation burst per session")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := cfg.Counts().Validate(); err != nil {
		return Config{}, fmt.Errorf("board counts: %w", err)
	}
	if cfg.RateLimit < 0 {
		return Config{}, errors.New("rate limit must not be negative")
	}
	return cfg, nil
}

// Counts returns the configured board deal.
func (c Config) Counts() game.BoardCounts {
	return game.BoardCounts{Blue: c.NumBlue, Red: c.NumRed, Neutral: c.NumNeutral, Assassin: c.NumAssassin}
}

// Run starts the game server and blocks until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.LogLevel, logging.Format(cfg.LogFormat), os.Stderr)
	if err != nil {
		return err
	}
	ctx = logger.WithContext(ctx)
	keyring, err := integrity.KeyringFromEnv()
	if err != nil {
		return err
	}
	if keyring == nil {
		logger.Warn().Msg("no event signing key configured; events are stored unsigned")
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCodenames, func(ctx context.Context) error {
		srv, err := app.New(ctx, app.Config{
			StoreConfig: app.StoreConfig{
				DBPath:    cfg.DBPath,
				Counts:    cfg.Counts(),
				WordsFile: cfg.WordsFile,
				Keyring:   keyring,
			},
			HTTPAddr:  cfg.HTTPAddr,
			GRPCAddr:  cfg.GRPCAddr,
			PublicURL: cfg.PublicURL,
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
		})
		if err != nil {
			return err
		}
		return srv.Serve(ctx)
	})
}
