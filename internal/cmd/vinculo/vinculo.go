// Package vinculo runs the user-directory HTTP service.
package vinculo

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/feliperosa/vinculo/internal/platform/cmd"
	"github.com/feliperosa/vinculo/internal/services/directory/app"
)

// Config holds the service configuration. Values come from the
// environment, with command-line flags taking precedence.
type Config struct {
	Port       int           `env:"VINCULO_PORT" envDefault:"8080"`
	DBPath     string        `env:"VINCULO_DB_PATH" envDefault:"vinculo.db"`
	JWTSecret  string        `env:"VINCULO_JWT_SECRET"`
	TokenTTL   time.Duration `env:"VINCULO_TOKEN_TTL" envDefault:"24h"`
	BcryptCost int           `env:"VINCULO_BCRYPT_COST" envDefault:"8"`
}

func parseConfig(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("vinculo", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", 8080, "listen port")
	fs.StringVar(&cfg.DBPath, "db", "vinculo.db", "sqlite database path")
	if err := cmd.ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the directory server and blocks until the context is
// canceled.
func Run(ctx context.Context, args []string) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}
	return cmd.RunWithTelemetry(ctx, cmd.ServiceDirectory, func(ctx context.Context) error {
		server, err := app.New(app.Options{
			Addr:       listenAddr(cfg.Port),
			DBPath:     cfg.DBPath,
			JWTSecret:  cfg.JWTSecret,
			TokenTTL:   cfg.TokenTTL,
			BcryptCost: cfg.BcryptCost,
		})
		if err != nil {
			return err
		}
		log.Printf("directory service listening on %s", server.Addr())
		return server.Run(ctx)
	})
}

func listenAddr(port int) string {
	return fmt.Sprintf(":%d", port)
}
