package config

import (
	"flag"
	"os"

	"github.com/burnnote/burner/internal/flagx"
)

// parseFlags overlays selected Config fields from command-line flags.
//
//	-e string   server base URL (e.g., "http://localhost:8080")
//	-m string   deployment mode: "local" or "remote"
//	-k string   password kdf: "pbkdf2" or "argon2id"
//	-l duration default note ttl (e.g., "1h")
func parseFlags(cfg *Config) {
	args := flagx.Filter(os.Args[1:], "-e", "-m", "-k", "-l")

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "e", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.Mode, "m", cfg.Mode, "deployment mode (local|remote)")
	fs.StringVar(&cfg.KDF, "k", cfg.KDF, "password kdf (pbkdf2|argon2id)")
	defaultTTL := fs.Duration("l", cfg.DefaultTTL, "default note ttl")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.DefaultTTL = *defaultTTL
}
