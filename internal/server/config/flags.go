package config

import (
	"flag"
	"os"

	"github.com/burnnote/burner/internal/flagx"
)

// parseFlags overlays selected Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-s string   store backing: "memory" or "postgres"
//	-d string   PostgreSQL DSN
//	-p duration purge sweep interval (e.g., "1m")
//	-t duration maximum note TTL (e.g., "168h")
//	-n int      maximum note payload size, bytes
//
// Arguments are pre-filtered with flagx.Filter so this flag set does not
// collide with the -c/-config file flag.
func parseFlags(cfg *Config) {
	args := flagx.Filter(os.Args[1:], "-a", "-s", "-d", "-p", "-t", "-n")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to run server")
	fs.StringVar(&cfg.StoreBacking, "s", cfg.StoreBacking, "store backing (memory|postgres)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	purgeInterval := fs.Duration("p", cfg.PurgeInterval, "purge sweep interval")
	maxTTL := fs.Duration("t", cfg.MaxTTL, "maximum note ttl")
	fs.Int64Var(&cfg.MaxNoteBytes, "n", cfg.MaxNoteBytes, "maximum note size in bytes")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PurgeInterval = *purgeInterval
	cfg.MaxTTL = *maxTTL
}
