// Package server initializes and runs the burner server: it wires the
// configured store backing to the HTTP API, runs the background expiry
// sweep and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/burnnote/burner/internal/logging"
	"github.com/burnnote/burner/internal/server/config"
	"github.com/burnnote/burner/internal/server/httpapi"
	"github.com/burnnote/burner/internal/store"
)

type App struct {
	config *config.Config
	logger logging.Logger
	store  store.Store
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout)

	var st store.Store
	switch cfg.StoreBacking {
	case "memory":
		st = store.NewMemoryStore()
	case "postgres":
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("store init error: %w", err)
		}
		st = pg
	default:
		return nil, fmt.Errorf("unknown store backing %q", cfg.StoreBacking)
	}

	return &App{config: cfg, logger: logger, store: st}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	limits := httpapi.Limits{
		MaxNoteBytes: app.config.MaxNoteBytes,
		MaxTTL:       app.config.MaxTTL,
	}
	s := httpapi.NewServer(app.config.Addr, app.store, app.logger, limits)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app...", "backing", app.config.StoreBacking)

	app.initSignalHandler(cancelFunc)

	sweeper := NewSweeper(app.store, app.logger, app.config.PurgeInterval)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "store close error", "error", err)
	}
}
