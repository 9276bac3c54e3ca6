// Package server wires configuration, logging, the store and the REST
// endpoint together and runs them until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/skullkeeper/internal/logging"
	"github.com/dmitrijs2005/skullkeeper/internal/server/config"
	"github.com/dmitrijs2005/skullkeeper/internal/server/rest"
	"github.com/dmitrijs2005/skullkeeper/internal/server/services"
	"github.com/dmitrijs2005/skullkeeper/internal/server/shared/db"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    store.Store
	services *services.Services
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(os.Stdout, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	s, err := db.Open(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	return &App{config: c, logger: logger, store: s, services: services.New(s, logger)}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := rest.NewRESTServer(app.config.EndpointAddrHTTP, app.logger, app.services, app.config.SecretKey, rest.Options{
		CORSOrigin:   app.config.CORSOrigin,
		MaxBodyBytes: app.config.MaxBodyBytes,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is canceled or a termination signal arrives, then
// closes the store.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "backend", app.config.Backend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startRESTServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "closing store", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
