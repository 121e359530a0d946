// Package server wires the SCAMS server together: it opens the identity
// store, builds the services, and runs the HTTP API, the gRPC health
// endpoint and the housekeeping scheduler until a termination signal
// arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/scams/internal/logging"
	"github.com/dmitrijs2005/scams/internal/server/auth"
	"github.com/dmitrijs2005/scams/internal/server/config"
	"github.com/dmitrijs2005/scams/internal/server/httpapi"
	"github.com/dmitrijs2005/scams/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scams/internal/server/rooms"
	"github.com/dmitrijs2005/scams/internal/server/services"

	gs "github.com/dmitrijs2005/scams/internal/server/grpc"
)

// openStore is replaced in tests.
var openStore = repomanager.Open

type App struct {
	config      *config.Config
	logger      logging.Logger
	store       repomanager.RepositoryManager
	http        *httpapi.Server
	grpc        *gs.GRPCServer
	housekeeper *services.Housekeeper
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.Mode, c.LogLevel)

	store, err := openStore(ctx, c.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := store.Prepare(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("db prepare error: %w", err)
	}

	tokens := auth.NewTokenIssuer(c.SecretKey)
	as := services.NewAuthService(store.Identities(), auth.NewPasswordHasher(c.BcryptCost), tokens, nil, logger)

	hk, err := services.NewHousekeeper(c.ResetPurgeSchedule, as, logger)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	var images services.ImageResolver = services.StaticImages{}
	if c.S3Bucket != "" {
		images = services.NewS3Images(services.S3Settings{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
			Validity:     c.ImageURLValidity,
		})
	}

	catalog := rooms.NewCatalog()
	rs := services.NewRoomService(
		catalog,
		rooms.NewScheduler(catalog, c.ScheduleCacheTTL),
		rooms.NewSensors(catalog, nil),
		images,
		logger,
	)
	ds := services.NewDashboardService(rs, nil)

	hs := httpapi.NewServer(httpapi.Options{
		Address:         c.HTTPAddr(),
		AllowedOrigins:  c.AllowedOrigins(),
		ShutdownTimeout: c.ShutdownTimeout,
	}, logger, tokens, as, rs, ds, store)

	var grpcServer *gs.GRPCServer
	if c.EndpointAddrGRPC != "" {
		grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, store, 0)
	}

	return &App{
		config:      c,
		logger:      logger.With("module", "app"),
		store:       store,
		http:        hs,
		grpc:        grpcServer,
		housekeeper: hk,
	}, nil
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

// runComponent runs fn and cancels the whole app when it fails.
func (app *App) runComponent(ctx context.Context, cancelFunc context.CancelFunc, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		app.logger.Error(ctx, name+" failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives, or one of
// the servers fails. It then waits for everything to stop and closes the
// store.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "mode", app.config.Mode)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runComponent(ctx, cancelFunc, "HTTP server", app.http.Run)
	}()

	if app.grpc != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runComponent(ctx, cancelFunc, "gRPC server", app.grpc.Run)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.housekeeper.Run(ctx)
	}()

	wg.Wait()

	if err := app.store.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "store close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
