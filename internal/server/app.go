// Package server initializes and runs the Tijori application server.
// It opens the database, applies migrations, connects to object storage,
// handles graceful shutdown and starts the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/tijori/tijori/internal/filex"
	"github.com/tijori/tijori/internal/logging"
	"github.com/tijori/tijori/internal/server/blob"
	"github.com/tijori/tijori/internal/server/config"
	"github.com/tijori/tijori/internal/server/httpapi"
	"github.com/tijori/tijori/internal/server/repositories/repomanager"
	"github.com/tijori/tijori/internal/server/services"
)

type App struct {
	config            *config.Config
	logger            logging.Logger
	db                *sql.DB
	uploadDir         string
	userService       *services.UserService
	collectionService *services.CollectionService
	fileService       *services.FileService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	store, err := blob.NewS3Store(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	uploadDir, err := filex.EnsureSubdDir(c.UploadDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("upload dir error: %w", err)
	}

	return &App{
		config:            c,
		logger:            logger,
		db:                db,
		uploadDir:         uploadDir,
		userService:       services.NewUserService(db, rm, c, logger),
		collectionService: services.NewCollectionService(db, rm, logger),
		fileService:       services.NewFileService(db, rm, store, logger),
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if app.config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	s := httpapi.NewHTTPServer(app.config, app.uploadDir, app.logger,
		app.userService, app.collectionService, app.fileService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
