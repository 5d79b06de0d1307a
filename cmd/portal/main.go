package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	fiberadapter "github.com/lborres/portal/adapters/fiber"
	pgxadapter "github.com/lborres/portal/adapters/pgx"
	s3adapter "github.com/lborres/portal/adapters/s3"
	"github.com/lborres/portal/config"
	"github.com/lborres/portal/core"
	"github.com/lborres/portal/migrations"
	"github.com/lborres/portal/pkg/logging"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logging.NewJSON()
	cfg := config.Load()

	if err := run(ctx, cancel, cfg, log); err != nil {
		log.Error(ctx, "server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, log logging.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := runMigrations(ctx, cfg.DatabaseDSN); err != nil {
		return err
	}

	objectStore, err := s3adapter.New(ctx, s3adapter.Options{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Region:    cfg.S3Region,
	})
	if err != nil {
		return err
	}

	db := pgxadapter.New(pool)

	sessions := core.NewSessionManager(core.SessionConfig{MaxAge: cfg.SessionMaxAge}, db, nil)
	auth := core.NewAuthService(db, core.NewBcrypt(cfg.BcryptCost), core.NewTOTPEngine(cfg.TOTPIssuer))
	projects := core.NewProjectService(db)
	files := core.NewFileService(objectStore, db, core.FileConfig{
		MaxFileSize:  cfg.MaxFileSize,
		AllowedTypes: cfg.AllowedFileTypes,
	})

	if err := files.EnsureBuckets(ctx); err != nil {
		return err
	}

	app := fiber.New()
	app.Use(logger.New())

	fiberadapter.NewHandler(auth, sessions, projects, files,
		log.With("component", "http")).RegisterRoutes(app)

	initSignalHandler(cancel)

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting server", "addr", cfg.ListenAddr)
		errCh <- app.Listen(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info(context.Background(), "shutting down")
		return app.Shutdown()
	}
}

func runMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigs
		cancel()
	}()
}
