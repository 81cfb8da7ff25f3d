package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"troopstats/adapters/api"
	"troopstats/internal/config"
	"troopstats/internal/container"
	apperrors "troopstats/internal/errors"
	"troopstats/internal/migration"
	"troopstats/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

// initDatabase opens the PostgreSQL pool and applies the schema
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, apperrors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", appConfig.Database.URL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to connect to database")
	}
	db.SetMaxOpenConns(appConfig.Database.MaxOpenConns)
	db.SetMaxIdleConns(appConfig.Database.MaxIdleConns)
	db.SetConnMaxLifetime(appConfig.Database.ConnMaxLifetime)

	if appConfig.Database.AutoMigrate {
		migrator := migration.NewRunner()
		if err := migrator.Run(ctx, db); err != nil {
			db.Close()
			return nil, apperrors.Wrap(err, "database migration failed")
		}
		log.Printf("Schema %s applied", migrator.Version())
	}

	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	if err := appContainer.InitWithDatabase(ctx, db); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	apiServer := api.NewServer(appContainer.Troops, appContainer.Boards, appConfig.Server.GinMode, appContainer.Logger)
	uiApp, err := ui.NewApp(appContainer.Boards, appContainer.Troops, appContainer.Logger)
	if err != nil {
		log.Fatalf("Failed to create UI: %v", err)
	}

	servers := []*http.Server{
		{Addr: ":" + appConfig.Server.Port, Handler: apiServer.Handler(), ReadHeaderTimeout: 10 * time.Second},
		{Addr: ":" + appConfig.Server.UIPort, Handler: uiApp.Handler(), ReadHeaderTimeout: 10 * time.Second},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			log.Printf("Listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()

		log.Println("Shutting down servers...")
		var firstErr error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})

	waitErr := g.Wait()
	if err := appContainer.Shutdown(context.Background()); err != nil {
		log.Printf("Failed to release connections: %v", err)
	}
	if waitErr != nil {
		log.Printf("Server error: %v", waitErr)
		os.Exit(1)
	}
	log.Println("Servers stopped")
}
