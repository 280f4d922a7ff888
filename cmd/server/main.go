package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/vncsmyrnk/votefeed/internal/adapters/handler/http"
	"github.com/vncsmyrnk/votefeed/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/votefeed/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/votefeed/internal/core/ports"
	"github.com/vncsmyrnk/votefeed/internal/core/services"
)

func main() {
	_ = godotenv.Load()

	app := cli.App{
		Name:  "votefeed-server",
		Usage: "event store API for live votes",
	}

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "enable debug logging",
			EnvVars: []string{"VOTEFEED_DEBUG"},
		},
		&cli.StringFlag{
			Name:    "listen-addr",
			Usage:   "listen address for http server",
			EnvVars: []string{"VOTEFEED_LISTEN_ADDR"},
			Value:   "0.0.0.0:8080",
		},
		&cli.StringFlag{
			Name:    "store",
			Usage:   "event store backend (postgres|sqlite)",
			EnvVars: []string{"VOTEFEED_STORE"},
			Value:   "postgres",
		},
		&cli.StringFlag{
			Name:    "sqlite-path",
			Usage:   "path to the sqlite database file",
			EnvVars: []string{"VOTEFEED_SQLITE_PATH"},
			Value:   "./data/votes.db",
		},
		&cli.BoolFlag{
			Name:    "migrate",
			Usage:   "apply schema migrations on startup",
			EnvVars: []string{"VOTEFEED_MIGRATE"},
			Value:   true,
		},
	}

	app.Action = Serve

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func Serve(cctx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logLevel := slog.LevelInfo
	if cctx.Bool("debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: true,
	})))
	logger := slog.Default()

	store, closeStore, err := openStore(ctx, cctx)
	if err != nil {
		logger.Error("failed to open event store", "err", err)
		return err
	}
	defer closeStore()

	voteHandler := http.NewVoteHandler(services.NewVoteService(store), logger)
	server := &stdhttp.Server{
		Addr:              cctx.String("listen-addr"),
		Handler:           http.NewHandler(voteHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", server.Addr, "store", cctx.String("store"))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cctx *cli.Context) (ports.EventStore, func(), error) {
	switch cctx.String("store") {
	case "postgres":
		db, err := postgres.Open(ctx, postgres.ConnStringFromEnv())
		if err != nil {
			return nil, nil, err
		}
		if cctx.Bool("migrate") {
			if err := postgres.ApplyMigrations(ctx, db); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return postgres.NewVoteRepository(db), func() { db.Close() }, nil

	case "sqlite":
		path := cctx.String("sqlite-path")
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err := sqlite.Open(path, cctx.Bool("migrate"))
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return sqlite.NewVoteRepository(db), closeDB, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q, expected postgres or sqlite", cctx.String("store"))
	}
}
