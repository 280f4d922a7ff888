package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/vncsmyrnk/votefeed/internal/adapters/client/eventstore"
	"github.com/vncsmyrnk/votefeed/internal/adapters/notifier/terminal"
	"github.com/vncsmyrnk/votefeed/internal/core/domain"
	"github.com/vncsmyrnk/votefeed/internal/core/ports"
	"github.com/vncsmyrnk/votefeed/internal/core/services"
)

func main() {
	_ = godotenv.Load()

	app := cli.App{
		Name:  "votefeed-viewer",
		Usage: "render live votes as they arrive",
	}

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "enable debug logging",
			EnvVars: []string{"VOTEFEED_DEBUG"},
		},
		&cli.StringFlag{
			Name:    "store-url",
			Usage:   "base url of the event store api",
			EnvVars: []string{"VOTEFEED_STORE_URL"},
			Value:   "http://localhost:8080",
		},
		&cli.DurationFlag{
			Name:    "poll-interval",
			Usage:   "interval between polls for new votes",
			EnvVars: []string{"VOTEFEED_POLL_INTERVAL"},
			Value:   services.DefaultPollInterval,
		},
		&cli.DurationFlag{
			Name:    "poll-timeout",
			Usage:   "timeout for a single poll, defaults to four intervals",
			EnvVars: []string{"VOTEFEED_POLL_TIMEOUT"},
		},
		&cli.Float64Flag{
			Name:    "rate-limit",
			Usage:   "max requests per second against the event store, 0 for unlimited",
			EnvVars: []string{"VOTEFEED_RATE_LIMIT"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen-addr",
			Usage:   "listen address for the metrics server, empty to disable",
			EnvVars: []string{"VOTEFEED_METRICS_LISTEN_ADDR"},
			Value:   ":8081",
		},
		&cli.StringFlag{
			Name:    "palette",
			Usage:   "comma separated hex colors handed out to organizations",
			EnvVars: []string{"VOTEFEED_PALETTE"},
		},
		&cli.DurationFlag{
			Name:    "toast-duration",
			Usage:   "how long a vote toast stays visible",
			EnvVars: []string{"VOTEFEED_TOAST_DURATION"},
			Value:   services.DefaultToastDuration,
		},
		&cli.BoolFlag{
			Name:    "no-color",
			Usage:   "disable ANSI colors",
			EnvVars: []string{"NO_COLOR"},
		},
	}

	app.Action = View

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func View(cctx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logLevel := slog.LevelInfo
	if cctx.Bool("debug") {
		logLevel = slog.LevelDebug
	}
	// stdout belongs to the notifier
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: true,
	})))
	logger := slog.Default()

	palette := domain.DefaultPalette
	if s := cctx.String("palette"); s != "" {
		p, err := domain.ParsePalette(s)
		if err != nil {
			logger.Error("invalid palette", "err", err)
			return err
		}
		palette = p
	}

	interval := cctx.Duration("poll-interval")
	store, err := eventstore.NewClient(logger, eventstore.Config{
		BaseURL:   cctx.String("store-url"),
		RateLimit: cctx.Float64("rate-limit"),
		Timeout:   cctx.Duration("poll-timeout"),
	})
	if err != nil {
		logger.Error("failed to create event store client", "err", err)
		return err
	}

	colors, err := services.NewColorAllocator(palette)
	if err != nil {
		return err
	}

	notifier := terminal.NewNotifier(os.Stdout, terminal.Config{NoColor: cctx.Bool("no-color")})
	defer notifier.Close()

	dispatcher := services.NewNotificationDispatcher(colors, notifier, logger, services.DispatcherConfig{
		ToastDuration: cctx.Duration("toast-duration"),
	})
	poller := services.NewPoller(store, dispatcher, logger, services.PollerConfig{
		Interval: interval,
		Timeout:  cctx.Duration("poll-timeout"),
	})

	if addr := cctx.String("metrics-listen-addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("failed to start metrics server", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown metrics server", "err", err)
			}
		}()
	}

	cursor, err := initializeCursor(ctx, services.NewCursorInitializer(store, logger), interval, logger)
	if err != nil {
		// only cancellation ends the retry loop
		return nil
	}
	if err := poller.Seed(cursor); err != nil {
		return err
	}

	if err := poller.Run(ctx); err != nil {
		logger.Error("poller stopped", "err", err)
		return err
	}
	return nil
}

// initializeCursor retries until the store answers; the poller stays dormant meanwhile.
func initializeCursor(ctx context.Context, initializer ports.CursorInitializer, interval time.Duration, logger *slog.Logger) (domain.Cursor, error) {
	for {
		cursor, err := initializer.Initialize(ctx)
		if err == nil {
			return cursor, nil
		}
		logger.Error("failed to initialize cursor, retrying", "err", err, "in", interval)

		select {
		case <-ctx.Done():
			return domain.Cursor{}, ctx.Err()
		case <-time.After(interval):
		}
	}
}
