package main

import (
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/vncsmyrnk/votefeed/internal/adapters/client/eventstore"
	"github.com/vncsmyrnk/votefeed/internal/core/services"
)

var defaultOrganizations = []string{"acme", "globex", "initech", "umbrella", "hooli"}

func main() {
	_ = godotenv.Load()

	app := cli.App{
		Name:      "castvote",
		Usage:     "cast a vote for an organization",
		ArgsUsage: "[organization]",
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
		&cli.BoolFlag{
			Name:  "random",
			Usage: "vote for a random organization from --org",
		},
		&cli.StringSliceFlag{
			Name:    "org",
			Usage:   "organizations to pick from with --random",
			EnvVars: []string{"VOTEFEED_ORGS"},
			Value:   cli.NewStringSlice(defaultOrganizations...),
		},
		&cli.IntFlag{
			Name:  "count",
			Usage: "number of votes to cast",
			Value: 1,
		},
	}

	app.Action = CastVote

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func CastVote(cctx *cli.Context) error {
	logLevel := slog.LevelInfo
	if cctx.Bool("debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	pick := func() string { return cctx.Args().First() }
	if cctx.Bool("random") {
		orgs := cctx.StringSlice("org")
		if len(orgs) == 0 {
			return fmt.Errorf("--random needs at least one --org")
		}
		pick = func() string { return orgs[rand.IntN(len(orgs))] }
	} else if cctx.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one organization or --random")
	}

	client, err := eventstore.NewClient(logger, eventstore.Config{BaseURL: cctx.String("store-url")})
	if err != nil {
		return err
	}
	votes := services.NewVoteService(client)

	for i := 0; i < cctx.Int("count"); i++ {
		event, err := votes.Cast(cctx.Context, pick())
		if err != nil {
			logger.Error("failed to cast vote", "err", err)
			return err
		}
		fmt.Printf("%d\t%s\t%s\n", event.ID, event.OrganizationKey, event.CreatedAt.Format("2006-01-02T15:04:05.000000Z07:00"))
	}
	return nil
}
