package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"book-search/bootstrap"
	"book-search/logger"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "book-search",
		Usage: "Book catalog search and export service",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API and the index event consumer",
				Action: func(ctx context.Context, c *cli.Command) error {
					return bootstrap.Run(ctx)
				},
			},
			{
				Name:  "setup-fts",
				Usage: "Create the FTS5 index and its triggers on the SQLite catalog",
				Action: func(ctx context.Context, c *cli.Command) error {
					return bootstrap.SetupFTS(ctx)
				},
			},
			{
				Name:  "reindex",
				Usage: "Drop and rebuild the Elasticsearch index from the primary store",
				Action: func(ctx context.Context, c *cli.Command) error {
					return bootstrap.Reindex(ctx)
				},
			},
		},
		DefaultCommand: "serve",
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}
