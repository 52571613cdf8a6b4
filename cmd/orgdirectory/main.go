// Command orgdirectory serves the organisation directory API and manages its
// schema and seed datasets.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "orgdirectory",
		Usage:     "Organisation directory search service",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load settings from this file instead of ./.env",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "storage",
				Usage: "Storage driver (memory, sqlite, postgres)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API until interrupted",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides ORGDIR_HTTP_ADDR)",
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "Create the schema in the configured SQL database",
				Action: migrateCommand,
			},
			{
				Name:  "seed",
				Usage: "Manage fake datasets",
				Subcommands: []*cli.Command{
					{
						Name:   "generate",
						Usage:  "Generate a dataset and store it in blob storage",
						Action: seedGenerateCommand,
						Flags: []cli.Flag{
							&cli.Uint64Flag{
								Name:  "seed",
								Usage: "Random seed",
								Value: 1,
							},
							&cli.IntFlag{
								Name:  "organisations",
								Usage: "Number of organisations",
								Value: 100,
							},
							&cli.StringFlag{
								Name:  "key",
								Usage: "Blob key (overrides ORGDIR_DATASET_KEY)",
							},
							&cli.BoolFlag{
								Name:  "overwrite",
								Usage: "Replace an existing dataset",
							},
						},
					},
					{
						Name:   "load",
						Usage:  "Import a stored dataset into the SQL database",
						Action: seedLoadCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "key",
								Usage: "Blob key (overrides ORGDIR_DATASET_KEY)",
							},
						},
					},
				},
			},
		},
	}
}
