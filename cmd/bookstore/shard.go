package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/themizzi/bookstore/internal/config"
	"github.com/themizzi/bookstore/internal/shard"
)

var shardFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "features",
		Usage: "directory holding the .feature files",
		Value: "e2e/saucedemo/features",
	},
	&cli.StringFlag{
		Name:  "reports",
		Usage: "directory for the per-feature JSON reports",
		Value: "reports/cucumber",
	},
}

// ShardCommand returns the shard command and its subcommands
func ShardCommand() *cli.Command {
	return &cli.Command{
		Name:  "shard",
		Usage: "Split the Gherkin features across CI workers (SHARD, SHARD_COUNT)",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print the feature files owned by this shard",
				Flags: shardFlags,
				Action: func(c *cli.Context) error {
					shardConfig, err := config.LoadShardConfig(os.Getenv)
					if err != nil {
						return err
					}
					files, err := shard.NewRunner(c.String("features"), c.String("reports")).Files(shardConfig)
					if err != nil {
						return err
					}
					for _, f := range files {
						fmt.Fprintln(c.App.Writer, f)
					}
					return nil
				},
			},
			{
				Name:  "run",
				Usage: "Run this shard's features one after another",
				Flags: shardFlags,
				Action: func(c *cli.Context) error {
					shardConfig, err := config.LoadShardConfig(os.Getenv)
					if err != nil {
						return err
					}
					summary, err := shard.NewRunner(c.String("features"), c.String("reports")).Run(c.Context, shardConfig)
					if err != nil {
						return err
					}
					if failed := summary.Failed(); failed > 0 {
						return fmt.Errorf("%d of %d features failed in shard %d/%d",
							failed, len(summary.Results), shardConfig.Index, shardConfig.Total)
					}
					return nil
				},
			},
			{
				Name:  "run-all",
				Usage: "Run every shard as its own process, concurrently",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:    "count",
						Usage:   "number of shards",
						EnvVars: []string{"SHARD_COUNT"},
						Value:   1,
					},
				}, shardFlags...),
				Action: func(c *cli.Context) error {
					self, err := os.Executable()
					if err != nil {
						return fmt.Errorf("failed to locate executable: %w", err)
					}
					args := []string{self, "shard", "run",
						"--features", c.String("features"),
						"--reports", c.String("reports"),
					}
					count := c.Int("count")
					if count < 1 {
						return fmt.Errorf("count must be at least 1, got %d", count)
					}
					return shard.RunAll(c.Context, count, args, nil, os.Stdout, os.Stderr)
				},
			},
		},
	}
}
