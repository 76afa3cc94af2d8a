package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/valuationkit/mpfcore/internal/config"
	"github.com/valuationkit/mpfcore/internal/pipeline"
	"github.com/valuationkit/mpfcore/internal/retriever"
	"github.com/valuationkit/mpfcore/internal/staging"
	"github.com/valuationkit/mpfcore/internal/storage"
	"github.com/valuationkit/mpfcore/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	app := &cli.App{
		Name:  "mpf",
		Usage: "ingest, normalize and validate model point files from object storage",
		Flags: storeFlags(cfg),
		Commands: []*cli.Command{
			validateCommand(cfg),
			syncCommand(cfg),
			assumptionsCommand(cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func storeFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "store-endpoint", Value: cfg.Store.Endpoint, Usage: "object store endpoint"},
		&cli.StringFlag{Name: "store-access-key", Value: cfg.Store.AccessKey, Usage: "object store access key"},
		&cli.StringFlag{Name: "store-secret-key", Value: cfg.Store.SecretKey, Usage: "object store secret key"},
		&cli.StringFlag{Name: "store-region", Value: cfg.Store.Region, Usage: "object store region"},
		&cli.BoolFlag{Name: "store-use-ssl", Value: cfg.Store.UseSSL, Usage: "connect to the store over TLS"},
	}
}

func newStoreClient(c *cli.Context) (*storage.Client, error) {
	return storage.NewClient(storage.Config{
		Endpoint:  c.String("store-endpoint"),
		AccessKey: c.String("store-access-key"),
		SecretKey: c.String("store-secret-key"),
		Region:    c.String("store-region"),
		UseSSL:    c.Bool("store-use-ssl"),
	})
}

func validateCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "discover, normalize and validate model point files under a prefix",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "model-points", Required: true, Usage: "s3://bucket/prefix/ of model point files"},
			&cli.StringFlag{Name: "rules", Usage: "s3://bucket/key of the enum rule table workbook"},
			&cli.StringFlag{Name: "product", Value: "IP", Usage: "product group"},
			&cli.StringFlag{Name: "valuation-date", Usage: "valuation date (YYYY-MM-DD), defaults to today"},
			&cli.IntFlag{Name: "workers", Value: cfg.Pipeline.WorkerCount, Usage: "concurrent file workers"},
			&cli.BoolFlag{Name: "strict", Usage: "exit non-zero when any validation issue is found"},
		},
		Action: func(c *cli.Context) error {
			store, err := newStoreClient(c)
			if err != nil {
				return err
			}

			valDate := time.Now().UTC().Truncate(24 * time.Hour)
			if raw := c.String("valuation-date"); raw != "" {
				valDate, err = time.Parse("2006-01-02", raw)
				if err != nil {
					return fmt.Errorf("invalid valuation date %q: %w", raw, err)
				}
			}

			result, err := pipeline.Run(c.Context, store, pipeline.Options{
				ModelPointsPath: c.String("model-points"),
				RuleTablePath:   c.String("rules"),
				Product:         c.String("product"),
				ValuationDate:   valDate,
				WorkerCount:     c.Int("workers"),
				Retrieval: retriever.Options{
					Extensions:    cfg.Pipeline.FileExtensions,
					TempDir:       cfg.App.TempDir,
					RetryAttempts: cfg.Pipeline.RetryAttempts,
					RetryBackoff:  cfg.Pipeline.RetryBackoff,
				},
			})
			if err != nil {
				return err
			}

			issues := printRunResult(result)
			if issues > 0 && c.Bool("strict") {
				return cli.Exit(fmt.Sprintf("%d validation issues found", issues), 2)
			}
			return nil
		},
	}
}

func printRunResult(result *pipeline.RunResult) int {
	issues := 0
	for _, f := range result.Files {
		if f.Err != nil {
			fmt.Printf("FAILED  %s: %v\n", f.Source, f.Err)
			continue
		}
		if f.Report.Passed() {
			fmt.Printf("OK      %s (%d rows)\n", f.Source, len(f.Dataset.Rows))
			continue
		}
		fmt.Printf("ISSUES  %s (%d rows)\n", f.Source, len(f.Dataset.Rows))
		for _, issue := range f.Report.Issues {
			issues++
			fmt.Printf("  [%s] %s: %s (rows: %s)\n",
				issue.Kind, issue.Column, issue.Detail, strings.Join(issue.RowKeys, ", "))
		}
	}
	return issues
}

func assumptionsCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "assumptions",
		Usage: "inspect the named sheets of a remote assumption workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workbook", Required: true, Usage: "s3://bucket/key of the assumption workbook"},
			&cli.StringSliceFlag{Name: "sheet", Required: true, Usage: "sheet name to load (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			store, err := newStoreClient(c)
			if err != nil {
				return err
			}
			path, err := storage.ParseRemotePath(c.String("workbook"))
			if err != nil {
				return err
			}

			ret := retriever.New(store, retriever.Options{
				TempDir:       cfg.App.TempDir,
				RetryAttempts: cfg.Pipeline.RetryAttempts,
				RetryBackoff:  cfg.Pipeline.RetryBackoff,
			})
			tables, err := ret.FetchAssumptions(c.Context, path, c.StringSlice("sheet"))
			if err != nil {
				return err
			}

			for _, sheet := range c.StringSlice("sheet") {
				ds := tables[sheet]
				fmt.Printf("%s: %d rows, columns [%s]\n", sheet, len(ds.Rows), strings.Join(ds.Columns, ", "))
			}
			return nil
		},
	}
}

func syncCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "mirror a remote model package folder into a local directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "remote", Required: true, Usage: "s3://bucket/prefix/ to mirror"},
			&cli.StringFlag{Name: "dest", Value: cfg.App.StagingDir, Usage: "local destination directory"},
		},
		Action: func(c *cli.Context) error {
			store, err := newStoreClient(c)
			if err != nil {
				return err
			}
			remote, err := storage.ParseRemotePath(c.String("remote"))
			if err != nil {
				return err
			}

			n, err := staging.Sync(c.Context, store, remote, c.String("dest"))
			if err != nil {
				return err
			}
			fmt.Printf("synced %d files to %s\n", n, c.String("dest"))
			return nil
		},
	}
}
