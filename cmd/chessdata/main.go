// Command chessdata collects titled-player statistics from the
// Chess.com public API.
//
// Usage:
//
//	chessdata collect                # all ten titles -> CSV artifacts
//	chessdata collect GM WGM         # a subset
//	chessdata store GM               # upsert into Postgres instead
//	chessdata titles                 # list recognized title codes
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/olareaux/chessdata/internal/chesscom"
	"github.com/olareaux/chessdata/internal/collect"
	"github.com/olareaux/chessdata/internal/config"
	"github.com/olareaux/chessdata/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "chessdata",
		Short: "Chess.com titled-player statistics collector",
	}

	root.AddCommand(collectCmd())
	root.AddCommand(storeCmd())
	root.AddCommand(titlesCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// collect command
// --------------------------------------------------------------------------

func collectCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "collect [titles...]",
		Short: "Collect player statistics and write one CSV per title",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, func(ctx context.Context, cfg *config.Config, client *chesscom.Client, titles []string) error {
				if outDir == "" {
					outDir = cfg.OutputDir
				}
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}

				failed := 0
				for _, title := range titles {
					start := time.Now()
					dataset, result, err := collect.Title(ctx, client, title, logger)
					if err != nil {
						failed++
						logger.Error("title failed", "title", title, "error", err)
						continue
					}

					path := filepath.Join(outDir, collect.ArtifactName(title))
					if err := writeArtifact(path, dataset); err != nil {
						failed++
						logger.Error("write artifact", "title", title, "path", path, "error", err)
						continue
					}

					logger.Info("artifact written",
						"title", title, "path", path, "rows", dataset.Len(),
						"duration", time.Since(start).Round(time.Second),
						"summary", result.Summary())
					for _, e := range result.Errors {
						logger.Warn("player skipped", "title", title, "error", e)
					}
				}

				if failed == len(titles) {
					return fmt.Errorf("all %d titles failed", failed)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default OUTPUT_DIR or .)")
	return cmd
}

func writeArtifact(path string, dataset *collect.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dataset.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// --------------------------------------------------------------------------
// store command
// --------------------------------------------------------------------------

func storeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store [titles...]",
		Short: "Collect player statistics and upsert them into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, func(ctx context.Context, cfg *config.Config, client *chesscom.Client, titles []string) error {
				pool, err := store.New(ctx, cfg)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer pool.Close()

				failed := 0
				for _, title := range titles {
					start := time.Now()
					dataset, result, err := collect.Title(ctx, client, title, logger)
					if err != nil {
						failed++
						logger.Error("title failed", "title", title, "error", err)
						continue
					}

					upserted := 0
					for _, username := range dataset.Usernames() {
						rec, _ := dataset.Get(username)
						if err := store.UpsertRecord(ctx, pool, title, username, rec); err != nil {
							result.AddErrorf("upsert %s: %v", username, err)
							continue
						}
						upserted++
					}

					stored, err := pool.CountTitleRows(ctx, title)
					if err != nil {
						logger.Warn("count stored rows", "title", title, "error", err)
					}
					logger.Info("title stored",
						"title", title, "upserted", upserted, "stored_total", stored,
						"duration", time.Since(start).Round(time.Second),
						"summary", result.Summary())
					for _, e := range result.Errors {
						logger.Warn("row skipped", "title", title, "error", e)
					}
				}

				if failed == len(titles) {
					return fmt.Errorf("all %d titles failed", failed)
				}
				return nil
			})
		},
	}
	return cmd
}

// --------------------------------------------------------------------------
// titles command
// --------------------------------------------------------------------------

func titlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "titles",
		Short: "List recognized title codes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range config.Titles {
				fmt.Println(t)
			}
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, title resolution, client construction,
// and context cancellation.
func run(args []string, fn func(ctx context.Context, cfg *config.Config, client *chesscom.Client, titles []string) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	titles, err := resolveTitles(args)
	if err != nil {
		return err
	}

	client := chesscom.NewClient(cfg.APIBase, cfg.UserAgent, cfg.HTTPTimeout, logger)
	return fn(ctx, cfg, client, titles)
}

// resolveTitles validates requested codes, defaulting to all ten.
func resolveTitles(args []string) ([]string, error) {
	if len(args) == 0 {
		return config.Titles, nil
	}
	for _, code := range args {
		if !config.IsTitle(code) {
			return nil, fmt.Errorf("unrecognized title %q (see 'chessdata titles')", code)
		}
	}
	return args, nil
}
