package collect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olareaux/chessdata/internal/normalize"
)

// Fetcher is the slice of the Chess.com client the collector needs.
type Fetcher interface {
	ListTitledPlayers(ctx context.Context, title string) ([]string, error)
	FetchStats(ctx context.Context, player string) (normalize.Bundle, error)
	FetchProfile(ctx context.Context, player string) (normalize.Bundle, error)
}

// Title collects every player holding a title into a dataset.
//
// A failed membership list aborts the title: with no player list there
// is nothing to do. A failed player is skipped with a diagnostic and
// the rest of the batch continues, so the artifact still carries
// whatever rows succeeded.
func Title(ctx context.Context, fetcher Fetcher, title string, logger *slog.Logger) (*Dataset, Result, error) {
	var result Result

	players, err := fetcher.ListTitledPlayers(ctx, title)
	if err != nil {
		return nil, result, fmt.Errorf("list %s players: %w", title, err)
	}
	logger.Info("membership list fetched", "title", title, "players", len(players))

	dataset := NewDataset()
	for i, player := range players {
		if err := ctx.Err(); err != nil {
			return dataset, result, err
		}

		rec, err := collectPlayer(ctx, fetcher, player)
		if err != nil {
			result.Skipped++
			result.AddErrorf("player %s: %v", player, err)
			continue
		}
		dataset.Put(player, rec)
		result.Recorded++

		if (i+1)%50 == 0 {
			logger.Info("collect progress", "title", title, "processed", i+1, "total", len(players))
		}
	}

	logger.Info("title collected", "title", title, "summary", result.Summary())
	return dataset, result, nil
}

// collectPlayer performs the two per-player fetches and normalizes the
// pair. Each fetch is one round trip; players are strictly sequential.
func collectPlayer(ctx context.Context, fetcher Fetcher, player string) (normalize.Record, error) {
	stats, err := fetcher.FetchStats(ctx, player)
	if err != nil {
		return normalize.Record{}, fmt.Errorf("fetch stats: %w", err)
	}
	profile, err := fetcher.FetchProfile(ctx, player)
	if err != nil {
		return normalize.Record{}, fmt.Errorf("fetch profile: %w", err)
	}
	rec, err := normalize.Build(stats, profile)
	if err != nil {
		return normalize.Record{}, fmt.Errorf("normalize: %w", err)
	}
	return rec, nil
}

// ArtifactName is the deterministic CSV file name for a title.
func ArtifactName(title string) string {
	return "chess_data_" + title + ".csv"
}
