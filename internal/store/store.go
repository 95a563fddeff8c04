// Package store persists collected datasets into Postgres as an
// alternative sink to CSV artifacts.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olareaux/chessdata/internal/config"
	"github.com/olareaux/chessdata/internal/normalize"
)

// TitledPlayersTable matches schema.sql.
const TitledPlayersTable = "titled_players"

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		"health_check": "SELECT 1",

		"count_title_rows": "SELECT count(*) FROM " + TitledPlayersTable + " WHERE title_category = $1",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}

// CountTitleRows returns the number of stored rows for a title category.
func (p *Pool) CountTitleRows(ctx context.Context, title string) (int, error) {
	var n int
	err := p.QueryRow(ctx, "count_title_rows", title).Scan(&n)
	return n, err
}

// UpsertRecord writes one player's flattened row, keyed by username.
// Re-running a title replaces its rows in place.
func UpsertRecord(ctx context.Context, pool *Pool, title, username string, rec normalize.Record) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO `+TitledPlayersTable+` (
			username, title_category,
			rapid_rating, rapid_wins, rapid_losses, rapid_draws,
			blitz_rating, blitz_wins, blitz_losses, blitz_draws,
			bullet_rating, bullet_wins, bullet_losses, bullet_draws,
			tactics_rating, puzzle_rush_rating, country, location, fide_title
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (username) DO UPDATE SET
			title_category = EXCLUDED.title_category,
			rapid_rating = EXCLUDED.rapid_rating,
			rapid_wins = EXCLUDED.rapid_wins,
			rapid_losses = EXCLUDED.rapid_losses,
			rapid_draws = EXCLUDED.rapid_draws,
			blitz_rating = EXCLUDED.blitz_rating,
			blitz_wins = EXCLUDED.blitz_wins,
			blitz_losses = EXCLUDED.blitz_losses,
			blitz_draws = EXCLUDED.blitz_draws,
			bullet_rating = EXCLUDED.bullet_rating,
			bullet_wins = EXCLUDED.bullet_wins,
			bullet_losses = EXCLUDED.bullet_losses,
			bullet_draws = EXCLUDED.bullet_draws,
			tactics_rating = EXCLUDED.tactics_rating,
			puzzle_rush_rating = EXCLUDED.puzzle_rush_rating,
			country = EXCLUDED.country,
			location = EXCLUDED.location,
			fide_title = EXCLUDED.fide_title,
			updated_at = NOW()`,
		username, title,
		rec.RapidRating, rec.RapidWins, rec.RapidLosses, rec.RapidDraws,
		rec.BlitzRating, rec.BlitzWins, rec.BlitzLosses, rec.BlitzDraws,
		rec.BulletRating, rec.BulletWins, rec.BulletLosses, rec.BulletDraws,
		rec.TacticsRating, rec.PuzzleRushBest, rec.Country, rec.Location, rec.Title,
	)
	return err
}
