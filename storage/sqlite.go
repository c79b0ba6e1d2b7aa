// Package storage persists market snapshots and recommended placements in
// SQLite so scans can be compared across runs. Pure-Go driver, no CGo.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"lp-optimizer-go/market"
	"lp-optimizer-go/strategy"
)

const schema = `
CREATE TABLE IF NOT EXISTS markets (
    id          TEXT PRIMARY KEY,
    question    TEXT,
    midpoint    REAL NOT NULL,
    max_spread  REAL NOT NULL,
    min_size    REAL NOT NULL,
    reward_pool REAL NOT NULL,
    first_seen  DATETIME NOT NULL,
    last_seen   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS placements (
    id                   TEXT PRIMARY KEY,
    market_id            TEXT NOT NULL,
    created_at           DATETIME NOT NULL,
    buy_price            REAL NOT NULL,
    buy_size             REAL NOT NULL,
    sell_price           REAL NOT NULL,
    sell_size            REAL NOT NULL,
    spread_ratio         REAL NOT NULL,
    q_min                REAL NOT NULL,
    daily_reward         REAL NOT NULL,
    fill_probability     REAL NOT NULL,
    expected_value       REAL NOT NULL,
    risk_adjusted_return REAL NOT NULL,
    volatility_score     REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_placements_market  ON placements(market_id);
CREATE INDEX IF NOT EXISTS idx_placements_created ON placements(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_markets_last_seen  ON markets(last_seen DESC);
`

// Old placements stop being useful once the market has moved on.
const placementRetention = 30 * 24 * time.Hour

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// PlacementRecord is one persisted optimizer recommendation.
type PlacementRecord struct {
	ID        string
	MarketID  string
	CreatedAt time.Time
	Placement strategy.OptimalPlacement
}

// Open opens (or creates) the database at path, applies the schema, and
// prunes stale placements.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %q: %w", path, err)
	}
	// SQLite is single-writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	s := &Store{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveMarkets upserts market snapshots, preserving first_seen.
func (s *Store) SaveMarkets(ctx context.Context, markets []market.Market) error {
	if len(markets) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO markets (id, question, midpoint, max_spread, min_size, reward_pool, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			question    = excluded.question,
			midpoint    = excluded.midpoint,
			max_spread  = excluded.max_spread,
			min_size    = excluded.min_size,
			reward_pool = excluded.reward_pool,
			last_seen   = excluded.last_seen
	`)
	if err != nil {
		return fmt.Errorf("storage: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, m := range markets {
		if _, err := stmt.ExecContext(ctx,
			m.ID, m.Question, m.Midpoint, m.MaxSpread, m.MinSize, m.RewardPool, now, now,
		); err != nil {
			return fmt.Errorf("storage: upsert market %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// SavePlacement records one optimizer recommendation and returns its ID.
func (s *Store) SavePlacement(ctx context.Context, marketID string, p strategy.OptimalPlacement) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO placements
			(id, market_id, created_at, buy_price, buy_size, sell_price, sell_size,
			 spread_ratio, q_min, daily_reward, fill_probability, expected_value,
			 risk_adjusted_return, volatility_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id, marketID, time.Now().UTC(),
		p.BuyOrder.Price, p.BuyOrder.Size, p.SellOrder.Price, p.SellOrder.Size,
		p.SpreadRatio, p.QScore.QMin, p.ExpectedDailyReward, p.FillProbability,
		p.ExpectedValue, p.RiskAdjustedReturn, p.VolatilityScore,
	)
	if err != nil {
		return "", fmt.Errorf("storage: insert placement for %s: %w", marketID, err)
	}
	return id, nil
}

// RecentPlacements returns the newest placements, most recent first.
func (s *Store) RecentPlacements(ctx context.Context, limit int) ([]PlacementRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, market_id, created_at, buy_price, buy_size, sell_price, sell_size,
		       spread_ratio, q_min, daily_reward, fill_probability, expected_value,
		       risk_adjusted_return, volatility_score
		FROM placements
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: query placements: %w", err)
	}
	defer rows.Close()

	var out []PlacementRecord
	for rows.Next() {
		var rec PlacementRecord
		var createdAt string
		if err := rows.Scan(
			&rec.ID, &rec.MarketID, &createdAt,
			&rec.Placement.BuyOrder.Price, &rec.Placement.BuyOrder.Size,
			&rec.Placement.SellOrder.Price, &rec.Placement.SellOrder.Size,
			&rec.Placement.SpreadRatio, &rec.Placement.QScore.QMin,
			&rec.Placement.ExpectedDailyReward, &rec.Placement.FillProbability,
			&rec.Placement.ExpectedValue, &rec.Placement.RiskAdjustedReturn,
			&rec.Placement.VolatilityScore,
		); err != nil {
			return nil, fmt.Errorf("storage: scan placement: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-placementRetention)
	s.db.ExecContext(ctx, `DELETE FROM placements WHERE created_at < ?`, cutoff)
}
