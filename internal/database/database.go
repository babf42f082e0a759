// Package database persists match snapshots to Postgres. Persistence is
// optional; when DB is nil the helpers are silent no-ops, matching the
// cache package's contract.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DB is the shared connection pool, initialized once at startup.
var DB *pgxpool.Pool

// Connect opens the pool and verifies the connection.
func Connect(ctx context.Context, databaseURL string) error {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("pgx ping: %w", err)
	}
	DB = pool
	logrus.Info("database connected")
	return nil
}

// Close releases the shared pool.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

// UpsertInitialMatchState stores the opening snapshot of a match: seed,
// rules, and starting camel positions. Keyed by match ID so a retried
// insert overwrites rather than duplicates.
func UpsertInitialMatchState(matchID uuid.UUID, snapshot interface{}) {
	if DB == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		logrus.WithError(err).WithField("match", matchID).Error("marshal initial match state")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = DB.Exec(ctx, `
		INSERT INTO match_states (match_id, initial_state, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (match_id) DO UPDATE SET initial_state = EXCLUDED.initial_state`,
		matchID, data)
	if err != nil {
		logrus.WithError(err).WithField("match", matchID).Error("upsert initial match state")
	}
}

// StoreFinalMatchState stores the final standings and payouts when a
// match ends.
func StoreFinalMatchState(ctx context.Context, matchID uuid.UUID, snapshot interface{}) {
	if DB == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		logrus.WithError(err).WithField("match", matchID).Error("marshal final match state")
		return
	}

	_, err = DB.Exec(ctx, `
		UPDATE match_states SET final_state = $2, finished_at = now()
		WHERE match_id = $1`,
		matchID, data)
	if err != nil {
		logrus.WithError(err).WithField("match", matchID).Error("store final match state")
	}
}
