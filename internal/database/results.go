// internal/database/results.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kozyri-game/kozyri-server/internal/game"
)

// SaveGameResult persists a finished game and a per-seat result row for each participant.
// Writing is idempotent on session id, so a replayed result from the queue is harmless.
func SaveGameResult(ctx context.Context, res game.Result) error {
	statsJSON, err := json.Marshal(res.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal seat stats: %w", err)
	}

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, room_id, trump, stats, started_at, finished_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE
			SET trump = EXCLUDED.trump,
			    stats = EXCLUDED.stats,
			    finished_at = EXCLUDED.finished_at
		`
		if _, e := tx.Exec(ctx, upsertGame, res.SessionID, res.RoomID, res.Trump, statsJSON, res.StartedAt, res.FinishedAt); e != nil {
			return e
		}

		for i, seatID := range res.FinishOrder {
			position := i + 1
			q := `
				INSERT INTO game_results (game_id, seat_id, position)
				VALUES ($1, $2, $3)
				ON CONFLICT (game_id, seat_id)
				DO UPDATE SET position = EXCLUDED.position
			`
			if _, e := tx.Exec(ctx, q, res.SessionID, seatID, position); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game result: %w", err)
	}
	return nil
}
