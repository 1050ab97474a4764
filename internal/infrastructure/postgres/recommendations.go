package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
)

// Replace swaps the user's entire recommendation set inside one transaction:
// delete all prior rows, batch-insert the new ranking, commit. Any reader
// sees either the full prior set or the full new set. On failure the
// rollback leaves the prior set intact.
func (r *Repository) Replace(ctx context.Context, userID, runID uuid.UUID, ranked []domain.RankedRecipe, generatedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return writeErr("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM recommendations WHERE user_id = $1`, userID); err != nil {
		return writeErr("delete prior set", err)
	}

	if len(ranked) > 0 {
		batch := &pgx.Batch{}
		for i, rec := range ranked {
			batch.Queue(`
				INSERT INTO recommendations (user_id, recipe_id, rank, score, run_id, generated_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, userID, rec.RecipeID, i+1, rec.Score, runID, generatedAt)
		}
		br := tx.SendBatch(ctx, batch)
		for range ranked {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return writeErr("insert new set", err)
			}
		}
		if err := br.Close(); err != nil {
			return writeErr("insert new set", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return writeErr("commit", err)
	}
	return nil
}

// ListByUser returns the user's current set ordered by rank ASC.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Recommendation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, recipe_id, rank, score, run_id, generated_at
		FROM recommendations
		WHERE user_id = $1
		ORDER BY rank ASC
	`, userID)
	if err != nil {
		return nil, storeErr("list recommendations", err)
	}
	defer rows.Close()

	var out []domain.Recommendation
	for rows.Next() {
		var rec domain.Recommendation
		if err := rows.Scan(&rec.UserID, &rec.RecipeID, &rec.Rank, &rec.Score, &rec.RunID, &rec.GeneratedAt); err != nil {
			return nil, storeErr("scan recommendation", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list recommendations", err)
	}
	return out, nil
}
