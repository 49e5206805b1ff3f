package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/louder/priceagent/internal/analytics"
)

// SaveRecommendation persists a pricing recommendation. The headline fields
// are denormalized into columns so recommendation history can be queried
// without unpacking the JSON payload.
func (db *DB) SaveRecommendation(ctx context.Context, runID uuid.UUID, rec *analytics.Recommendation) (uuid.UUID, error) {
	jsonBytes, err := json.Marshal(rec)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal recommendation: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO recommendations (run_id, recommended_price, confidence, market_position, content)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		runID, rec.RecommendedPrice, string(rec.Confidence), string(rec.MarketPosition), jsonBytes,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save recommendation: %w", err)
	}
	return id, nil
}

// GetRecommendation retrieves the recommendation stored for a run. Returns
// nil when the run has no recommendation.
func (db *DB) GetRecommendation(ctx context.Context, runID uuid.UUID) (*RecommendationRecord, error) {
	var rec RecommendationRecord
	err := db.pool.QueryRow(ctx,
		`SELECT id, run_id, recommended_price, confidence, market_position, content, created_at
		 FROM recommendations
		 WHERE run_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		runID,
	).Scan(&rec.ID, &rec.RunID, &rec.RecommendedPrice, &rec.Confidence,
		&rec.MarketPosition, &rec.Content, &rec.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	return &rec, nil
}
