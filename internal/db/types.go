package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Artifact step names, one per pipeline stage output
const (
	StepStrategy       = "strategy"
	StepOffers         = "offers"
	StepMatching       = "matching"
	StepStatistics     = "statistics"
	StepRecommendation = "recommendation"
	StepFees           = "fees"
)

// AnalysisRun represents one end-to-end price analysis
type AnalysisRun struct {
	ID                 uuid.UUID  `json:"id"`
	ProductDescription string     `json:"product_description"`
	ReferencePrice     float64    `json:"reference_price"`
	CostPrice          float64    `json:"cost_price"`
	Status             string     `json:"status"`
	ErrorMessage       *string    `json:"error_message,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// Artifact is one stored pipeline stage output
type Artifact struct {
	ID        uuid.UUID `json:"id"`
	RunID     uuid.UUID `json:"run_id"`
	Step      string    `json:"step"`
	Content   []byte    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// RecommendationRecord is a persisted pricing recommendation with its
// headline fields denormalized for querying
type RecommendationRecord struct {
	ID               uuid.UUID `json:"id"`
	RunID            uuid.UUID `json:"run_id"`
	RecommendedPrice float64   `json:"recommended_price"`
	Confidence       string    `json:"confidence"`
	MarketPosition   string    `json:"market_position"`
	Content          []byte    `json:"content"`
	CreatedAt        time.Time `json:"created_at"`
}
