package server

import (
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/louder/priceagent/internal/db"
	"github.com/louder/priceagent/internal/pipeline"
)

// AnalyzeRequest represents the request body for /analyze
type AnalyzeRequest struct {
	Product             string   `json:"product" validate:"required"`
	ImageURL            string   `json:"image_url,omitempty" validate:"omitempty,url"`
	ReferencePrice      float64  `json:"reference_price,omitempty" validate:"gte=0"`
	CostPrice           float64  `json:"cost_price,omitempty" validate:"gte=0"`
	TargetMarginPercent float64  `json:"target_margin_percent,omitempty" validate:"gte=0"`
	TargetPercentile    *float64 `json:"target_percentile,omitempty" validate:"omitempty,gte=0,lte=100"`
	CurrentPrice        *float64 `json:"current_price,omitempty" validate:"omitempty,gt=0"`
	WeightKg            float64  `json:"weight_kg,omitempty" validate:"gte=0"`
	CategoryFeePercent  float64  `json:"category_fee_percent,omitempty" validate:"gte=0,lte=100"`
	Reputation          string   `json:"reputation,omitempty"`
	ListingType         string   `json:"listing_type,omitempty" validate:"omitempty,oneof=Clasica Premium"`
	UseBrowser          bool     `json:"use_browser,omitempty"`
	MaxSearches         int      `json:"max_searches,omitempty" validate:"gte=0,lte=10"`
}

func (req *AnalyzeRequest) runOptions(apiKey, databaseURL string) pipeline.RunOptions {
	return pipeline.RunOptions{
		Product:             req.Product,
		ImageURL:            req.ImageURL,
		ReferencePrice:      req.ReferencePrice,
		CostPrice:           req.CostPrice,
		TargetMarginPercent: req.TargetMarginPercent,
		TargetPercentile:    req.TargetPercentile,
		CurrentPrice:        req.CurrentPrice,
		WeightKg:            req.WeightKg,
		CategoryFeePercent:  req.CategoryFeePercent,
		Reputation:          req.Reputation,
		ListingType:         req.ListingType,
		APIKey:              apiKey,
		UseBrowser:          req.UseBrowser,
		MaxSearches:         req.MaxSearches,
		DatabaseURL:         databaseURL,
	}
}

// handleAnalyze runs the full pipeline synchronously and returns the result.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := pipeline.RunPipeline(r.Context(), req.runOptions(s.apiKey, s.databaseURL))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Analysis failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleAnalyzeStream runs the full pipeline and streams progress events
// over SSE, finishing with the result payload.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts := req.runOptions(s.apiKey, s.databaseURL)
	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", event); err != nil {
			log.Printf("Error writing SSE progress event: %v", err)
		}
	}

	result, err := pipeline.RunPipeline(r.Context(), opts)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	if err := sse.WriteEvent("result", result); err != nil {
		log.Printf("Error writing SSE result event: %v", err)
	}
	sse.WriteComplete(result.RunID, db.RunStatusCompleted)
}

// handleListRuns returns recent analysis runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Run history requires a database")
		return
	}

	runs, err := s.db.ListRuns(r.Context(), 20)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one analysis run by ID
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runIDFromPath(w, r)
	if !ok {
		return
	}

	run, err := s.db.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}

// handleRunArtifacts returns the stored artifacts of a run
func (s *Server) handleRunArtifacts(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runIDFromPath(w, r)
	if !ok {
		return
	}

	artifacts, err := s.db.ListArtifacts(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"artifacts": artifacts})
}

// handleRunRecommendation returns the stored recommendation of a run
func (s *Server) handleRunRecommendation(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runIDFromPath(w, r)
	if !ok {
		return
	}

	rec, err := s.db.GetRecommendation(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if rec == nil {
		s.errorResponse(w, http.StatusNotFound, "Recommendation not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, rec)
}

// runIDFromPath parses the {id} path segment and checks database
// availability. Writes the error response itself on failure.
func (s *Server) runIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Run history requires a database")
		return uuid.Nil, false
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return uuid.Nil, false
	}
	return runID, true
}
