package server

import (
	"net/http"

	"github.com/louder/priceagent/internal/analytics"
	"github.com/louder/priceagent/internal/fees"
	"github.com/louder/priceagent/internal/llm"
	"github.com/louder/priceagent/internal/marketplace"
	"github.com/louder/priceagent/internal/matching"
)

// MatchRequest represents the request body for /match
type MatchRequest struct {
	Target         string              `json:"target" validate:"required"`
	ImageURL       string              `json:"image_url,omitempty" validate:"omitempty,url"`
	ReferencePrice float64             `json:"reference_price,omitempty" validate:"gte=0"`
	Offers         []marketplace.Offer `json:"offers" validate:"required,min=1"`
}

// StatisticsRequest represents the request body for /statistics
type StatisticsRequest struct {
	Prices []float64 `json:"prices" validate:"required,min=1,dive,gt=0"`
}

// PercentileRequest represents the request body for /percentile
type PercentileRequest struct {
	Prices     []float64 `json:"prices" validate:"required,min=1,dive,gt=0"`
	Percentile float64   `json:"percentile" validate:"gte=0,lte=100"`
}

// RecommendationRequest represents the request body for /recommendation
type RecommendationRequest struct {
	CostPrice           float64   `json:"cost_price" validate:"gte=0"`
	CompetitorPrices    []float64 `json:"competitor_prices" validate:"dive,gt=0"`
	TargetMarginPercent float64   `json:"target_margin_percent,omitempty" validate:"gte=0"`
	TargetPercentile    *float64  `json:"target_percentile,omitempty" validate:"omitempty,gte=0,lte=100"`
	CurrentPrice        *float64  `json:"current_price,omitempty" validate:"omitempty,gt=0"`
}

// FeesRequest represents the request body for /fees
type FeesRequest struct {
	SellingPrice       float64 `json:"selling_price" validate:"required,gt=0"`
	CostOfGoods        float64 `json:"cost_of_goods,omitempty" validate:"gte=0"`
	WeightKg           float64 `json:"weight_kg,omitempty" validate:"gte=0"`
	CategoryFeePercent float64 `json:"category_fee_percent,omitempty" validate:"gte=0,lte=100"`
	Reputation         string  `json:"reputation,omitempty"`
	ListingType        string  `json:"listing_type,omitempty" validate:"omitempty,oneof=Clasica Premium"`
}

// handleMatch classifies caller-supplied offers against a target without
// running the scraping stages.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	client, err := llm.NewClient(r.Context(), llm.DefaultConfig(), s.apiKey)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to initialize LLM client: "+err.Error())
		return
	}
	defer client.Close()

	target := matching.Target{
		Description:    req.Target,
		ImageURL:       req.ImageURL,
		ReferencePrice: req.ReferencePrice,
	}
	matcher := matching.NewMatcher(client, matching.NewAdjudicator(client, nil))
	result := matcher.Match(r.Context(), target, req.Offers)

	s.jsonResponse(w, http.StatusOK, result)
}

// handleStatistics computes the price distribution summary for a sample.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	var req StatisticsRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	stats, err := analytics.ComputeStatistics(req.Prices)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, stats)
}

// handlePercentile answers a single percentile query.
func (s *Server) handlePercentile(w http.ResponseWriter, r *http.Request) {
	var req PercentileRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := analytics.GetPercentile(req.Prices, req.Percentile)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleRecommendation builds a pricing recommendation from caller data.
func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	rec := analytics.Recommend(analytics.RecommendRequest{
		CostPrice:           req.CostPrice,
		CompetitorPrices:    req.CompetitorPrices,
		TargetMarginPercent: req.TargetMarginPercent,
		TargetPercentile:    req.TargetPercentile,
		CurrentPrice:        req.CurrentPrice,
	})

	s.jsonResponse(w, http.StatusOK, rec)
}

// handleFees computes the marketplace fee breakdown for a sale scenario.
func (s *Server) handleFees(w http.ResponseWriter, r *http.Request) {
	var req FeesRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	breakdown := fees.Profit(fees.Input{
		SellingPrice:       req.SellingPrice,
		CostOfGoods:        req.CostOfGoods,
		WeightKg:           req.WeightKg,
		CategoryFeePercent: req.CategoryFeePercent,
		Reputation:         req.Reputation,
		ListingType:        fees.ListingType(req.ListingType),
	})

	s.jsonResponse(w, http.StatusOK, breakdown)
}
