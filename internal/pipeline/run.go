// Package pipeline provides the high-level orchestration for the price
// analysis process: search strategy, marketplace scan, offer matching,
// statistics, and the pricing recommendation with its fee breakdown.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/louder/priceagent/internal/analytics"
	"github.com/louder/priceagent/internal/db"
	"github.com/louder/priceagent/internal/fees"
	"github.com/louder/priceagent/internal/fetch"
	"github.com/louder/priceagent/internal/llm"
	"github.com/louder/priceagent/internal/marketplace"
	"github.com/louder/priceagent/internal/matching"
	"github.com/louder/priceagent/internal/observability"
	"github.com/louder/priceagent/internal/strategy"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Product             string
	ImageURL            string
	ReferencePrice      float64
	CostPrice           float64
	TargetMarginPercent float64
	TargetPercentile    *float64
	CurrentPrice        *float64
	WeightKg            float64
	CategoryFeePercent  float64
	Reputation          string
	ListingType         string
	APIKey              string
	UseBrowser          bool
	Verbose             bool
	MaxSearches         int
	DatabaseURL         string
	OnProgress          ProgressCallback
}

// AnalysisResult is the complete output of one pipeline run
type AnalysisResult struct {
	RunID          string                     `json:"run_id,omitempty"`
	Strategy       *strategy.SearchStrategy   `json:"strategy"`
	MatchResult    *matching.Result           `json:"match_result"`
	Statistics     *analytics.PriceStatistics `json:"statistics,omitempty"`
	Recommendation *analytics.Recommendation  `json:"recommendation"`
	FeeBreakdown   *fees.Breakdown            `json:"fee_breakdown"`
}

// defaultMaxSearches caps marketplace queries per run when the caller does
// not set a limit.
const defaultMaxSearches = 3

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:    step,
			Message: message,
			Content: content,
		})
	}
}

// RunPipeline orchestrates the full price analysis pipeline
func RunPipeline(ctx context.Context, opts RunOptions) (*AnalysisResult, error) {
	if opts.Product == "" {
		return nil, fmt.Errorf("product description is required")
	}
	if opts.MaxSearches <= 0 {
		opts.MaxSearches = defaultMaxSearches
	}

	printer := observability.NewPrinter(os.Stdout)

	// Initialize database connection if configured
	var database *db.DB
	var runID uuid.UUID
	if opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
			database = nil
		} else {
			defer database.Close()
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Connected to database\n")
			}
		}
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), opts.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	defer client.Close()

	if database != nil {
		runID, err = database.CreateRun(ctx, opts.Product, opts.ReferencePrice, opts.CostPrice)
		if err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
		} else if opts.Verbose {
			fmt.Printf("[VERBOSE] Created database run: %s\n", runID)
		}
	}

	result, err := runStages(ctx, opts, client, printer, database, runID)

	if database != nil && runID != uuid.Nil {
		if err != nil {
			msg := err.Error()
			_ = database.CompleteRun(ctx, runID, db.RunStatusFailed, &msg)
		} else {
			_ = database.CompleteRun(ctx, runID, db.RunStatusCompleted, nil)
		}
	}
	if err != nil {
		return nil, err
	}

	if runID != uuid.Nil {
		result.RunID = runID.String()
	}
	fmt.Printf("Done! Recommended price: $%.2f (%s)\n",
		result.Recommendation.RecommendedPrice, result.Recommendation.MarketPosition)
	return result, nil
}

func runStages(ctx context.Context, opts RunOptions, client llm.Client, printer *observability.Printer, database *db.DB, runID uuid.UUID) (*AnalysisResult, error) {
	// Step 1: Derive search strategy
	fmt.Printf("Step 1/5: Generating search strategy...\n")
	searchStrategy, err := strategy.Generate(ctx, client, opts.Product)
	if err != nil {
		fmt.Printf("Warning: LLM strategy failed (%v), using keyword fallback\n", err)
		searchStrategy = strategy.Fallback(opts.Product)
	}
	if opts.Verbose {
		printer.PrintStrategy(searchStrategy)
	}
	emitProgress(&opts, db.StepStrategy,
		fmt.Sprintf("Search strategy ready: %s", searchStrategy.PrimarySearch), searchStrategy)
	saveArtifact(ctx, database, runID, db.StepStrategy, searchStrategy)

	// Step 2: Scan the marketplace, one search term per worker
	terms := searchStrategy.Terms()
	if len(terms) > opts.MaxSearches {
		terms = terms[:opts.MaxSearches]
	}
	fmt.Printf("Step 2/5: Scanning marketplace with %d search terms...\n", len(terms))

	offers, err := scanMarketplace(ctx, opts, terms)
	if err != nil {
		return nil, fmt.Errorf("marketplace scan failed: %w", err)
	}
	emitProgress(&opts, db.StepOffers,
		fmt.Sprintf("Collected %d candidate offers", len(offers)), nil)
	saveArtifact(ctx, database, runID, db.StepOffers, offers)

	// Step 3: Classify candidates against the target
	fmt.Printf("Step 3/5: Matching %d offers against target...\n", len(offers))
	target := matching.Target{
		Description:    opts.Product,
		ImageURL:       opts.ImageURL,
		ReferencePrice: opts.ReferencePrice,
	}
	adjudicator := matching.NewAdjudicator(client, imageLoader())
	matcher := matching.NewMatcher(embedderFor(client), adjudicator)

	matchResult := matcher.Match(ctx, target, offers)
	if opts.Verbose {
		printer.PrintMatchResult(matchResult)
	}
	emitProgress(&opts, db.StepMatching,
		fmt.Sprintf("%d of %d offers comparable", len(matchResult.Comparable), matchResult.TotalOffers), nil)
	saveArtifact(ctx, database, runID, db.StepMatching, matchResult)

	// Step 4: Price distribution statistics
	fmt.Printf("Step 4/5: Computing price statistics...\n")
	prices := matchResult.ComparablePrices()

	var stats *analytics.PriceStatistics
	if len(prices) > 0 {
		stats, err = analytics.ComputeStatistics(prices)
		if err != nil {
			return nil, fmt.Errorf("statistics computation failed: %w", err)
		}
		if opts.Verbose {
			printer.PrintStatistics(stats)
		}
		saveArtifact(ctx, database, runID, db.StepStatistics, stats)
	} else {
		fmt.Printf("Warning: no comparable prices found, recommendation will be cost-based\n")
	}
	emitProgress(&opts, db.StepStatistics,
		fmt.Sprintf("Statistics over %d comparable prices", len(prices)), stats)

	// Step 5: Recommendation and fee breakdown
	fmt.Printf("Step 5/5: Building pricing recommendation...\n")
	recommendation := analytics.Recommend(analytics.RecommendRequest{
		CostPrice:           opts.CostPrice,
		CompetitorPrices:    prices,
		TargetMarginPercent: opts.TargetMarginPercent,
		TargetPercentile:    opts.TargetPercentile,
		CurrentPrice:        opts.CurrentPrice,
	})

	breakdown := fees.Profit(fees.Input{
		SellingPrice:       recommendation.RecommendedPrice,
		CostOfGoods:        opts.CostPrice,
		WeightKg:           opts.WeightKg,
		CategoryFeePercent: opts.CategoryFeePercent,
		Reputation:         opts.Reputation,
		ListingType:        fees.ListingType(opts.ListingType),
	})

	if opts.Verbose {
		printer.PrintRecommendation(recommendation)
		printer.PrintFeeBreakdown(&breakdown)
	}
	emitProgress(&opts, db.StepRecommendation,
		fmt.Sprintf("Recommended $%.2f at percentile %g", recommendation.RecommendedPrice, recommendation.TargetPercentile),
		recommendation)
	saveArtifact(ctx, database, runID, db.StepFees, breakdown)
	if database != nil && runID != uuid.Nil {
		if _, err := database.SaveRecommendation(ctx, runID, recommendation); err != nil {
			fmt.Printf("Warning: Failed to save recommendation: %v\n", err)
		}
	}

	return &AnalysisResult{
		Strategy:       searchStrategy,
		MatchResult:    matchResult,
		Statistics:     stats,
		Recommendation: recommendation,
		FeeBreakdown:   &breakdown,
	}, nil
}

// scanMarketplace runs one search per term concurrently and merges the
// results, deduplicating by offer identity. A term failing is tolerated as
// long as at least one term succeeds.
func scanMarketplace(ctx context.Context, opts RunOptions, terms []string) ([]marketplace.Offer, error) {
	scraper := marketplace.NewScraper()
	scraper.UseBrowser = opts.UseBrowser
	scraper.Verbose = opts.Verbose

	g, gCtx := errgroup.WithContext(ctx)
	perTerm := make([][]marketplace.Offer, len(terms))
	var mu sync.Mutex
	var searchErrs []error

	for i, term := range terms {
		g.Go(func() error {
			found, err := scraper.Search(gCtx, term)
			if err != nil {
				mu.Lock()
				searchErrs = append(searchErrs, err)
				mu.Unlock()
				fmt.Printf("Warning: search %q failed: %v\n", term, err)
				return nil
			}
			perTerm[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var offers []marketplace.Offer
	for _, found := range perTerm {
		for _, offer := range found {
			key := offer.ID
			if key == "" {
				key = offer.Title
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			offers = append(offers, offer)
		}
	}

	if len(offers) == 0 && len(searchErrs) == len(terms) && len(terms) > 0 {
		return nil, fmt.Errorf("all %d searches failed, first error: %v", len(terms), searchErrs[0])
	}
	return offers, nil
}

// embedderFor adapts the LLM client to the matcher's Embedder interface.
type clientEmbedder struct {
	client llm.Client
}

func (e *clientEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, text)
}

func embedderFor(client llm.Client) matching.Embedder {
	return &clientEmbedder{client: client}
}

// imageLoader downloads listing images for multimodal adjudication.
func imageLoader() matching.ImageLoader {
	return func(ctx context.Context, url string) (llm.Image, error) {
		subtype, data, err := fetch.Image(ctx, url)
		if err != nil {
			return llm.Image{}, err
		}
		return llm.Image{MIMESubtype: subtype, Data: data}, nil
	}
}

func saveArtifact(ctx context.Context, database *db.DB, runID uuid.UUID, step string, content any) {
	if database == nil || runID == uuid.Nil || content == nil {
		return
	}
	if err := database.SaveArtifact(ctx, runID, step, content); err != nil {
		fmt.Printf("Warning: Failed to save %s artifact: %v\n", step, err)
	}
}
