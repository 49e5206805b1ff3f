package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/louder/priceagent/internal/config"
	"github.com/louder/priceagent/internal/pipeline"
)

var analyzeCommand = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full price analysis pipeline end-to-end",
	Long: `Orchestrates the entire price analysis: search strategy -> marketplace scan -> offer matching -> statistics -> recommendation -> fee breakdown.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runAnalyzeCmd,
}

var (
	analyzeConfigPath   string
	analyzeProduct      string
	analyzeImageURL     string
	analyzeRefPrice     float64
	analyzeCostPrice    float64
	analyzeMargin       float64
	analyzePercentile   float64
	analyzeCurrentPrice float64
	analyzeWeightKg     float64
	analyzeCategoryFee  float64
	analyzeReputation   string
	analyzeListingType  string
	analyzeAPIKey       string
	analyzeUseBrowser   bool
	analyzeVerbose      bool
	analyzeMaxSearches  int
	analyzeDatabaseURL  string
	analyzeJSONOut      bool
)

func init() {
	// Config file flag (processed first)
	analyzeCommand.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	analyzeCommand.Flags().StringVarP(&analyzeProduct, "product", "p", "", "Product description to analyze")
	analyzeCommand.Flags().StringVar(&analyzeImageURL, "image-url", "", "Reference image URL of the product")
	analyzeCommand.Flags().Float64Var(&analyzeRefPrice, "reference-price", 0, "Known fair price, anchors offer sanity checks")
	analyzeCommand.Flags().Float64Var(&analyzeCostPrice, "cost-price", 0, "Landed cost per unit")
	analyzeCommand.Flags().Float64Var(&analyzeMargin, "margin", 0, "Target margin percent over cost")
	analyzeCommand.Flags().Float64Var(&analyzePercentile, "percentile", -1, "Target market percentile (0-100, auto-selected if omitted)")
	analyzeCommand.Flags().Float64Var(&analyzeCurrentPrice, "current-price", 0, "Currently listed price, if any")
	analyzeCommand.Flags().Float64Var(&analyzeWeightKg, "weight", 0, "Shipping weight in kg")
	analyzeCommand.Flags().Float64Var(&analyzeCategoryFee, "category-fee", 0, "Marketplace category commission percent")
	analyzeCommand.Flags().StringVar(&analyzeReputation, "reputation", "", "Seller reputation tier (MercadoLider, Green, Yellow, Orange, Red, None)")
	analyzeCommand.Flags().StringVar(&analyzeListingType, "listing-type", "", "Listing tier: Clasica or Premium")
	analyzeCommand.Flags().BoolVar(&analyzeUseBrowser, "use-browser", false, "Use headless browser for client-rendered pages (requires Chrome)")
	analyzeCommand.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print detailed debug information")
	analyzeCommand.Flags().IntVar(&analyzeMaxSearches, "max-searches", 0, "Cap on marketplace searches per run")
	analyzeCommand.Flags().BoolVar(&analyzeJSONOut, "json", false, "Print the full result as JSON")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	analyzeCommand.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for run persistence
	analyzeCommand.Flags().StringVar(&analyzeDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(analyzeCommand)
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if analyzeConfigPath != "" {
		loadedCfg, err := config.LoadConfig(analyzeConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if analyzeVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", analyzeConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("product") {
		cfg.Product = analyzeProduct
	}
	if cmd.Flags().Changed("image-url") {
		cfg.ImageURL = analyzeImageURL
	}
	if cmd.Flags().Changed("reference-price") {
		cfg.ReferencePrice = analyzeRefPrice
	}
	if cmd.Flags().Changed("cost-price") {
		cfg.CostPrice = analyzeCostPrice
	}
	if cmd.Flags().Changed("margin") {
		cfg.TargetMarginPercent = analyzeMargin
	}
	if cmd.Flags().Changed("percentile") {
		p := analyzePercentile
		cfg.TargetPercentile = &p
	}
	if cmd.Flags().Changed("current-price") {
		c := analyzeCurrentPrice
		cfg.CurrentPrice = &c
	}
	if cmd.Flags().Changed("weight") {
		cfg.WeightKg = analyzeWeightKg
	}
	if cmd.Flags().Changed("category-fee") {
		cfg.CategoryFeePercent = analyzeCategoryFee
	}
	if cmd.Flags().Changed("reputation") {
		cfg.Reputation = analyzeReputation
	}
	if cmd.Flags().Changed("listing-type") {
		cfg.ListingType = analyzeListingType
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = analyzeAPIKey
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = analyzeUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = analyzeVerbose
	}
	if cmd.Flags().Changed("max-searches") {
		cfg.MaxSearches = analyzeMaxSearches
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = analyzeDatabaseURL
	}

	// Step 3: Apply defaults for unset values
	defaults := config.Config{
		Reputation:  "Green",
		ListingType: "Clasica",
		MaxSearches: 3,
	}
	cfg = cfg.MergeWithDefaults(defaults)

	// Step 4: Validate required fields
	if cfg.Product == "" {
		return fmt.Errorf("--product must be provided (via flag or config)")
	}
	if cfg.TargetPercentile != nil && (*cfg.TargetPercentile < 0 || *cfg.TargetPercentile > 100) {
		return fmt.Errorf("--percentile must be between 0 and 100")
	}

	// Step 5: API Key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	// Step 6: Database URL handling (optional; runs work without persistence)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	opts := pipeline.RunOptions{
		Product:             cfg.Product,
		ImageURL:            cfg.ImageURL,
		ReferencePrice:      cfg.ReferencePrice,
		CostPrice:           cfg.CostPrice,
		TargetMarginPercent: cfg.TargetMarginPercent,
		TargetPercentile:    cfg.TargetPercentile,
		CurrentPrice:        cfg.CurrentPrice,
		WeightKg:            cfg.WeightKg,
		CategoryFeePercent:  cfg.CategoryFeePercent,
		Reputation:          cfg.Reputation,
		ListingType:         cfg.ListingType,
		APIKey:              cfg.APIKey,
		UseBrowser:          cfg.UseBrowser,
		Verbose:             cfg.Verbose,
		MaxSearches:         cfg.MaxSearches,
		DatabaseURL:         cfg.DatabaseURL,
	}

	result, err := pipeline.RunPipeline(ctx, opts)
	if err != nil {
		return err
	}

	if analyzeJSONOut {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	}
	return nil
}
