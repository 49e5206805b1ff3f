// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Product
	Product        string  `json:"product,omitempty"`         // Product description to analyze
	ImageURL       string  `json:"image_url,omitempty"`       // Reference image of the product
	ReferencePrice float64 `json:"reference_price,omitempty"` // Known fair price, anchors sanity checks
	CostPrice      float64 `json:"cost_price,omitempty"`      // Landed cost per unit

	// Pricing
	TargetMarginPercent float64  `json:"target_margin_percent,omitempty"` // Desired margin over cost
	TargetPercentile    *float64 `json:"target_percentile,omitempty"`     // Market percentile; nil auto-selects
	CurrentPrice        *float64 `json:"current_price,omitempty"`         // Currently listed price, if any

	// Fees
	WeightKg           float64 `json:"weight_kg,omitempty"`            // Shipping weight
	CategoryFeePercent float64 `json:"category_fee_percent,omitempty"` // Marketplace category commission
	Reputation         string  `json:"reputation,omitempty"`           // Seller reputation tier
	ListingType        string  `json:"listing_type,omitempty"`         // Clasica or Premium

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Use headless browser for client-rendered pages
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	MaxSearches int    `json:"max_searches,omitempty"` // Cap on marketplace searches per run
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.ReferencePrice < 0 {
		return fmt.Errorf("config error: 'reference_price' must be non-negative")
	}
	if c.CostPrice < 0 {
		return fmt.Errorf("config error: 'cost_price' must be non-negative")
	}
	if c.TargetMarginPercent < 0 {
		return fmt.Errorf("config error: 'target_margin_percent' must be non-negative")
	}
	if c.TargetPercentile != nil && (*c.TargetPercentile < 0 || *c.TargetPercentile > 100) {
		return fmt.Errorf("config error: 'target_percentile' must be between 0 and 100")
	}
	if c.WeightKg < 0 {
		return fmt.Errorf("config error: 'weight_kg' must be non-negative")
	}
	if c.MaxSearches < 0 {
		return fmt.Errorf("config error: 'max_searches' must be non-negative")
	}
	if c.ListingType != "" && c.ListingType != "Clasica" && c.ListingType != "Premium" {
		return fmt.Errorf("config error: 'listing_type' must be Clasica or Premium")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Product == "" {
		result.Product = defaults.Product
	}
	if result.ImageURL == "" {
		result.ImageURL = defaults.ImageURL
	}
	if result.Reputation == "" {
		result.Reputation = defaults.Reputation
	}
	if result.ListingType == "" {
		result.ListingType = defaults.ListingType
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Numeric fields: use default if zero
	if result.ReferencePrice == 0 {
		result.ReferencePrice = defaults.ReferencePrice
	}
	if result.CostPrice == 0 {
		result.CostPrice = defaults.CostPrice
	}
	if result.WeightKg == 0 {
		result.WeightKg = defaults.WeightKg
	}
	if result.CategoryFeePercent == 0 {
		result.CategoryFeePercent = defaults.CategoryFeePercent
	}
	if result.MaxSearches == 0 {
		result.MaxSearches = defaults.MaxSearches
	}

	// Pointer fields: nil means unset
	if result.TargetPercentile == nil {
		result.TargetPercentile = defaults.TargetPercentile
	}
	if result.CurrentPrice == nil {
		result.CurrentPrice = defaults.CurrentPrice
	}

	if result.TargetMarginPercent == 0 {
		if defaults.TargetMarginPercent > 0 {
			result.TargetMarginPercent = defaults.TargetMarginPercent
		} else {
			result.TargetMarginPercent = 30.0 // Default margin target
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
