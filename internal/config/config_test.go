package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		path := writeConfigFile(t, `{
			"product": "Bocina amplificada 15 pulgadas",
			"reference_price": 2500,
			"cost_price": 1200,
			"target_margin_percent": 35,
			"target_percentile": 60,
			"weight_kg": 8.5,
			"use_browser": true,
			"max_searches": 3
		}`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "Bocina amplificada 15 pulgadas", cfg.Product)
		assert.Equal(t, 2500.0, cfg.ReferencePrice)
		assert.Equal(t, 1200.0, cfg.CostPrice)
		assert.Equal(t, 35.0, cfg.TargetMarginPercent)
		require.NotNil(t, cfg.TargetPercentile)
		assert.Equal(t, 60.0, *cfg.TargetPercentile)
		assert.Nil(t, cfg.CurrentPrice)
		assert.True(t, cfg.UseBrowser)
		assert.Equal(t, 3, cfg.MaxSearches)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := LoadConfig("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		path := writeConfigFile(t, `{"product": `)
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		p := 50.0
		return &Config{
			Product:          "Bocina",
			ReferencePrice:   2500,
			CostPrice:        1200,
			TargetPercentile: &p,
			ListingType:      "Clasica",
		}
	}

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("negative prices", func(t *testing.T) {
		cfg := valid()
		cfg.ReferencePrice = -1
		assert.Error(t, cfg.Validate())

		cfg = valid()
		cfg.CostPrice = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("percentile out of range", func(t *testing.T) {
		cfg := valid()
		p := 150.0
		cfg.TargetPercentile = &p
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown listing type", func(t *testing.T) {
		cfg := valid()
		cfg.ListingType = "Gold"
		assert.Error(t, cfg.Validate())
	})
}

func TestMergeWithDefaults(t *testing.T) {
	t.Run("empty fields take defaults", func(t *testing.T) {
		p := 75.0
		defaults := Config{
			Product:          "Bocina",
			CostPrice:        1000,
			Reputation:       "Green",
			TargetPercentile: &p,
		}

		merged := (&Config{}).MergeWithDefaults(defaults)
		assert.Equal(t, "Bocina", merged.Product)
		assert.Equal(t, 1000.0, merged.CostPrice)
		assert.Equal(t, "Green", merged.Reputation)
		require.NotNil(t, merged.TargetPercentile)
		assert.Equal(t, 75.0, *merged.TargetPercentile)
	})

	t.Run("set fields win over defaults", func(t *testing.T) {
		cfg := Config{Product: "Bafle", CostPrice: 500}
		merged := cfg.MergeWithDefaults(Config{Product: "Bocina", CostPrice: 1000})
		assert.Equal(t, "Bafle", merged.Product)
		assert.Equal(t, 500.0, merged.CostPrice)
	})

	t.Run("margin falls back to built-in default", func(t *testing.T) {
		merged := (&Config{}).MergeWithDefaults(Config{})
		assert.Equal(t, 30.0, merged.TargetMarginPercent)
	})
}
