package quinimind

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/quinimind/analysis"
	"github.com/hazyhaar/quinimind/internal/fetch"
	"github.com/hazyhaar/quinimind/internal/schedule"
	"github.com/hazyhaar/quinimind/internal/scrape"
)

// Config holds all quinimind configuration.
type Config struct {
	DBPath       string          `yaml:"db_path"`
	SnapshotPath string          `yaml:"snapshot_path"`
	Source       scrape.Config   `yaml:"source"`
	Fetch        fetch.Config    `yaml:"fetch"`
	Analysis     analysis.Config `yaml:"analysis"`
	Schedule     schedule.Config `yaml:"schedule"`
	HTTP         HTTPConfig      `yaml:"http"`
	Predict      PredictConfig   `yaml:"predict"`
}

// HTTPConfig controls the consumer API listener.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// PredictConfig controls the predictor random source.
type PredictConfig struct {
	// Seed fixes the random fill for reproducible predictions.
	// 0 seeds from entropy.
	Seed uint64 `yaml:"seed"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "quinimind.db"
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = "data/latest.json"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8000"
	}
	c.Analysis.Defaults()
}

// LoadConfigFile reads a YAML config file. Heatmap thresholds start from
// their defaults so that an explicit 0 in the file is kept.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{Analysis: analysis.Config{Thresholds: analysis.DefaultThresholds()}}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
